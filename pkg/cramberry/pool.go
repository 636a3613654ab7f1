package cramberry

import "sync"

// maxPooledCap keeps oversized buffers out of the pool.
const maxPooledCap = 64 * 1024

var writerPool = sync.Pool{
	New: func() any {
		return NewWriter()
	},
}

// GetWriter gets a Writer with default options from the pool.
// The Writer should be returned with PutWriter when done.
func GetWriter() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	w.opts = DefaultOptions
	return w
}

// PutWriter returns a Writer to the pool.
// The Writer must not be used after calling this.
func PutWriter(w *Writer) {
	if w == nil || cap(w.buf) > maxPooledCap {
		return
	}
	w.Reset()
	writerPool.Put(w)
}
