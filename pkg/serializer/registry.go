package serializer

import (
	"fmt"
	"strings"
	"sync"
)

// Registry holds formats by name, in registration order.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	formats []Format
	byName  map[string]Format
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Format),
	}
}

// Default returns a registry holding every built-in format.
func Default() *Registry {
	r := NewRegistry()
	for _, f := range []Format{
		Protobuf(),
		Cramberry(),
		JSON(),
		Sonic(),
		Gob(),
		Memdump(),
		CBOR(),
		MsgPack(),
		BSON(),
		XDR(),
		XML(),
	} {
		r.MustRegister(f)
	}
	return r
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds f. Names are compared case-insensitively.
func (r *Registry) Register(f Format) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(f.Name())
	if _, ok := r.byName[k]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateFormat, f.Name())
	}
	r.byName[k] = f
	r.formats = append(r.formats, f)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(f Format) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Lookup returns the format registered under name, ignoring case.
func (r *Registry) Lookup(name string) (Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byName[key(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// Formats returns every format in registration order.
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Format, len(r.formats))
	copy(out, r.formats)
	return out
}

// Names returns every format name in registration order.
func (r *Registry) Names() []string {
	formats := r.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.Name()
	}
	return names
}

// Select returns the named formats in the order given, or every format
// when names is empty. Duplicates are dropped.
func (r *Registry) Select(names []string) ([]Format, error) {
	if len(names) == 0 {
		return r.Formats(), nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]Format, 0, len(names))
	for _, name := range names {
		f, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		if seen[key(f.Name())] {
			continue
		}
		seen[key(f.Name())] = true
		out = append(out, f)
	}
	return out, nil
}
