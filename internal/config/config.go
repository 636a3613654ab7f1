// Package config holds the command-line configuration of sercompare.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alexflint/go-arg"

	"github.com/blockberries/sercompare/internal/sink"
	"github.com/blockberries/sercompare/pkg/model"
	"github.com/blockberries/sercompare/pkg/serializer"
)

// Config is populated from flags and environment variables.
type Config struct {
	Count     int         `arg:"-n,--count,env:SERCOMPARE_COUNT" default:"100000" help:"number of records to generate"`
	Shape     model.Shape `arg:"--shape" default:"current" help:"record shape: current or legacy"`
	Seed      uint64      `arg:"--seed" help:"generator seed, 0 picks a random one"`
	Out       string      `arg:"-o,--out,env:SERCOMPARE_OUT" help:"output directory [default: ~/Desktop/SerializersCompare]"`
	Formats   []string    `arg:"-f,--format,separate" help:"format to run, repeatable [default: all]"`
	NoZip     bool        `arg:"--no-zip" help:"skip the archive pass"`
	Level     int         `arg:"--level" default:"9" help:"deflate level, -2 (huffman only) to 9 (best)"`
	Verify    bool        `arg:"--verify" help:"decode each written file and compare it with the dataset"`
	Summary   bool        `arg:"--summary" help:"print size and time ratios against the baseline"`
	Baseline  string      `arg:"--baseline" default:"Protobuf" help:"baseline format for --summary"`
	Pause     bool        `arg:"--pause" help:"wait for Enter before exiting"`
	LogLevel  slog.Level  `arg:"--log-level,env:SERCOMPARE_LOG_LEVEL" default:"warn" help:"debug, info, warn or error"`
	LogFormat string      `arg:"--log-format" default:"text" help:"text or json"`

	version string `arg:"-"`
}

// Description is shown at the top of the help text.
func (*Config) Description() string {
	return "sercompare encodes one generated dataset with every serializer and reports time and size, plain and zipped"
}

// Version is printed by --version.
func (c *Config) Version() string {
	return "sercompare " + c.version
}

// MustLoad parses os.Args. It exits with status 2 on invalid flags and
// status 0 after --help or --version.
func MustLoad(version string) *Config {
	c := &Config{version: version}
	p := arg.MustParse(c)
	if err := c.Validate(); err != nil {
		p.Fail(err.Error())
	}
	return c
}

// Parse parses args (without the program name) and validates the result.
func Parse(args []string, version string) (*Config, error) {
	c := &Config{version: version}
	p, err := arg.NewParser(arg.Config{Program: "sercompare"}, c)
	if err != nil {
		return nil, err
	}
	if err := p.Parse(args); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values the parser cannot.
func (c *Config) Validate() error {
	var errs []error
	if c.Count < 0 {
		errs = append(errs, fmt.Errorf("count must not be negative, got %d", c.Count))
	}
	if c.Level < serializer.MinLevel || c.Level > serializer.MaxLevel {
		errs = append(errs, fmt.Errorf("level must be between %d and %d, got %d", serializer.MinLevel, serializer.MaxLevel, c.Level))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.LogFormat))
	}
	reg := serializer.Default()
	if _, err := reg.Select(c.Formats); err != nil {
		errs = append(errs, err)
	}
	if c.Summary {
		if _, err := reg.Lookup(c.Baseline); err != nil {
			errs = append(errs, fmt.Errorf("baseline: %w", err))
		}
	}
	return errors.Join(errs...)
}

// OutDir returns the output directory, defaulting to sink.DefaultDir.
func (c *Config) OutDir() string {
	if c.Out != "" {
		return c.Out
	}
	return sink.DefaultDir()
}

// Archive reports whether the archive pass runs.
func (c *Config) Archive() bool {
	return !c.NoZip
}

// Logger returns a logger writing to w in the configured format and level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
