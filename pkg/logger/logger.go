// Package logger holds the process-wide zerolog logger.
//
// cmd/inventory calls Init once with the loaded config; everything else asks
// for a Component logger so entries can be filtered by subsystem.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const envProduction = "production"

// Options describes the process logger.
type Options struct {
	Level   string
	Env     string
	Service string

	// Output defaults to os.Stdout.
	Output io.Writer
}

var root atomic.Pointer[zerolog.Logger]

// Init builds the process logger from opts and installs it. Only the first
// call installs anything; later calls return the logger already in place.
//
// Production emits JSON; any other env gets the console writer. An unknown
// level falls back to info and is reported once on the new logger.
func Init(opts Options) zerolog.Logger {
	if current := root.Load(); current != nil {
		return *current
	}

	lvl, levelErr := parseLevel(opts.Level)
	log := newLogger(opts, lvl)
	if !root.CompareAndSwap(nil, &log) {
		return *root.Load()
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(lvl)
	if levelErr != nil {
		log.Warn().Err(levelErr).Msg("falling back to info level")
	}
	return log
}

func newLogger(opts Options, lvl zerolog.Level) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Env != envProduction {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	fields := zerolog.New(out).Level(lvl).With().Timestamp().Caller()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	if opts.Env != "" {
		fields = fields.Str("env", opts.Env)
	}
	return fields.Logger()
}

// Get returns the process logger. It panics before Init.
func Get() zerolog.Logger {
	l := root.Load()
	if l == nil {
		panic("logger: Get() called before Init()")
	}
	return *l
}

// Component returns the process logger tagged with component=name,
// e.g. "auth", "dispatcher" or "realtime".
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset uninstalls the process logger. Tests only.
func Reset() {
	root.Store(nil)
}

func parseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}
