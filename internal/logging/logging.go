// Package logging builds the zerolog loggers used by the console.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Options selects where logs go.
type Options struct {
	Path    string        // log file; empty disables file output
	Level   zerolog.Level // minimum level
	Console io.Writer     // human-readable copy, e.g. stderr with --verbose
}

// New opens the log file (creating its directory) and returns a logger plus
// a close function. With neither a path nor a console writer the logger
// discards everything.
func New(opts Options) (zerolog.Logger, func() error, error) {
	var writers []io.Writer
	closeFn := func() error { return nil }

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("open log: %w", err)
		}
		writers = append(writers, f)
		closeFn = f.Close
	}
	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.TimeOnly})
	}
	if len(writers) == 0 {
		return zerolog.Nop(), closeFn, nil
	}

	level := opts.Level
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closeFn, nil
}
