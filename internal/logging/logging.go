// Package logging configures the zerolog loggers used by the probe commands.
//
// Report output goes to stdout; everything logged here goes to stderr unless
// configured otherwise.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Nop discards everything.
var Nop = zerolog.Nop()

// Config holds logger configuration options.
type Config struct {
	// Level is the minimum log level to output.
	Level string

	// Format is the output format (auto, json, console).
	Format string

	// Output is stderr, stdout, discard or a file path.
	Output string

	// NoColor disables color in console mode.
	NoColor bool
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  "auto",
		Output:  "stderr",
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// New creates a logger from cfg. A nil cfg uses DefaultConfig. The returned
// Closer releases the log file when Output names one; it is a no-op for the
// standard streams. If the file cannot be opened the logger falls back to
// stderr and says so once.
func New(cfg *Config) (zerolog.Logger, io.Closer) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	out, closer, openErr := writer(cfg)
	level := ParseLevel(cfg.Level)
	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()

	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	if openErr != nil {
		logger.Warn().Err(openErr).Str("output", cfg.Output).Msg("Cannot open log file, logging to stderr")
	}
	return logger, closer
}

// ParseLevel parses a level name, falling back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "warning":
		return zerolog.WarnLevel
	case "none", "off":
		return zerolog.Disabled
	case "":
		return zerolog.InfoLevel
	}
	if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
		return l
	}
	return zerolog.InfoLevel
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// writer resolves cfg.Output and cfg.Format. A file that cannot be opened is
// reported through the returned error while stderr is used instead.
func writer(cfg *Config) (io.Writer, io.Closer, error) {
	var (
		out     io.Writer
		closer  io.Closer = nopCloser{}
		openErr error
	)
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "discard", "none":
		return io.Discard, closer, nil
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			out, openErr = os.Stderr, err
		} else {
			out, closer = file, file
		}
	}

	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		format = "json"
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			format = "console"
		}
	}

	if format == "console" || format == "pretty" {
		return zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.NoColor,
		}, closer, openErr
	}
	return out, closer, openErr
}

type ctxKey struct{}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the context's logger, or Nop.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
			return logger
		}
	}
	return Nop
}
