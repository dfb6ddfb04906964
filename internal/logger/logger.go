// Package logger is the zerolog wrapper every hydrate component logs through.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexisbeaulieu97/hydrate/internal/model"
)

// Options describes logger configuration supplied at creation time.
type Options struct {
	// Level is a zerolog level name; empty means info.
	Level string
	// HumanReadable switches from JSON lines to the console writer.
	HumanReadable bool
	NoColor       bool
	// Writer defaults to stderr so reports on stdout stay clean.
	Writer io.Writer
}

// Logger wraps zerolog with the handful of calls hydrate needs. A nil *Logger is valid
// and discards everything.
type Logger struct {
	base zerolog.Logger
}

// New creates a configured Logger instance based on Options.
func New(opts Options) (*Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}
	if opts.HumanReadable {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: opts.NoColor}
	}

	return &Logger{base: zerolog.New(out).Level(level).With().Timestamp().Logger()}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{base: zerolog.Nop()}
}

// WithFields returns a derived logger that always writes the supplied fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil {
		return nil
	}
	ctx := l.base.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}
	return &Logger{base: ctx.Logger()}
}

// With returns a derived logger carrying a single string field.
func (l *Logger) With(key, value string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{base: l.base.With().Str(key, value).Logger()}
}

func (l *Logger) Info(msg string)  { l.emit(zerolog.InfoLevel, nil, msg) }
func (l *Logger) Debug(msg string) { l.emit(zerolog.DebugLevel, nil, msg) }
func (l *Logger) Warn(msg string)  { l.emit(zerolog.WarnLevel, nil, msg) }

// WarnErr writes a warning carrying the error that caused it.
func (l *Logger) WarnErr(err error, msg string) { l.emit(zerolog.WarnLevel, err, msg) }

// Error writes an error log entry including the supplied error context.
func (l *Logger) Error(err error, msg string) { l.emit(zerolog.ErrorLevel, err, msg) }

// Record logs the outcome of one template item. Failures are warnings because the run
// carries on; skips are debug noise.
func (l *Logger) Record(rec model.ResultRecord) {
	if l == nil {
		return
	}
	ctx := l.base.With().Str("name", rec.Name).Str("action", string(rec.Action))
	if rec.ID != "" {
		ctx = ctx.Str("id", rec.ID)
	}
	if rec.Type != "" {
		ctx = ctx.Str("type", rec.Type)
	}
	derived := &Logger{base: ctx.Logger()}

	switch rec.Action {
	case model.ActionFailed:
		derived.emit(zerolog.WarnLevel, nil, rec.Status)
	case model.ActionSkipped:
		derived.emit(zerolog.DebugLevel, nil, rec.Status)
	default:
		derived.emit(zerolog.InfoLevel, nil, rec.Status)
	}
}

func (l *Logger) emit(level zerolog.Level, err error, msg string) {
	if l == nil {
		return
	}
	event := l.base.WithLevel(level)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(msg)
}
