// Package observability provides structured logging for the PDF tools service.
package observability

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

// Logger is a zerolog logger scoped by request, component and operation.
type Logger struct {
	zl zerolog.Logger
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level       string
	Format      string // json or console
	Output      io.Writer
	ServiceName string
}

// NewLogger builds a Logger. Unknown levels fall back to info.
func NewLogger(cfg LogConfig) *Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.ServiceName != "" {
		ctx = ctx.Str("service", cfg.ServiceName)
	}
	return &Logger{zl: ctx.Logger()}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) Debug() *LogEvent { return &LogEvent{evt: l.zl.Debug()} }
func (l *Logger) Info() *LogEvent  { return &LogEvent{evt: l.zl.Info()} }
func (l *Logger) Warn() *LogEvent  { return &LogEvent{evt: l.zl.Warn()} }
func (l *Logger) Error() *LogEvent { return &LogEvent{evt: l.zl.Error()} }

// WithContext returns a logger carrying the request ID found in ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	id := RequestIDFromContext(ctx)
	if id == "" {
		return l
	}
	return l.with("request_id", id)
}

// WithOperation tags entries with the document operation being run.
func (l *Logger) WithOperation(op string) *Logger {
	return l.with("operation", op)
}

// WithComponent tags entries with the emitting package.
func (l *Logger) WithComponent(name string) *Logger {
	return l.with("component", name)
}

func (l *Logger) with(key, val string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, val).Logger()}
}

// LogEvent is a single entry under construction.
type LogEvent struct {
	evt *zerolog.Event
}

func (e *LogEvent) Str(key, val string) *LogEvent {
	e.evt = e.evt.Str(key, val)
	return e
}

func (e *LogEvent) Strs(key string, val []string) *LogEvent {
	e.evt = e.evt.Strs(key, val)
	return e
}

func (e *LogEvent) Int(key string, val int) *LogEvent {
	e.evt = e.evt.Int(key, val)
	return e
}

func (e *LogEvent) Int64(key string, val int64) *LogEvent {
	e.evt = e.evt.Int64(key, val)
	return e
}

func (e *LogEvent) Float64(key string, val float64) *LogEvent {
	e.evt = e.evt.Float64(key, val)
	return e
}

func (e *LogEvent) Dur(key string, val time.Duration) *LogEvent {
	e.evt = e.evt.Dur(key, val)
	return e
}

// Artifact adds the category, name and size of a persisted artifact.
func (e *LogEvent) Artifact(a domain.Artifact) *LogEvent {
	e.evt = e.evt.Str("category", a.Category.Name).
		Str("artifact", a.Name).
		Int64("bytes", a.Size)
	return e
}

// Since adds the elapsed time from start as "duration".
func (e *LogEvent) Since(start time.Time) *LogEvent {
	e.evt = e.evt.Dur("duration", time.Since(start))
	return e
}

// Err adds an error. When the error is a DomainError its type is added too.
func (e *LogEvent) Err(err error) *LogEvent {
	if t := domain.TypeOf(err); t != "" {
		e.evt = e.evt.Str("error_type", string(t))
	}
	e.evt = e.evt.Err(err)
	return e
}

// Stack includes the error stack, if the error carries one. Call before Err.
func (e *LogEvent) Stack() *LogEvent {
	e.evt = e.evt.Stack()
	return e
}

func (e *LogEvent) Msg(msg string) {
	e.evt.Msg(msg)
}

type contextKey struct{}

// ContextWithRequestID adds a request ID to the context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// RequestIDFromContext extracts a request ID from the context.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
