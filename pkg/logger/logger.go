// Package logger provides a small structured logging facade over slog.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	callerSkipFrames = 3 // runtime.Caller <- getCaller <- log <- Info/Error/...
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger defines the logging interface.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// Field constructors.
func String(key, val string) Field                 { return Field{Key: key, Value: val} }
func Int(key string, val int) Field                { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field        { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field              { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }
func Any(key string, val any) Field                { return Field{Key: key, Value: val} }
func Error(err error) Field                        { return Field{Key: "error", Value: err} }

type ctxKey struct{}

// WithRequestID returns a context whose log lines carry the given request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID extracts the id stored by WithRequestID.
func RequestID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// slogLogger implements Logger using slog.
type slogLogger struct {
	name string
}

func (l *slogLogger) Named(name string) Logger {
	if l.name != "" {
		name = l.name + "." + name
	}
	return &slogLogger{name: name}
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, fields)
}

func (l *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
}

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelDebug, msg, fields)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelWarn, msg, fields)
}

func (l *slogLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
	os.Exit(1)
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if ctx == nil {
		ctx = context.Background()
	}
	h := current()
	if !h.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields)+3)
	if l.name != "" {
		attrs = append(attrs, slog.String("logger", l.name))
	}
	if id, ok := RequestID(ctx); ok {
		attrs = append(attrs, slog.String("request_id", id))
	}
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	attrs = append(attrs, slog.String("source", getCaller()))
	h.LogAttrs(ctx, level, msg, attrs...)
}

var (
	mu       sync.RWMutex
	global   Logger
	base     *slog.Logger
	levelVar slog.LevelVar
	format   = FormatText
	out      io.Writer = os.Stderr
)

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// rebuild swaps the handler; callers hold mu.
func rebuild() {
	opts := &slog.HandlerOptions{Level: &levelVar}
	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	base = slog.New(h)
}

// Init initializes the global logger at info level. Output goes to stderr so
// stdout stays free for command output.
func Init() error {
	mu.Lock()
	defer mu.Unlock()
	levelVar.Set(slog.LevelInfo)
	rebuild()
	global = &slogLogger{}
	return nil
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	if global != nil {
		rebuild()
	}
}

// SetFormat switches between FormatText and FormatJSON.
func SetFormat(f string) error {
	f = strings.ToLower(strings.TrimSpace(f))
	if f == "" {
		f = FormatText
	}
	if f != FormatText && f != FormatJSON {
		return fmt.Errorf("unknown log format: %s", f)
	}
	mu.Lock()
	defer mu.Unlock()
	format = f
	if global != nil {
		rebuild()
	}
	return nil
}

// getCaller returns the caller location as a path relative to the working
// directory, falling back to the bare file name.
func getCaller() string {
	_, file, line, ok := runtime.Caller(callerSkipFrames)
	if !ok {
		return "unknown:0"
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	rel, err := filepath.Rel(cwd, file)
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	return fmt.Sprintf("%s:%d", rel, line)
}

// Get returns the global logger.
func Get() Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		panic("logger not initialized. Call logger.Init() first")
	}
	return global
}

// Named creates a named logger.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync flushes buffered log entries.
func Sync() error {
	// slog does not buffer; nothing to flush
	return nil
}

// SetLevel updates the current logging level for the global logger handler.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(slog.LevelDebug)
	case "", "info":
		SetLevel(slog.LevelInfo)
	case "warn", "warning":
		SetLevel(slog.LevelWarn)
	case "error":
		SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}
