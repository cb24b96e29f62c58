package observability

import (
	"io"
	"os"
	"time"

	"github.com/phuslu/log"
)

// PhusluLogger adapts a phuslu/log logger to the Logger interface.
type PhusluLogger struct {
	logger *log.Logger
	fields []Field
}

// NewPhusluLogger wraps l. A nil logger falls back to phuslu's default logger.
func NewPhusluLogger(l *log.Logger) *PhusluLogger {
	if l == nil {
		l = &log.DefaultLogger
	}
	return &PhusluLogger{logger: l}
}

// NewConsoleLogger builds a phuslu logger writing to w at the given level.
// Format "json" emits one JSON object per line; anything else uses the
// console writer.
func NewConsoleLogger(w io.Writer, level, format string) *PhusluLogger {
	if w == nil {
		w = os.Stderr
	}
	var writer log.Writer
	if format == "json" {
		writer = &log.IOWriter{Writer: w}
	} else {
		writer = &log.ConsoleWriter{Writer: w, QuoteString: true, EndWithMessage: true}
	}
	return NewPhusluLogger(&log.Logger{
		Level:      log.ParseLevel(level),
		TimeFormat: "15:04:05",
		Writer:     writer,
	})
}

func (p *PhusluLogger) Debug(msg string, fields ...Field) { p.emit(p.logger.Debug(), msg, fields) }
func (p *PhusluLogger) Info(msg string, fields ...Field)  { p.emit(p.logger.Info(), msg, fields) }
func (p *PhusluLogger) Warn(msg string, fields ...Field)  { p.emit(p.logger.Warn(), msg, fields) }
func (p *PhusluLogger) Error(msg string, fields ...Field) { p.emit(p.logger.Error(), msg, fields) }

func (p *PhusluLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(p.fields)+len(fields))
	merged = append(merged, p.fields...)
	merged = append(merged, fields...)
	return &PhusluLogger{logger: p.logger, fields: merged}
}

func (p *PhusluLogger) emit(e *log.Entry, msg string, fields []Field) {
	// phuslu returns a nil entry for disabled levels.
	if e == nil {
		return
	}
	for _, f := range p.fields {
		e = appendField(e, f)
	}
	for _, f := range fields {
		e = appendField(e, f)
	}
	e.Msg(msg)
}

func appendField(e *log.Entry, f Field) *log.Entry {
	switch v := f.Value().(type) {
	case string:
		return e.Str(f.Key(), v)
	case int:
		return e.Int(f.Key(), v)
	case int64:
		return e.Int64(f.Key(), v)
	case bool:
		return e.Bool(f.Key(), v)
	case float64:
		return e.Float64(f.Key(), v)
	case time.Duration:
		return e.Dur(f.Key(), v)
	case []string:
		return e.Strs(f.Key(), v)
	case error:
		return e.AnErr(f.Key(), v)
	case nil:
		return e.Str(f.Key(), "")
	default:
		return e.Any(f.Key(), v)
	}
}
