// Package common provides the shared logger used across the optimizer client.
package common

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/phuslu/log"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/writers"
)

// Log formats accepted by LoggingConfig.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

const logTimeFormat = "2006-01-02T15:04:05Z07:00"

// LoggingConfig holds the writer setup for NewLoggerFromConfig.
type LoggingConfig struct {
	Level      string
	Format     string
	Outputs    []string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
}

// Logger wraps arbor.ILogger to provide a consistent interface
type Logger struct {
	arbor.ILogger
}

type discardWriter struct{}

func (w *discardWriter) Write(p []byte) (int, error)           { return len(p), nil }
func (w *discardWriter) WithLevel(_ log.Level) writers.IWriter { return w }
func (w *discardWriter) GetFilePath() string                   { return "" }
func (w *discardWriter) Close() error                          { return nil }

// lineWriter renders arbor events onto an io.Writer, either as the raw JSON
// event or as "message k=v ... error=..." with fields in key order.
type lineWriter struct {
	out   io.Writer
	json  bool
	level log.Level
}

func (w *lineWriter) Write(p []byte) (int, error) {
	var evt models.LogEvent
	if err := json.Unmarshal(p, &evt); err != nil {
		return w.out.Write(p)
	}
	if evt.Level < w.level {
		return len(p), nil
	}
	if w.json {
		line := strings.TrimRight(string(p), "\n") + "\n"
		if _, err := io.WriteString(w.out, line); err != nil {
			return 0, err
		}
		return len(p), nil
	}

	var b strings.Builder
	b.WriteString(evt.Message)
	for _, k := range slices.Sorted(maps.Keys(evt.Fields)) {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(formatField(evt.Fields[k]))
	}
	if evt.Error != "" {
		b.WriteString(" error=")
		b.WriteString(evt.Error)
	}
	b.WriteString("\n")
	if _, err := io.WriteString(w.out, b.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}

func formatField(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func (w *lineWriter) WithLevel(level log.Level) writers.IWriter {
	w.level = level
	return w
}

func (w *lineWriter) GetFilePath() string { return "" }
func (w *lineWriter) Close() error        { return nil }

// NewLogger creates a text logger on stderr at the given level.
func NewLogger(level string) *Logger {
	return NewLoggerFromConfig(LoggingConfig{Level: level})
}

// NewLoggerFromConfig builds a logger from cfg. Console output goes to stderr
// since stdout carries the rendered portfolio. Format "json" writes raw events
// to the console; the file writer always stores JSON. Writers are private to
// the returned logger and never registered globally.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"console"}
	}

	var ws []writers.IWriter
	if slices.Contains(outputs, "console") {
		if cfg.Format == FormatJSON {
			ws = append(ws, &lineWriter{out: os.Stderr, json: true, level: log.TraceLevel})
		} else {
			ws = append(ws, writers.ConsoleWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeConsole,
				Writer:     os.Stderr,
				TimeFormat: logTimeFormat,
			}))
		}
	}
	if slices.Contains(outputs, "file") {
		filePath := cfg.FilePath
		if filePath == "" {
			filePath = "logs/vire-optimizer.log"
		}
		maxSize := int64(cfg.MaxSizeMB) * 1024 * 1024
		if maxSize <= 0 {
			maxSize = 500 * 1024
		}
		maxBackups := cfg.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 5
		}
		ws = append(ws, writers.FileWriter(models.WriterConfiguration{
			Type:       models.LogWriterTypeFile,
			FileName:   filePath,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			TimeFormat: logTimeFormat,
			OutputType: models.OutputFormatJSON,
		}))
	}
	if len(ws) == 0 {
		ws = append(ws, &discardWriter{})
	}

	return newLoggerWithWriters(level, ws...)
}

// NewLoggerWithOutput creates a text logger writing only to w.
func NewLoggerWithOutput(level string, w io.Writer) *Logger {
	return newLoggerWithWriters(level, &lineWriter{out: w, level: log.TraceLevel})
}

// NewJSONLoggerWithOutput creates a logger writing one JSON event per line to w.
func NewJSONLoggerWithOutput(level string, w io.Writer) *Logger {
	return newLoggerWithWriters(level, &lineWriter{out: w, json: true, level: log.TraceLevel})
}

func newLoggerWithWriters(level string, ws ...writers.IWriter) *Logger {
	l := arbor.NewLogger().WithWriters(ws).WithLevelFromString(level)
	return &Logger{ILogger: l}
}

// NewSilentLogger creates a logger that discards all output.
func NewSilentLogger() *Logger {
	return &Logger{ILogger: arbor.NewLogger().WithWriters([]writers.IWriter{&discardWriter{}})}
}

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// WithCorrelationID returns ctx carrying id. Every log line written on behalf
// of that context includes it as the correlation_id field.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID returns the id carried by ctx, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}
