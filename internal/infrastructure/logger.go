package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"bioinsights/internal/config"
)

var (
	defaultOnce   sync.Once
	defaultLogger *slog.Logger

	logFileMu sync.Mutex
	logFile   *os.File
)

// InitializeLogger builds the process logger from cfg, writing console output
// to stdout, and installs it as the slog default. Later calls return the
// logger built by the first one.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	defaultOnce.Do(func() {
		defaultLogger, err = NewLogger(cfg, os.Stdout)
		if err == nil {
			slog.SetDefault(defaultLogger)
		}
	})
	return defaultLogger, err
}

// NewLogger builds a logger whose console output goes to console. The global
// slog default is left alone. A log file opened for the file or both outputs
// is closed by CloseLogFile.
func NewLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, error) {
	out, err := logOutput(cfg, console)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{AddSource: true, Level: logLevel(cfg)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return slog.New(&traceHandler{Handler: handler}), nil
}

func logOutput(cfg config.LoggingConfig, console io.Writer) (io.Writer, error) {
	output := strings.ToLower(cfg.Output)
	if output != "file" && output != "both" {
		return console, nil
	}

	file, err := openLogFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logFileMu.Lock()
	logFile = file
	logFileMu.Unlock()

	if output == "file" {
		return file, nil
	}
	return io.MultiWriter(console, file), nil
}

// logLevel maps the configured level name. Development mode always logs at
// debug.
func logLevel(cfg config.LoggingConfig) slog.Level {
	if cfg.Development {
		return slog.LevelDebug
	}
	switch strings.ToLower(cfg.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// traceHandler stamps every record with the request or span trace ID.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := logTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// CloseLogFile closes the log file opened by the last file-backed logger.
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ResetLoggerForTesting lets a test call InitializeLogger again.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	defaultLogger = nil
	defaultOnce = sync.Once{}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
