package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var Logger *log.Logger

var (
	mu       sync.Mutex
	output   io.Writer = os.Stderr
	notifier UINotifier
)

// UINotifier receives every log line while a status view owns the
// terminal, so the view can render its own tail
type UINotifier func(level, message string)

func init() {
	Logger = log.New(os.Stderr)
	Logger.SetLevel(levelFromEnv())
}

// levelFromEnv reads LOG_LEVEL, defaulting to info
func levelFromEnv() log.Level {
	return parseLevel(os.Getenv("LOG_LEVEL"))
}

func parseLevel(s string) log.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return log.DebugLevel
	case "WARN", "WARNING":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	case "FATAL":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// SetLevel overrides the log level, typically from config. An empty
// string keeps the LOG_LEVEL environment default.
func SetLevel(level string) {
	if level == "" {
		return
	}
	Logger.SetLevel(parseLevel(level))
}

// SetOutput redirects all logging, e.g. away from a terminal the status
// view owns
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	apply()
}

// EnableFile appends logs to the given path and returns a closer. The
// terminal stays quiet afterwards; the status view renders its own tail.
func EnableFile(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	SetOutput(f)
	return f, nil
}

// SetUINotifier tees every log line to fn on top of the current output.
// A nil fn removes the tee.
func SetUINotifier(fn UINotifier) {
	mu.Lock()
	defer mu.Unlock()
	notifier = fn
	apply()
}

// apply rewires the logger output; mu must be held
func apply() {
	if notifier == nil {
		Logger.SetOutput(output)
		return
	}
	Logger.SetOutput(io.MultiWriter(output, &notifyWriter{fn: notifier}))
}

type notifyWriter struct {
	fn UINotifier
}

func (w *notifyWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		level, msg := splitLevel(line)
		w.fn(level, msg)
	}
	return len(p), nil
}

// splitLevel separates the four letter level tag from the rest of a
// formatted log line
func splitLevel(line string) (string, string) {
	tag, rest, ok := strings.Cut(line, " ")
	if !ok {
		return "", line
	}
	switch tag {
	case "DEBU":
		return "DEBUG", rest
	case "INFO":
		return "INFO", rest
	case "WARN":
		return "WARN", rest
	case "ERRO":
		return "ERROR", rest
	case "FATA":
		return "FATAL", rest
	}
	return "", line
}

// With returns a sub-logger with a fixed component prefix
func With(component string) *log.Logger {
	return Logger.With("component", component)
}

// Convenience functions for common operations
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}

func Fatal(msg interface{}, keyvals ...interface{}) {
	Logger.Fatal(msg, keyvals...)
}

func Infof(format string, args ...interface{}) {
	Logger.Infof(format, args...)
}

func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}

func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	Logger.Errorf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	Logger.Fatalf(format, args...)
}
