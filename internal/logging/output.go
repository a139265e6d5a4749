package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	sinkMu     sync.RWMutex
	sink       *zap.Logger
	sinkFormat = FormatConsole
)

// SetFormat selects the encoder used for all loggers.
func SetFormat(format string) error {
	switch format {
	case "", FormatConsole:
		format = FormatConsole
	case FormatJSON:
	default:
		return fmt.Errorf("invalid log format %q (must be console or json)", format)
	}

	sinkMu.Lock()
	defer sinkMu.Unlock()
	sinkFormat = format
	sink = newStdSink(format)
	return nil
}

// SetOutput redirects every level to w. Used by tests and the CLI when
// stdout is reserved for command output.
func SetOutput(w io.Writer) {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	core := zapcore.NewCore(newEncoder(sinkFormat), zapcore.AddSync(w), zapcore.DebugLevel)
	sink = zap.New(core)
}

func currentSink() *zap.Logger {
	sinkMu.RLock()
	s := sink
	sinkMu.RUnlock()
	if s != nil {
		return s
	}

	sinkMu.Lock()
	defer sinkMu.Unlock()
	if sink == nil {
		sink = newStdSink(sinkFormat)
	}
	return sink
}

// newStdSink routes DEBUG/INFO/WARN to stdout and ERROR/FATAL to stderr.
func newStdSink(format string) *zap.Logger {
	enc := newEncoder(format)
	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l < zapcore.ErrorLevel })
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= zapcore.ErrorLevel })
	return zap.New(zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(os.Stdout), low),
		zapcore.NewCore(enc.Clone(), zapcore.Lock(os.Stderr), high),
	))
}

func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(formatTimestamp(t))
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if format == FormatJSON {
		return zapcore.NewJSONEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}

func (l *Logger) writeLog(level LogLevel, msg string, fields map[string]interface{}) {
	zl := currentSink().Named(l.name)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	zapFields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		zapFields = append(zapFields, zap.Any(k, fields[k]))
	}

	switch level {
	case DEBUG:
		zl.Debug(msg, zapFields...)
	case INFO:
		zl.Info(msg, zapFields...)
	case WARN:
		zl.Warn(msg, zapFields...)
	case FATAL:
		// zap's Fatal exits on its own; exitFunc stays in charge.
		zl.Error(msg, append(zapFields, zap.String("severity", levelName(level)))...)
	default:
		zl.Error(msg, zapFields...)
	}
}

func sprintf(msg string, args ...interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// GetTimestamp returns the current time in RFC3339, or LOG_TIMESTAMP when set.
func GetTimestamp() string {
	return formatTimestamp(time.Now())
}

func formatTimestamp(t time.Time) string {
	if override := os.Getenv("LOG_TIMESTAMP"); override != "" {
		return override
	}
	return t.Format(time.RFC3339)
}
