// Package log provides structured logging for Hermes on top of zerolog.
//
// Components obtain a named Logger and attach key-value context:
//
//	logger := log.GetLoggerWithName("pipeline").With(log.ComponentKey, "regression")
//	logger.Info("Preparation started", log.RowsKey, 120, log.ColumnsKey, 7)
//
// The global zerolog logger is configured once with SetupLogger.
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Field keys shared by all components.
const (
	OperationKey   = "operation"
	PhaseKey       = "phase"
	ComponentKey   = "component"
	ColumnKey      = "column"
	MethodKey      = "method"
	RowsKey        = "rows"
	ColumnsKey     = "columns"
	DroppedRowsKey = "dropped_rows"
	DurationMsKey  = "duration_ms"
	RunIDKey       = "run_id"
)

// Operation and phase values.
const (
	OperationPrepare = "prepare"
	OperationRevert  = "revert"
	OperationLoad    = "load"
	OperationSave    = "save"

	PhaseStatistics = "statistics"
	PhaseImpute     = "impute"
	PhaseNormalize  = "normalize"
	PhaseEncode     = "encode"
	PhaseAssemble   = "assemble"
)

// Logger is the structured logger used by components.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

// LoggerProvider hands out loggers sharing one output and level.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
}

var (
	mu           sync.RWMutex
	globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
)

// ToLogLevel maps a level name to a zerolog level. Unknown names map to info.
func ToLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// SetupLogger configures the global logger to write human-readable output to
// stderr at the given level.
func SetupLogger(level string) {
	SetupLoggerWithWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, level)
}

// SetupLoggerWithWriter configures the global logger to write to w.
func SetupLoggerWithWriter(w io.Writer, level string) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = zerolog.New(w).With().Timestamp().Logger().Level(ToLogLevel(level))
}

// GetLogger returns the global zerolog logger.
func GetLogger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := globalLogger
	return &l
}

// GetLoggerWithName returns a Logger derived from the global logger with the
// component name attached.
func GetLoggerWithName(name string) Logger {
	return &zerologLogger{zl: GetLogger().With().Str(ComponentKey, name).Logger()}
}

// LogError logs err at error level with msg.
func LogError(err error, msg string) {
	GetLogger().Error().Err(err).Msg(msg)
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zerologLogger{zl: zerolog.Nop()}
}

type zerologProvider struct {
	base zerolog.Logger
}

// NewZerologProvider creates a provider writing to stderr at level.
func NewZerologProvider(level zerolog.Level) LoggerProvider {
	return NewZerologProviderWithWriter(os.Stderr, level)
}

// NewZerologProviderWithWriter creates a provider writing to w at level.
func NewZerologProviderWithWriter(w io.Writer, level zerolog.Level) LoggerProvider {
	return &zerologProvider{base: zerolog.New(w).With().Timestamp().Logger().Level(level)}
}

func (p *zerologProvider) GetLogger() Logger {
	return &zerologLogger{zl: p.base}
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{zl: p.base.With().Str(ComponentKey, name).Logger()}
}

type zerologLogger struct {
	zl zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, fields ...interface{}) {
	l.emit(l.zl.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...interface{}) {
	l.emit(l.zl.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...interface{}) {
	l.emit(l.zl.Warn(), msg, fields)
}

// Error logs at error level. A leading error value in fields is attached with
// Err instead of being treated as a key.
func (l *zerologLogger) Error(msg string, fields ...interface{}) {
	ev := l.zl.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			ev = ev.Err(err)
			fields = fields[1:]
		}
	}
	l.emit(ev, msg, fields)
}

func (l *zerologLogger) With(fields ...interface{}) Logger {
	return &zerologLogger{zl: l.zl.With().Fields(pairs(fields)).Logger()}
}

func (l *zerologLogger) emit(ev *zerolog.Event, msg string, fields []interface{}) {
	if ev == nil {
		return
	}
	ev.Fields(pairs(fields)).Msg(msg)
}

// pairs turns alternating key-value arguments into a map. A trailing key
// without a value is dropped; non-string keys are skipped.
func pairs(fields []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		m[key] = fields[i+1]
	}
	return m
}
