package logging

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RFC3339Micros is RFC 3339 UTC with fixed microsecond precision, used for log timestamps.
const RFC3339Micros = "2006-01-02T15:04:05.000000Z"

var (
	loggerMu   sync.Mutex
	loggerOnce sync.Once
	baseLogger *zap.Logger
	loggerErr  error
)

// encoderConfig returns the Cloud Logging compatible encoder settings.
func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = encodeTimeMicros
	cfg.LevelKey = "severity"
	cfg.EncodeLevel = encodeSeverity
	cfg.MessageKey = "message"
	cfg.CallerKey = "caller"
	return cfg
}

// newLogger builds a JSON logger writing entries and internal errors to ws.
func newLogger(ws zapcore.WriteSyncer, level zapcore.LevelEnabler) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), ws, level)
	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(ws))
}

func encodeTimeMicros(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(RFC3339Micros))
}

// encodeSeverity maps zap levels to Cloud Logging severity names.
func encodeSeverity(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	var severity string
	switch level {
	case zapcore.DebugLevel:
		severity = "DEBUG"
	case zapcore.InfoLevel:
		severity = "INFO"
	case zapcore.WarnLevel:
		severity = "WARNING"
	case zapcore.ErrorLevel:
		severity = "ERROR"
	case zapcore.DPanicLevel:
		severity = "CRITICAL"
	case zapcore.PanicLevel:
		severity = "ALERT"
	case zapcore.FatalLevel:
		severity = "EMERGENCY"
	default:
		severity = "DEFAULT"
	}
	enc.AppendString(severity)
}

func initLogger() {
	ws, _, err := zap.Open("stdout")
	if err != nil {
		baseLogger, loggerErr = zap.NewNop(), err
		return
	}
	baseLogger = newLogger(ws, zapcore.InfoLevel)
}

// Logger returns the process-wide zap.Logger instance.
func Logger() *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	loggerOnce.Do(initLogger)
	return baseLogger
}

// ReplaceLogger swaps the process-wide logger and returns a func restoring the previous one.
func ReplaceLogger(l *zap.Logger) func() {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	loggerOnce.Do(initLogger)
	prev := baseLogger
	baseLogger = l
	return func() {
		loggerMu.Lock()
		defer loggerMu.Unlock()
		baseLogger = prev
	}
}

// Sync flushes buffered log entries. Call during shutdown.
func Sync() error {
	return Logger().Sync()
}

// Err reports initialization failure, if any.
func Err() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	loggerOnce.Do(initLogger)
	return loggerErr
}
