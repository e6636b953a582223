package logger

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance
	Logger *zap.SugaredLogger
	// Flag to track if JSON output is enabled
	JSONOutput bool

	warnings atomic.Int64
)

func init() {
	// Safe no-op logger until Initialize() runs
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger.
// verbosity follows the -v flag count (see VerbosityToLevel). Logs go to stderr
// so that generated stubs written to stdout stay clean.
func Initialize(jsonOutput bool, verbosity int) error {
	JSONOutput = jsonOutput
	warnings.Store(0)

	level := VerbosityToLevel(verbosity)

	var zapLogger *zap.Logger
	var err error

	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		zapLogger, err = config.Build(zap.Hooks(countWarnings))
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.TimeKey = ""
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapLogger = zap.New(
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(encoderConfig),
				zapcore.AddSync(os.Stderr),
				level,
			),
			zap.Hooks(countWarnings),
		)
	}

	if err != nil {
		return err
	}

	Logger = zapLogger.Sugar()
	return nil
}

// countWarnings is a zap hook feeding WarningCount.
func countWarnings(entry zapcore.Entry) error {
	if entry.Level == zapcore.WarnLevel {
		warnings.Add(1)
	}
	return nil
}

// WarningCount returns how many warnings were logged since Initialize.
func WarningCount() int64 {
	return warnings.Load()
}

// OrNop returns l, or a no-op logger when l is nil.
// Components accept an optional logger the way db.Open does.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if Logger != nil {
		Logger.Sync()
	}
}

// Infow logs an info message with structured fields
func Infow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Infow(msg, keysAndValues...)
	}
}

// Warnw logs a warning message with structured fields
func Warnw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Warnw(msg, keysAndValues...)
	}
}

// Errorw logs an error message with structured fields
func Errorw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Errorw(msg, keysAndValues...)
	}
}

// Debugw logs a debug message with structured fields
func Debugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Debugw(msg, keysAndValues...)
	}
}
