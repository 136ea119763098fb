// Package logger provides the process-wide zap logger. Console output is
// always on; a rotating JSON log file can be added for long batch runs.
package logger

import (
	"os"
	"sync"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.Logger
	once sync.Once
)

// Init configures the global logger. An empty logFile disables file output.
// Only the first call has any effect.
func Init(verbose bool, logFile string) {
	once.Do(func() {
		level := zapcore.InfoLevel
		encCfg := zap.NewProductionEncoderConfig()
		if verbose {
			level = zapcore.DebugLevel
			encCfg = zap.NewDevelopmentEncoderConfig()
		}

		cores := []zapcore.Core{
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(encCfg),
				zapcore.AddSync(os.Stdout),
				level,
			),
		}

		if logFile != "" {
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(&lumberjack.Logger{
					Filename:   logFile,
					MaxSize:    20, // MB
					MaxBackups: 3,
					MaxAge:     14, // days
				}),
				level,
			))
		}

		log = zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zapcore.ErrorLevel))
	})
}

// Get returns the global logger, initializing a console-only logger if
// Init was never called.
func Get() *zap.Logger {
	if log == nil {
		Init(false, "")
	}
	return log
}

// Sync flushes any buffered log entries.
func Sync() {
	if log != nil {
		log.Sync()
	}
}
