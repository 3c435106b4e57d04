package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where and how verbosely the logger writes
type Options struct {
	// Dir holds the JSON log files; defaults to "logs"
	Dir string
	// ConsoleLevel is the minimum level printed to stdout; defaults to Info
	ConsoleLevel zapcore.Level
	// Now is used for the log file timestamp; defaults to time.Now
	Now func() time.Time
}

// InitLogger builds the branch-cover logger with default options.
// env prefixes the log file name so staging and production runs do not mix.
func InitLogger(env string) (*zap.Logger, error) {
	return InitLoggerWithOptions(env, Options{})
}

// InitLoggerWithOptions tees a coloured console core with a JSON file core at Debug
func InitLoggerWithOptions(env string, opts Options) (*zap.Logger, error) {
	if opts.Dir == "" {
		opts.Dir = "logs"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	logFileName := LogFileName(opts.Dir, env, opts.Now())
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.TimeKey = "timestamp"
	fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), zapcore.AddSync(os.Stdout), opts.ConsoleLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(logFile), zapcore.DebugLevel),
	)

	logger := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("env", env)),
	)

	return logger, nil
}

// LogFileName returns <dir>/<env>_<timestamp>.log
func LogFileName(dir, env string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.log", env, at.Format("2006-01-02_15-04-05")))
}
