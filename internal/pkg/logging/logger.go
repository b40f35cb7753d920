package logging

import (
	"context"

	"go.uber.org/zap/zapcore"
)

////////////////////////////////////////////////////////////////////////////////

type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
	FatalLevel = zapcore.FatalLevel
)

////////////////////////////////////////////////////////////////////////////////

type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	WithName(name string) Logger
}

////////////////////////////////////////////////////////////////////////////////

type loggerKey struct{}

func SetLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func GetLogger(ctx context.Context) Logger {
	logger, _ := ctx.Value(loggerKey{}).(Logger)
	return logger
}

////////////////////////////////////////////////////////////////////////////////

func Debug(ctx context.Context, format string, args ...interface{}) {
	logger := GetLogger(ctx)
	if logger != nil {
		logger.Debugf(format, args...)
	}
}

func Info(ctx context.Context, format string, args ...interface{}) {
	logger := GetLogger(ctx)
	if logger != nil {
		logger.Infof(format, args...)
	}
}

func Warn(ctx context.Context, format string, args ...interface{}) {
	logger := GetLogger(ctx)
	if logger != nil {
		logger.Warnf(format, args...)
	}
}

func Error(ctx context.Context, format string, args ...interface{}) {
	logger := GetLogger(ctx)
	if logger != nil {
		logger.Errorf(format, args...)
	}
}

func Fatal(ctx context.Context, format string, args ...interface{}) {
	logger := GetLogger(ctx)
	if logger != nil {
		logger.Fatalf(format, args...)
	}
}
