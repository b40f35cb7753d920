package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

////////////////////////////////////////////////////////////////////////////////

func TestSetAndGetLogger(t *testing.T) {
	logger := NewStderrLogger(DebugLevel)

	ctx := SetLogger(context.Background(), logger)
	require.Equal(t, logger, GetLogger(ctx))

	require.Nil(t, GetLogger(context.Background()))
}

func TestHelpersWithoutLoggerAreNoops(t *testing.T) {
	ctx := context.Background()

	// Must not panic.
	Debug(ctx, "debug %v", 1)
	Info(ctx, "info %v", 2)
	Warn(ctx, "warn %v", 3)
	Error(ctx, "error %v", 4)
}

func TestStderrLoggerWrites(t *testing.T) {
	ctx := SetLogger(context.Background(), NewStderrLogger(DebugLevel))

	Debug(ctx, "debug message %v", 42)
	Info(ctx, "info message %v", "value")
	Warn(ctx, "warn message")
	Error(ctx, "error message")
}

func TestWithName(t *testing.T) {
	logger := NewStderrLogger(InfoLevel)
	named := logger.WithName("subsystem")
	require.NotNil(t, named)
	named.Infof("message from named logger")
}
