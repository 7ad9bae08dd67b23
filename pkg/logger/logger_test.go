package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerAvailableBeforeInit(t *testing.T) {
	require.NotNil(t, Logger())
	require.NotNil(t, WithModule("test"))
}

func TestInitAcceptsKnownLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		require.NoError(t, Init(level))
	}
}

func TestInitFallsBackOnUnknownLevel(t *testing.T) {
	require.NoError(t, Init("chatty"))
	require.NotNil(t, Logger())
}
