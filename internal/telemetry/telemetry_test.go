package telemetry

import (
	"context"
	"testing"

	"ctchen222/Tic-Tac-Toe-AI/internal/config"
	"github.com/stretchr/testify/require"
)

func TestInitOtelDisabled(t *testing.T) {
	shutdown, err := InitOtel(context.Background(), config.TelemetryConfig{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
