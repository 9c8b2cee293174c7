package rest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/barokatu/tauri-updater-server/internal/config"
)

// Test that responses can still be written once the request deadline passed.
func TestWriteTimeout(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.Greater(t, writeTimeout(cfg), cfg.RequestTimeout)

	cfg.RequestTimeout = 2 * time.Minute
	require.Equal(t, 2*time.Minute+writeGrace, writeTimeout(cfg))
}
