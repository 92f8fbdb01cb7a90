package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenTTL)
	assert.Equal(t, 2, cfg.Collab.DebounceSeconds)
	assert.Equal(t, "guarded", cfg.Collab.AccessMode)
	assert.False(t, cfg.Collab.FlushOnDisconnect)
	assert.False(t, cfg.Collab.AccessOpen())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("COLLAB_DEBOUNCE_SECONDS", "5")
	t.Setenv("COLLAB_ACCESS_MODE", "open")
	t.Setenv("COLLAB_FLUSH_ON_DISCONNECT", "true")
	t.Setenv("SERVER_PORT", "9999")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Collab.DebounceSeconds)
	assert.True(t, cfg.Collab.AccessOpen())
	assert.True(t, cfg.Collab.FlushOnDisconnect)
}
