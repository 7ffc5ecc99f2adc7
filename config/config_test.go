package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 5002, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:5002", cfg.Addr())
	assert.Equal(t, "perform-check/1.0 (+https://example.com)", cfg.Site.UserAgent)
	assert.Equal(t, 15*time.Second, cfg.Timeout())
	assert.Equal(t, 10, cfg.Site.MaxRedirects)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "https://secure.crbonline.gov.uk/crsc/check?execution=e2s1", cfg.Targets()[ExecutionStart])
	assert.Len(t, cfg.Targets(), 3)
	assert.False(t, cfg.DiscordEnabled())
	assert.False(t, cfg.EmailEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("TIMEOUT_MS", "2500")
	t.Setenv("TARGET_E2S1", "http://localhost:9999/crsc/check?execution=e2s1")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("DISCORD_CHANNEL_ID", "123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout())
	assert.Equal(t, "http://localhost:9999/crsc/check?execution=e2s1", cfg.Targets()[ExecutionStart])
	assert.Equal(t, 0.5, cfg.RateLimit.RequestsPerSecond)
	assert.True(t, cfg.DiscordEnabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"zero timeout":      {"TIMEOUT_MS", "0"},
		"negative cap":      {"MAX_REDIRECTS", "-1"},
		"relative target":   {"TARGET_E2S4", "/crsc/check"},
		"ftp target":        {"TARGET_E2S5", "ftp://example.com/x"},
		"port out of range": {"PORT", "70000"},
		"not a number":      {"TIMEOUT_MS", "soon"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
