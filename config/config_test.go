package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "SERVER_PORT", "YTDLP_PATH", "YTDLP_EXTRA_ARGS", "ALLOWED_DOMAINS", "RATELIMIT_ENABLED", "RATELIMIT_REQUESTS_PER_MINUTE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()
	require.Equal(t, defaultPort, cfg.Server.Port)
	require.Equal(t, "yt-dlp", cfg.Tool.Path)
	require.Empty(t, cfg.Tool.ExtraArgs)
	require.Empty(t, cfg.Security.AllowedDomains)
	require.True(t, cfg.RateLimit.Enabled)
	require.Equal(t, defaultRequestsPerMinute, cfg.RateLimit.RequestsPerMinute)
}

func TestLoad_PortPrecedence(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("PORT", "")
	require.Equal(t, 9000, Load().Server.Port)

	t.Setenv("PORT", "5005")
	require.Equal(t, 5005, Load().Server.Port)
}

func TestLoad_ToolAndRateLimit(t *testing.T) {
	t.Setenv("YTDLP_PATH", "/opt/bin/yt-dlp")
	t.Setenv("YTDLP_EXTRA_ARGS", "--force-ipv4  --geo-bypass")
	t.Setenv("YTDLP_INFO_TIMEOUT", "45")
	t.Setenv("RATELIMIT_ENABLED", "no")
	t.Setenv("RATELIMIT_REQUESTS_PER_MINUTE", "5")
	t.Setenv("ALLOWED_DOMAINS", "youtube.com, ,vimeo.com")

	cfg := Load()
	require.Equal(t, "/opt/bin/yt-dlp", cfg.Tool.Path)
	require.Equal(t, []string{"--force-ipv4", "--geo-bypass"}, cfg.Tool.ExtraArgs)
	require.Equal(t, 45, cfg.Tool.InfoTimeout)
	require.False(t, cfg.RateLimit.Enabled)
	require.Equal(t, 5, cfg.RateLimit.RequestsPerMinute)
	require.Equal(t, []string{"youtube.com", "vimeo.com"}, cfg.Security.AllowedDomains)
}

func TestLoad_NonPositiveRateFallsBackToDefault(t *testing.T) {
	for _, v := range []string{"0", "-5", "abc"} {
		t.Setenv("RATELIMIT_REQUESTS_PER_MINUTE", v)
		require.Equal(t, defaultRequestsPerMinute, Load().RateLimit.RequestsPerMinute, "value %q", v)
	}
}
