package config

import (
	"os"
	"strconv"
	"strings"

	"mediarelay/internal/model"

	"github.com/joho/godotenv"
)

const (
	defaultPort              = 8080
	defaultRequestsPerMinute = 30
)

// Load loads configuration from environment variables
func Load() *model.Config {
	godotenv.Load()

	return &model.Config{
		Server: model.ServerConfig{
			// PORT is set by most hosting platforms and wins over SERVER_PORT
			Port:        getEnvInt("PORT", getEnvInt("SERVER_PORT", defaultPort)),
			Host:        getEnvStr("SERVER_HOST", "0.0.0.0"),
			ReadTimeout: getEnvInt("SERVER_READ_TIMEOUT", 30),
		},
		Tool: model.ToolConfig{
			Path:        getEnvStr("YTDLP_PATH", "yt-dlp"),
			ExtraArgs:   strings.Fields(getEnvStr("YTDLP_EXTRA_ARGS", "")),
			InfoTimeout: getEnvInt("YTDLP_INFO_TIMEOUT", 0),
		},
		Logging: model.LoggingConfig{
			Level:    getEnvStr("LOG_LEVEL", "info"),
			FilePath: getEnvStr("LOG_FILE", "./log/app.log"),
		},
		Security: model.SecurityConfig{
			AllowedDomains: parseList(getEnvStr("ALLOWED_DOMAINS", "")),
		},
		RateLimit: model.RateLimitConfig{
			Enabled:           getEnvBool("RATELIMIT_ENABLED", true),
			RequestsPerMinute: getEnvPositiveInt("RATELIMIT_REQUESTS_PER_MINUTE", defaultRequestsPerMinute),
			CleanupInterval:   getEnvInt("RATELIMIT_CLEANUP_INTERVAL", 600),
		},
	}
}

// parseList splits a comma-separated value, dropping blank entries
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvStr(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	valStr := getEnvStr(key, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return val
	}
	return defaultVal
}

// getEnvPositiveInt is getEnvInt with values below 1 replaced by defaultVal
func getEnvPositiveInt(key string, defaultVal int) int {
	if val := getEnvInt(key, defaultVal); val > 0 {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	valStr := strings.ToLower(getEnvStr(key, ""))
	if valStr == "true" || valStr == "1" || valStr == "yes" {
		return true
	}
	if valStr == "false" || valStr == "0" || valStr == "no" {
		return false
	}
	return defaultVal
}
