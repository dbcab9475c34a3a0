package model

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Tool      ToolConfig
	Logging   LoggingConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port        int
	Host        string
	ReadTimeout int // seconds
}

// ToolConfig holds yt-dlp invocation configuration
type ToolConfig struct {
	Path        string
	ExtraArgs   []string
	InfoTimeout int // seconds, 0 disables
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string
	FilePath string // empty logs to stdout only
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	AllowedDomains []string // empty allows any host
}

// RateLimitConfig holds the per-client sliding window configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	CleanupInterval   int // seconds
}
