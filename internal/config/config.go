package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionSecret string
	SessionTTL    time.Duration
	RedisURL      string

	// TikTok OAuth
	TikTokClientKey    string
	TikTokClientSecret string
	TikTokRedirectURI  string
	TikTokAuthURL      string
	TikTokTokenURL     string
	TikTokAPIBase      string

	// Discord OAuth
	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURI  string
	DiscordAuthURL      string
	DiscordTokenURL     string
	DiscordAPIBase      string

	UpstreamTimeout time.Duration

	// Server
	Port          string
	CORSOrigins   string
	DashboardPath string
	AppEnv        string
	AppName       string
	ContactEmail  string

	// Observability
	SentryDSN      string
	LogRetention   time.Duration
	MetricsEnabled bool
}

func Load() *Config {
	return &Config{
		DatabaseURL: normalizeDatabaseURL(getEnv("DATABASE_URL", "")),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    parseDuration(getEnv("SESSION_TTL", "24h"), 24*time.Hour),
		RedisURL:      getEnv("REDIS_URL", ""),

		TikTokClientKey:    getEnv("TIKTOK_CLIENT_KEY", ""),
		TikTokClientSecret: getEnv("TIKTOK_CLIENT_SECRET", ""),
		TikTokRedirectURI:  getEnv("TIKTOK_REDIRECT_URI", ""),
		TikTokAuthURL:      getEnv("TIKTOK_AUTH_URL", "https://www.tiktok.com/v2/auth/authorize/"),
		TikTokTokenURL:     getEnv("TIKTOK_TOKEN_URL", "https://open.tiktokapis.com/v2/oauth/token/"),
		TikTokAPIBase:      getEnv("TIKTOK_API_BASE", "https://open.tiktokapis.com/v2"),

		DiscordClientID:     getEnv("DISCORD_CLIENT_ID", ""),
		DiscordClientSecret: getEnv("DISCORD_CLIENT_SECRET", ""),
		DiscordRedirectURI:  getEnv("DISCORD_REDIRECT_URI", ""),
		DiscordAuthURL:      getEnv("DISCORD_AUTH_URL", "https://discord.com/api/oauth2/authorize"),
		DiscordTokenURL:     getEnv("DISCORD_TOKEN_URL", "https://discord.com/api/oauth2/token"),
		DiscordAPIBase:      getEnv("DISCORD_API_BASE", "https://discord.com/api/v10"),

		UpstreamTimeout: parseDuration(getEnv("UPSTREAM_TIMEOUT", "10s"), 10*time.Second),

		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   getEnv("CORS_ORIGINS", "http://localhost:3000"),
		DashboardPath: getEnv("DASHBOARD_PATH", "/dashboard"),
		AppEnv:        getEnv("APP_ENV", "development"),
		AppName:       getEnv("APP_NAME", "Mochi Mirror"),
		ContactEmail:  getEnv("CONTACT_EMAIL", "support@mochimirror.com"),

		SentryDSN:      getEnv("SENTRY_DSN", ""),
		LogRetention:   parseDuration(getEnv("LOG_RETENTION", "720h"), 30*24*time.Hour),
		MetricsEnabled: parseBool(getEnv("METRICS_ENABLED", "true"), true),
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// IsSQLite reports whether DatabaseURL points at a sqlite file.
func (c *Config) IsSQLite() bool {
	return strings.HasPrefix(c.DatabaseURL, "sqlite://")
}

// SQLitePath returns the file path part of a sqlite:// DatabaseURL.
func (c *Config) SQLitePath() string {
	return strings.TrimPrefix(c.DatabaseURL, "sqlite://")
}

// normalizeDatabaseURL rewrites Heroku/Vercel style postgres:// URLs and
// falls back to a local sqlite file when nothing is configured.
func normalizeDatabaseURL(raw string) string {
	switch {
	case raw == "":
		return "sqlite://dtt.db"
	case strings.HasPrefix(raw, "postgres://"):
		return "postgresql://" + strings.TrimPrefix(raw, "postgres://")
	default:
		return raw
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
