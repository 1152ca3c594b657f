package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	LogFormat     string
	StoreBackend  string
	DatabaseURL   string
	MigrationsURL string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
	CORSOrigins   []string

	// Simulation behaviour
	RandomizeHidden bool
	AllowRepeat     bool

	// Session reports
	TelegramBotToken string
	TelegramChatID   int64
	ReportFontPath   string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		StoreBackend:  strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", "memory"))),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		MigrationsURL: getEnv("MIGRATIONS_URL", "file://migrations"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		CORSOrigins:   strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ","),

		RandomizeHidden: getEnvAsBool("SIM_RANDOMIZE_HIDDEN", false),
		AllowRepeat:     getEnvAsBool("SIM_ALLOW_REPEAT_QUESTIONS", true),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnvAsInt64("TELEGRAM_CHAT_ID", 0),
		ReportFontPath:   getEnv("REPORT_FONT_PATH", ""),
	}
}

// ReportsEnabled reports whether session reports can be delivered.
func (c *Config) ReportsEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
