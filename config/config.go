/*
config.go - Process configuration

PURPOSE:
  Loads configuration from the environment, with a .env file as an
  optional local override. Every setting has a development default so
  `bankd serve` works out of the box; production deployments set the
  variables explicitly.
*/
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the process configuration.
type Config struct {
	Port     string
	DBPath   string
	LogLevel string

	// JWTSecret signs API tokens. Empty disables authentication, which
	// is only acceptable for local simulation runs.
	JWTSecret string

	GatewayURL string

	// AutoAdvanceSpec is a cron expression that advances the simulated
	// calendar automatically. Empty disables auto-advance.
	AutoAdvanceSpec string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present; missing files are
// not an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "bank.db"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		GatewayURL:      getEnv("GATEWAY_URL", ""),
		AutoAdvanceSpec: getEnv("AUTO_ADVANCE", ""),
		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SenderEmail:     getEnv("SENDER_EMAIL", "noreply@aegeanbank.example"),
	}
}

// EmailEnabled reports whether outbound email is configured.
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
