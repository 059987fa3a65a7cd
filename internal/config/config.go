package config

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	LogLevel string

	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int

	ServerPort string

	JWTSecret string

	RedisURL         string
	MailQueueEnabled bool
	WorkerCount      int

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	EmailFrom          string
	FrontendURL        string

	SentryDSN string
}

// LoadConfig reads .env (if present) and then the process environment.
// Environment variables win over .env values.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("MAIL_QUEUE_ENABLED", true)
	v.SetDefault("WORKER_COUNT", 2)

	cfg := &Config{
		Env:      v.GetString("ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		DBSSLMode:      v.GetString("DB_SSLMODE"),
		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),

		ServerPort: v.GetString("SERVER_PORT"),

		JWTSecret: v.GetString("JWT_SECRET"),

		RedisURL:         v.GetString("REDIS_URL"),
		MailQueueEnabled: v.GetBool("MAIL_QUEUE_ENABLED"),
		WorkerCount:      v.GetInt("WORKER_COUNT"),

		AWSRegion:          v.GetString("AWS_REGION"),
		AWSAccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
		EmailFrom:          v.GetString("EMAIL_FROM"),
		FrontendURL:        v.GetString("FRONTEND_URL"),

		SentryDSN: v.GetString("SENTRY_DSN"),
	}

	if cfg.DBMaxOpenConns <= 0 {
		cfg.DBMaxOpenConns = 20
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SESEnabled reports whether enough is configured to send real email.
func (c *Config) SESEnabled() bool {
	return c.AWSRegion != "" && c.EmailFrom != ""
}

// ValidateServer checks the settings the HTTP API cannot start without.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBName == "" || c.DBUser == "" {
		return errors.New("DB_NAME and DB_USER are required")
	}
	return nil
}
