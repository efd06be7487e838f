package config

import (
	"errors"
	"os"
	"strings"
)

type Config struct {
	DBHost           string
	DBPort           string
	DBUser           string
	DBPass           string
	DBName           string
	DBSSLMode        string
	JWTSecret        string
	CheckinSecret    string
	AllowQRCheckin   bool
	AntiSpoofCheckin bool
	Port             string
	Env              string
	LogLevel         string
}

func NewConfigFromEnv() (*Config, error) {
	cfg := &Config{
		DBHost:           getenv("DB_HOST", "localhost"),
		DBPort:           getenv("DB_PORT", "5432"),
		DBUser:           getenv("DB_USER", "postgres"),
		DBPass:           getenv("DB_PASSWORD", "postgres"),
		DBName:           getenv("DB_NAME", "luckydraw"),
		DBSSLMode:        getenv("DB_SSLMODE", "disable"),
		JWTSecret:        getenv("JWT_SECRET", ""),
		CheckinSecret:    getenv("CHECKIN_HMAC_SECRET", ""),
		AllowQRCheckin:   getbool("ALLOW_QR_CHECKIN", true),
		AntiSpoofCheckin: getbool("ANTI_SPOOF_CHECKIN", true),
		Port:             getenv("PORT", "3000"),
		Env:              getenv("ENV", "development"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.CheckinSecret == "" {
		return nil, errors.New("CHECKIN_HMAC_SECRET is required")
	}

	return cfg, nil
}

func getenv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getbool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value != "false" && value != "0"
}
