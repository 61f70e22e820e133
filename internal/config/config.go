package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

type envConfig struct {
	// server config
	APP_PORT string
	// database config
	DB_DRIVER            string
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	SQLITE_PATH          string
	QUERY_TIMEOUT        time.Duration
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
	// query pipeline config
	NLQ_STRATEGY   string
	NLQ_RULES_FILE string
	// completion service config
	LLM_PROVIDER    string
	LLM_MODEL       string
	LLM_API_KEY     string
	LLM_BASE_URL    string
	LLM_TEMPERATURE float64
	LLM_MAX_TOKENS  int
	LLM_TIMEOUT     time.Duration
}

// LoadEnvConfig reads .env (when present) and the process environment into DefaultEnvConfig.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		APP_PORT:             getEnvString("APP_PORT", "8080"),
		DB_DRIVER:            getEnvString("DB_DRIVER", "postgres"),
		DB_HOST:              getEnvString("DB_HOST", "localhost"),
		DB_PORT:              getEnvInt("DB_PORT", 5432),
		DB_USER:              getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:          getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:              getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:          getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME: getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
		SQLITE_PATH:          getEnvString("SQLITE_PATH", "employee_activity.db"),
		QUERY_TIMEOUT:        getEnvDuration("QUERY_TIMEOUT", 10*time.Second),
		LOG_FILE_PATH:        getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:            getEnvString("LOG_LEVEL", "info"),
		NLQ_STRATEGY:         getEnvString("NLQ_STRATEGY", "template"),
		NLQ_RULES_FILE:       getEnvString("NLQ_RULES_FILE", ""),
		LLM_PROVIDER:         getEnvString("LLM_PROVIDER", "anthropic"),
		LLM_MODEL:            getEnvString("LLM_MODEL", ""),
		LLM_API_KEY:          getEnvString("LLM_API_KEY", ""),
		LLM_BASE_URL:         getEnvString("LLM_BASE_URL", ""),
		LLM_TEMPERATURE:      getEnvFloat("LLM_TEMPERATURE", 0),
		LLM_MAX_TOKENS:       getEnvInt("LLM_MAX_TOKENS", 1024),
		LLM_TIMEOUT:          getEnvDuration("LLM_TIMEOUT", 30*time.Second),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
