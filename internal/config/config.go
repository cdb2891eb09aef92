// Package config reads the process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort        string
	BackendBaseURL  string
	RedisAddr       string
	KafkaBrokers    []string
	RequestTimeout  time.Duration
	BackendTimeout  time.Duration
	SessionTTL      time.Duration
	ShutdownTimeout time.Duration
}

func Load() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		BackendBaseURL:  getEnv("BACKEND_BASE_URL", "http://localhost:5000"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		BackendTimeout:  getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),
		SessionTTL:      getEnvDuration("SESSION_TTL", 30*time.Minute),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
