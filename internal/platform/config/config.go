// Package config builds runtime configuration from the environment so main
// stays lean. Every external dependency is optional: with an empty Postgres
// DSN the service runs on in-memory stores, with an empty Redis URL the
// settings cache is skipped, and with no Kafka brokers the outbox relay is
// not started.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	PostgresDSN string
	Redis       RedisConfig
	Kafka       KafkaConfig

	// SettingsCacheTTL bounds how stale a cached weights/FX snapshot may be.
	SettingsCacheTTL time.Duration
}

// RedisConfig configures the optional settings snapshot cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional outbox relay.
type KafkaConfig struct {
	Brokers       []string
	Topic         string
	RelayInterval time.Duration
	RelayBatch    int
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("INCENTRA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	cfg := Server{
		Addr:             addr,
		PostgresDSN:      os.Getenv("INCENTRA_POSTGRES_DSN"),
		SettingsCacheTTL: durationEnv("INCENTRA_SETTINGS_CACHE_TTL", 5*time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("INCENTRA_REDIS_URL"),
			PoolSize:     intEnv("INCENTRA_REDIS_POOL_SIZE", 10),
			MinIdleConns: intEnv("INCENTRA_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationEnv("INCENTRA_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("INCENTRA_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("INCENTRA_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Topic:         envDefault("INCENTRA_KAFKA_TOPIC", "incentra.stack.events"),
			RelayInterval: durationEnv("INCENTRA_OUTBOX_RELAY_INTERVAL", 2*time.Second),
			RelayBatch:    intEnv("INCENTRA_OUTBOX_RELAY_BATCH", 100),
		},
	}

	if brokers := os.Getenv("INCENTRA_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	return cfg
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
