package config

import (
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// RedisConfig locates the stream that run events are published to.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
}

func GetRedisConfig() RedisConfig {
	db := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsed, err := strconv.Atoi(dbStr); err == nil {
			db = parsed
		}
	}

	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
		Stream:   getEnv("REDIS_STREAM", defaultRedisStreamKey),
		Group:    getEnv("REDIS_GROUP", "archivers"),
	}
}

// Options converts the config into client options.
func (r RedisConfig) Options() *redis.Options {
	return &redis.Options{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
