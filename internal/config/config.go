package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	MongoURL string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ListCacheTTL  time.Duration

	OTLPEndpoint string

	CORSAllowedOrigins []string

	SweepInterval time.Duration
	WorkerPort    int
}

func Load() Config {
	// .env is optional; deployments set the environment directly
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		MongoURL: getEnv("MONGO_URL", "mongodb://127.0.0.1:27017"),
		MongoDB:  getEnv("MONGO_DB", "vidtrack"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		ListCacheTTL:  getEnvDuration("LIST_CACHE_TTL", 10*time.Second),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", ""),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8080"}),

		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 10*time.Minute),
		WorkerPort:    getEnvInt("WORKER_PORT", 8081),
	}
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return d
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)

	if v == "" {
		return fallback
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
