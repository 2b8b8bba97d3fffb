package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env        string
	Port       int
	DBURL      string
	DBMaxConns int32

	// auth
	JWTSecret  string
	JWTTTLDays int

	// optional infra
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	OTLPEndpoint  string

	CORSAllowedOrigins []string
}

func Load() Config {
	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)
	dbURL := getEnv("DATABASE_URL", "")

	if dbURL == "" {
		dbURL = buildDBURL()
	}

	return Config{
		Env:        env,
		Port:       port,
		DBURL:      dbURL,
		DBMaxConns: int32(getEnvInt("DB_MAX_CONNS", 5)),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTTTLDays: getEnvInt("JWT_TTL_DAYS", 7),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "fintrack")
	pass := getEnv("DB_PASSWORD", "fintrack")
	name := getEnv("DB_NAME", "fintrack")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// TokenTTL is the bearer token lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLDays) * 24 * time.Hour
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
			return fallback
		}

		return num
	}
	return fallback
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
