package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"
)

// InsecureDevSecret signs tokens when JWT_SECRET is unset. It exists so the
// API boots in local dev; it must never reach production, and startup logs a
// warning whenever it is in use outside dev.
const InsecureDevSecret = "edutrack-dev-secret-change-in-production"

type Config struct {
	Env  string
	Port int

	DBURL string

	JWTSecret   string
	JWTTTLHours int

	// Fixed superuser credentials, compared at login time. The admin is not a
	// row in the users table.
	AdminEmail    string
	AdminPassword string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTELEndpoint string

	CORSAllowedOrigins []string
}

func Load() Config {
	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		JWTSecret:   getEnv("JWT_SECRET", InsecureDevSecret),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 24),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@edutrack.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTELEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", ""),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
	}
}

func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "test"
}

// UsingFallbackSecret reports whether the baked-in dev signing secret is in
// use, so main can refuse to stay quiet about it.
func (c Config) UsingFallbackSecret() bool {
	return c.JWTSecret == InsecureDevSecret
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "edutrack")
	pass := getEnv("DB_PASSWORD", "edutrack")
	name := getEnv("DB_NAME", "edutrack")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")

	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	return out
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
