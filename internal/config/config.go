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

	MongoURI string
	MongoDB  string

	JWTSecret           string
	JWTAccessTTLMinutes int
	JWTRefreshTTLDays   int

	AdminEmail    string
	AdminPassword string
	AdminName     string
	AdminRole     string

	AllowedOrigins []string

	OTLPEndpoint string

	CacheTTLSeconds   int
	RateLimit         int
	RateWindowSeconds int
	MaxBodyBytes      int64
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		MongoURI: buildMongoURI(),
		MongoDB:  getEnv("MONGO_DB", "event_management"),

		JWTSecret:           getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 15),
		JWTRefreshTTLDays:   getEnvInt("JWT_REFRESH_TTL_DAYS", 7),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Admin"),
		AdminRole:     getEnv("ADMIN_ROLE", "admin"),

		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),

		CacheTTLSeconds:   getEnvInt("CACHE_TTL_SECONDS", 5),
		RateLimit:         getEnvInt("RATE_LIMIT", 20),
		RateWindowSeconds: getEnvInt("RATE_WINDOW_SECONDS", 60),
		MaxBodyBytes:      int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWTRefreshTTLDays) * 24 * time.Hour
}

// buildMongoURI prefers a full MONGO_URI and otherwise assembles one from
// the individual parts, the way the original deployment did.
func buildMongoURI() string {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		return uri
	}

	host := getEnv("MONGO_HOST", "127.0.0.1")
	port := getEnv("MONGO_PORT", "27017")
	userName := getEnv("MONGO_USERNAME", "")
	password := getEnv("MONGO_PASSWORD", "")

	if userName != "" {
		return "mongodb://" + userName + ":" + password + "@" + host + ":" + port
	}

	return "mongodb://" + host + ":" + port
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitCSV(raw string) []string {
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
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
