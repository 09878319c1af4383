package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort int

	MongoURL string
	MongoDB  string

	JWTSecret   string
	TokenTTL    time.Duration
	GuestTTL    time.Duration
	CORSOrigins []string
	AdminEmails []string

	RedisURL        string
	RedisPassword   string
	RedisDB         int
	ProductCacheTTL time.Duration

	FirebaseProjectID       string
	FirebaseCredentialsJSON string

	ShippingStandardCents      int64
	ShippingExpressCents       int64
	FreeShippingThresholdCents int64
}

// Load reads .env when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	mongoURL := getEnv("MONGO_PUBLIC_URL", "")
	if mongoURL == "" {
		mongoURL = getEnv("MONGO_URL", "mongodb://localhost:27017/?replicaSet=rs0")
	}

	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),

		MongoURL: mongoURL,
		MongoDB:  getEnv("MONGO_DB", "jinstore"),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenTTL:    getEnvDuration("TOKEN_TTL", 24*time.Hour),
		GuestTTL:    getEnvDuration("GUEST_TOKEN_TTL", 30*24*time.Hour),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		AdminEmails: getEnvList("ADMIN_EMAILS", nil),

		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		ProductCacheTTL: getEnvDuration("PRODUCT_CACHE_TTL", 5*time.Minute),

		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),

		ShippingStandardCents:      getEnvInt64("SHIPPING_STANDARD_CENTS", 500),
		ShippingExpressCents:       getEnvInt64("SHIPPING_EXPRESS_CENTS", 1500),
		FreeShippingThresholdCents: getEnvInt64("FREE_SHIPPING_THRESHOLD_CENTS", 5000),
	}
}

func (c Config) Production() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
