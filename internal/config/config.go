package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env      string
	HTTPPort string

	DatabaseURL  string
	RedisAddr    string
	StoreBackend string
	QueueBackend string

	JWTIssuer     string
	JWTSigningKey string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	SharedSecret     string
	TokenLength      int
	GeofenceLat      float64
	GeofenceLon      float64
	GeofenceRadiusKm float64
	EvictionGrace    time.Duration
	SweepInterval    time.Duration

	RateLimitPerMin int
}

// Load returns application config populated from the environment with sensible
// defaults. A .env file in the working directory is applied first if present.
func Load() App {
	_ = godotenv.Load()

	return App{
		Env:      getEnv("APP_ENV", "dev"),
		HTTPPort: getEnv("HTTP_PORT", "8081"),

		DatabaseURL:  getEnv("DATABASE_URL", ""),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		StoreBackend: getEnv("STORE_BACKEND", "memory"),
		QueueBackend: getEnv("QUEUE_BACKEND", "memory"),

		JWTIssuer:     getEnv("JWT_ISSUER", "qrpass"),
		JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		AccessTTL:     durationEnv("ACCESS_TTL", 15*time.Minute),
		RefreshTTL:    durationEnv("REFRESH_TTL", 24*time.Hour),

		SharedSecret:     getEnv("SHARED_SECRET", "dev-shared-secret-change"),
		TokenLength:      intEnv("TOKEN_LENGTH", 16),
		GeofenceLat:      floatEnv("GEOFENCE_LAT", 34.0522),
		GeofenceLon:      floatEnv("GEOFENCE_LON", -118.2437),
		GeofenceRadiusKm: floatEnv("GEOFENCE_RADIUS_KM", 5.0),
		EvictionGrace:    durationEnv("EVICTION_GRACE", 5*time.Second),
		SweepInterval:    durationEnv("SWEEP_INTERVAL", 5*time.Second),

		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}

func floatEnv(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return parsed
		}
		log.Printf("invalid float for %s, using fallback %v", key, fallback)
	}
	return fallback
}
