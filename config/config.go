package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config menampung seluruh konfigurasi client dari environment.
type Config struct {
	APIBaseURL     string        // base URL REST API, contoh: http://localhost:8080
	WSBaseURL      string        // base URL channel realtime, contoh: ws://localhost:8080
	SessionPath    string        // path file sqlite untuk session lokal
	RequestTimeout time.Duration // batas waktu tiap round-trip channel
}

// Load membaca .env (jika ada) lalu environment variables.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	cfg := Config{
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8080"),
		WSBaseURL:      getEnv("WS_BASE_URL", "ws://localhost:8080"),
		SessionPath:    getEnv("SESSION_PATH", "session.db"),
		RequestTimeout: 8 * time.Second,
	}

	if raw := os.Getenv("REQUEST_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.RequestTimeout = d
		} else {
			log.Printf("Warning: invalid REQUEST_TIMEOUT %q, using default", raw)
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
