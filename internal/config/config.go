package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config carries process-level settings. Database settings stay in the
// database package, which reads its own environment.
type Config struct {
	Port         string
	AdminKey     string
	AdminKeyHash string
	JWTSecret    string
	AllowOrigins []string
}

// Load reads .env when present and falls back to the process environment.
// A missing .env is normal in production.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] could not load .env: %v", err)
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		AdminKey:     os.Getenv("ADMIN_KEY"),
		AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
		AllowOrigins: []string{getEnv("CORS_ORIGIN", "*")},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
