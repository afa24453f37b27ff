package utils

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ListenAddr string

	// Comp search backend (HTML extractor)
	CompsEndpoint string
	CompsTimeout  time.Duration
	CompsRetries  int

	// Gemini credentials. Passed explicitly into the LLM clients,
	// never re-exported into the process environment.
	GeminiAPIKey string
	GeminiModel  string

	MaxSavedCompsPerFetch int
}

// LoadConfig reads the optional .env file and returns a populated Config.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, using system env vars")
	}

	return Config{
		ListenAddr:            getEnv("AUCTIONHUB_ADDR", ":8080"),
		CompsEndpoint:         getEnv("AUCTIONHUB_COMPS_ENDPOINT", "https://back.130point.com/sales/"),
		CompsTimeout:          time.Duration(getEnvInt("AUCTIONHUB_COMPS_TIMEOUT_SEC", 30)) * time.Second,
		CompsRetries:          getEnvInt("AUCTIONHUB_COMPS_RETRIES", 3),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		MaxSavedCompsPerFetch: getEnvInt("AUCTIONHUB_MAX_SAVED_COMPS", 3),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
