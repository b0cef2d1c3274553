package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port               string
	StoreBaseURL       string
	StoreTimeout       time.Duration
	StoreListLimit     int
	RateLimitPerMinute int
	RateLimitBurst     int
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	baseURL := os.Getenv("STORE_BASE_URL")
	if baseURL == "" {
		baseURL = "https://smlgoapi.dedepos.com/v1"
	}

	return Config{
		Port:               port,
		StoreBaseURL:       baseURL,
		StoreTimeout:       readDurationSeconds("STORE_TIMEOUT_SECONDS", 10),
		StoreListLimit:     readInt("STORE_LIST_LIMIT", 100),
		RateLimitPerMinute: readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:     readInt("RATE_LIMIT_BURST", 30),
	}
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
