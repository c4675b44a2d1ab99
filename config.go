package main

import (
	"log"
	"os"
	"strconv"
	"time"
)

// appConfig is read once at startup from the environment (after .env).
type appConfig struct {
	ListenAddr string

	// Initial chat-completion settings; the settings dialog can change them.
	LLM apiSettings

	// Operator login. An empty PasswordHash disables auth.
	AuthUsername     string
	AuthPasswordHash string
	JWTSecret        string
	JWTExpiry        time.Duration
}

// loadConfig reads appConfig from environment variables, falling back to defaults.
func loadConfig() appConfig {
	return appConfig{
		ListenAddr: getEnv("LISTEN_HOST", "localhost") + ":" + getEnv("PORT", "3000"),
		LLM: apiSettings{
			APIKey: os.Getenv("LLM_API_KEY"),
			APIURL: getEnv("LLM_API_URL", defaultAPIURL),
			Model:  getEnv("LLM_MODEL", defaultModel),
		},
		AuthUsername:     getEnv("AUTH_USERNAME", "admin"),
		AuthPasswordHash: os.Getenv("AUTH_PASSWORD_HASH"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTExpiry:        time.Duration(getIntEnv("JWT_EXPIRY_HOURS", 24)) * time.Hour,
	}
}

func (c appConfig) authEnabled() bool {
	return c.AuthPasswordHash != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("[config] invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
