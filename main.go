package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Set properties of the predefined Logger: the log entry prefix, and no
	// time/file flags since gin's logger already timestamps requests.
	log.SetPrefix("lg/meal-plan-go-api: ")
	log.SetFlags(0)

	// .env is optional; real environment variables win either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading .env: %v", err)
	}

	cfg := loadConfig()
	if cfg.authEnabled() && cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET must be set when AUTH_PASSWORD_HASH is set")
		os.Exit(1)
	}
	if cfg.LLM.APIKey == "" {
		log.Printf("LLM_API_KEY not set; configure it via PUT /api/settings before generating")
	}

	fmt.Println("Starting gin app...")

	h := newHandler(cfg)
	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
