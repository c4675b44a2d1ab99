package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler holds shared dependencies (session, outbound client, config) for all route handlers.
type Handler struct {
	session    *appState
	httpClient *http.Client // Chat-completion client (no timeout; the request context cancels)
	cfg        appConfig
}

// newHandler builds a Handler with a fresh session seeded from cfg.LLM.
func newHandler(cfg appConfig) *Handler {
	return &Handler{
		session:    newAppState(cfg.LLM),
		httpClient: &http.Client{},
		cfg:        cfg,
	}
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/session", h.getSession)
	api.PUT("/session/profile", h.putProfile)
	api.PUT("/session/preferences", h.putPreferences)
	api.POST("/session/step", h.postStep)
	api.GET("/session/prompt", h.getPromptPreview)
	api.POST("/meal-plan", h.postMealPlan)
	api.GET("/meal-plan", h.getMealPlan)
	api.GET("/meal-plan/shopping-list", h.getShoppingListText)
	api.GET("/settings", h.getSettings)
	api.PUT("/settings", h.putSettings)
}
