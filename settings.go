package main

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// getSettings returns the chat-completion settings with the API key masked.
// GET /api/settings.
func (h *Handler) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, maskSettings(h.session.currentSettings()))
}

// putSettings saves the settings dialog. Uses pointer fields in the request
// body to distinguish "not provided" from empty; only non-nil fields change.
// PUT /api/settings.
func (h *Handler) putSettings(c *gin.Context) {
	var body patchSettingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.APIKey == nil && body.APIURL == nil && body.Model == nil {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	// Reject a malformed URL here; otherwise it only surfaces as a transport
	// error on the next generation.
	if body.APIURL != nil && strings.TrimSpace(*body.APIURL) != "" {
		u, err := url.Parse(strings.TrimSpace(*body.APIURL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			apiError(c, http.StatusBadRequest, "api_url must be an absolute http(s) URL")
			return
		}
	}

	s := h.session.updateSettings(body)
	log.Printf("[putSettings] settings saved: url=%s model=%s key_set=%t", s.APIURL, s.Model, s.APIKey != "")

	c.JSON(http.StatusOK, maskSettings(s))
}
