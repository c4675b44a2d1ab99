package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// getSession returns the whole wizard state: step, profile, masked settings,
// loading flag and the last result (null until a generation succeeds).
// GET /api/session.
func (h *Handler) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.snapshot())
}

// putProfile saves the basic-info form (step 0), computes BMI, and advances
// to the preferences step.
// PUT /api/session/profile.
func (h *Handler) putProfile(c *gin.Context) {
	var body putProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.session.setUserInfo(body)
	if err != nil {
		wizardError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// putPreferences saves the dietary preference form (step 1) and advances to
// the generate step. Requires step 0 to be complete.
// PUT /api/session/preferences.
func (h *Handler) putPreferences(c *gin.Context) {
	var body putPreferencesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	prefs, err := h.session.setDietaryPreferences(body)
	if err != nil {
		wizardError(c, err)
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// postStep navigates back to an earlier step ("返回", "重新生成食谱").
// POST /api/session/step. Body: {"step": 0-3}.
func (h *Handler) postStep(c *gin.Context) {
	var body struct {
		Step *int `json:"step"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Step == nil {
		apiError(c, http.StatusBadRequest, "step is required")
		return
	}

	if err := h.session.goToStep(wizardStep(*body.Step)); err != nil {
		wizardError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.session.snapshot())
}

// getPromptPreview returns the user prompt a generation would send right now.
// GET /api/session/prompt.
func (h *Handler) getPromptPreview(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"prompt": formatUserDataForPrompt(h.session.currentProfile())})
}

// wizardError maps session errors to HTTP statuses.
func wizardError(c *gin.Context, err error) {
	var vErr *validationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
	case errors.Is(err, errProfileIncomplete):
		apiError(c, http.StatusConflict, err.Error())
	default:
		apiError(c, http.StatusInternalServerError, err.Error())
	}
}
