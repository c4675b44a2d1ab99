package main

import (
	"time"

	"github.com/google/uuid"
)

/* ─── Domain structs ─────────────────────────────────────────────────── */

// dietaryPreferences is the step-1 form: restriction tags plus cuisine and
// cooking-time codes.
type dietaryPreferences struct {
	Restrictions []string `json:"restrictions"`
	CuisineType  string   `json:"cuisine_type"`
	CookingTime  string   `json:"cooking_time"`
}

// userProfile is the session's body profile. Numeric fields are pointers so
// "not entered yet" is distinct from zero and JSON renders them as null.
type userProfile struct {
	Gender             string             `json:"gender"`
	Age                *int               `json:"age"`
	Height             *float64           `json:"height_cm"`
	Weight             *float64           `json:"weight_kg"`
	TargetWeight       *float64           `json:"target_weight_kg"`
	ActivityLevel      string             `json:"activity_level"`
	DietaryPreferences dietaryPreferences `json:"dietary_preferences"`

	// Derived when the step-0 form is saved.
	BMI *float64 `json:"bmi"`
}

// defaultUserProfile is the profile a new session starts with.
func defaultUserProfile() userProfile {
	return userProfile{
		Gender:        "male",
		ActivityLevel: "moderate",
		DietaryPreferences: dietaryPreferences{
			Restrictions: []string{},
			CuisineType:  "chinese",
			CookingTime:  "medium",
		},
	}
}

// apiSettings holds the chat-completion endpoint config edited by the
// settings dialog. In memory only.
type apiSettings struct {
	APIKey string `json:"-"`
	APIURL string `json:"api_url"`
	Model  string `json:"model"`
}

const (
	defaultAPIURL = "https://api.siliconflow.cn/v1/chat/completions"
	defaultModel  = "Qwen/Qwen3-8B"
)

// mealPlanResult is one successful generation. ShoppingList is always derived
// from Content by extractShoppingList.
type mealPlanResult struct {
	ID           uuid.UUID `json:"id"`
	Content      string    `json:"content"`
	ShoppingList []string  `json:"shopping_list"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// newMealPlanResult wraps raw model output and extracts its shopping list.
func newMealPlanResult(content string) *mealPlanResult {
	return &mealPlanResult{
		ID:           uuid.New(),
		Content:      content,
		ShoppingList: extractShoppingList(content),
		GeneratedAt:  time.Now().UTC(),
	}
}

/* ─── Request / Response types ───────────────────────────────────────── */

// putProfileRequest is the request body for PUT /api/session/profile.
// Pointers let validation report which field is missing.
type putProfileRequest struct {
	Gender        *string  `json:"gender"`
	Age           *int     `json:"age"`
	Height        *float64 `json:"height_cm"`
	Weight        *float64 `json:"weight_kg"`
	TargetWeight  *float64 `json:"target_weight_kg"`
	ActivityLevel *string  `json:"activity_level"`
}

// putPreferencesRequest is the request body for PUT /api/session/preferences.
type putPreferencesRequest struct {
	Restrictions []string `json:"restrictions"`
	CuisineType  *string  `json:"cuisine_type"`
	CookingTime  *string  `json:"cooking_time"`
}

// patchSettingsRequest is the request body for PUT /api/settings.
// All fields are pointers; only non-nil fields replace the current value.
type patchSettingsRequest struct {
	APIKey *string `json:"api_key"`
	APIURL *string `json:"api_url"`
	Model  *string `json:"model"`
}

// settingsResponse is the masked view of apiSettings returned to clients.
type settingsResponse struct {
	APIURL       string `json:"api_url"`
	Model        string `json:"model"`
	APIKeySet    bool   `json:"api_key_set"`
	APIKeyMasked string `json:"api_key_masked"`
}

// sessionSnapshot is the response shape for GET /api/session.
type sessionSnapshot struct {
	Step         wizardStep       `json:"step"`
	Profile      userProfile      `json:"profile"`
	Settings     settingsResponse `json:"settings"`
	IsLoading    bool             `json:"is_loading"`
	MealPlan     *string          `json:"meal_plan"`
	ShoppingList []string         `json:"shopping_list"`
}
