package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// wizardStep is the index of the form the front end should show.
type wizardStep int

const (
	stepUserInfo    wizardStep = iota // 基础信息
	stepPreferences                   // 饮食偏好
	stepGenerate                      // 生成食谱
	stepResult                        // 购物清单
)

var (
	errMissingAPIKey        = errors.New("请先设置API密钥")
	errProfileIncomplete    = errors.New("请先完成基本信息和饮食偏好")
	errGenerationInProgress = errors.New("生成中...")
)

// validationError is a rejected form field. Message is shown to the user as is.
type validationError struct {
	Field   string
	Message string
}

func (e *validationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// appState is the single wizard session: current step, profile, API settings,
// the last generation result and the loading flag. All access goes through
// its methods.
type appState struct {
	mu        sync.Mutex
	step      wizardStep
	profile   userProfile
	settings  apiSettings
	mealPlan  *mealPlanResult
	isLoading bool
}

// newAppState returns a session at step 0 with the default profile.
func newAppState(settings apiSettings) *appState {
	return &appState{
		step:     stepUserInfo,
		profile:  defaultUserProfile(),
		settings: settings,
	}
}

// snapshot returns a copy of the session for GET /api/session.
func (s *appState) snapshot() sessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := sessionSnapshot{
		Step:      s.step,
		Profile:   copyProfile(s.profile),
		Settings:  maskSettings(s.settings),
		IsLoading: s.isLoading,
	}
	if s.mealPlan != nil {
		content := s.mealPlan.Content
		snap.MealPlan = &content
		snap.ShoppingList = append([]string{}, s.mealPlan.ShoppingList...)
	}
	return snap
}

func (s *appState) currentProfile() userProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyProfile(s.profile)
}

func (s *appState) currentSettings() apiSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *appState) currentMealPlan() *mealPlanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mealPlan
}

/* ─── Step 0: basic info ─────────────────────────────────────────────── */

// setUserInfo validates the step-0 form, stores it with the derived BMI and
// advances to the preferences step.
func (s *appState) setUserInfo(req putProfileRequest) (userProfile, error) {
	if err := validateUserInfo(req); err != nil {
		return userProfile{}, err
	}
	bmi := calculateBMI(*req.Height, *req.Weight)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Gender = *req.Gender
	s.profile.Age = req.Age
	s.profile.Height = req.Height
	s.profile.Weight = req.Weight
	s.profile.TargetWeight = req.TargetWeight
	s.profile.ActivityLevel = *req.ActivityLevel
	s.profile.BMI = &bmi
	s.step = stepPreferences
	return copyProfile(s.profile), nil
}

// validateUserInfo applies the form's ranges: age 12-100, height 100-220cm,
// weight and target weight 30-200kg.
func validateUserInfo(req putProfileRequest) error {
	if req.Gender == nil || (*req.Gender != "male" && *req.Gender != "female") {
		return &validationError{"gender", "请选择性别"}
	}
	if req.Age == nil {
		return &validationError{"age", "请输入年龄"}
	}
	if *req.Age < 12 {
		return &validationError{"age", "年龄必须至少为12岁"}
	}
	if *req.Age > 100 {
		return &validationError{"age", "年龄不能超过100岁"}
	}
	if err := validateRange("height_cm", req.Height, 100, 220, "请输入身高", "身高必须至少为100厘米", "身高不能超过220厘米"); err != nil {
		return err
	}
	if err := validateRange("weight_kg", req.Weight, 30, 200, "请输入体重", "体重必须至少为30公斤", "体重不能超过200公斤"); err != nil {
		return err
	}
	if err := validateRange("target_weight_kg", req.TargetWeight, 30, 200, "请输入目标体重", "目标体重必须至少为30公斤", "目标体重不能超过200公斤"); err != nil {
		return err
	}
	if req.ActivityLevel == nil {
		return &validationError{"activity_level", "请选择活动水平"}
	}
	if _, ok := activityMultipliers[*req.ActivityLevel]; !ok {
		return &validationError{"activity_level", "请选择活动水平"}
	}
	return nil
}

func validateRange(field string, v *float64, lo, hi float64, missing, tooLow, tooHigh string) error {
	switch {
	case v == nil:
		return &validationError{field, missing}
	case *v < lo:
		return &validationError{field, tooLow}
	case *v > hi:
		return &validationError{field, tooHigh}
	}
	return nil
}

/* ─── Step 1: dietary preferences ────────────────────────────────────── */

// setDietaryPreferences validates the step-1 form, replaces the preferences
// and advances to the generate step. Duplicate restriction tags are dropped.
func (s *appState) setDietaryPreferences(req putPreferencesRequest) (dietaryPreferences, error) {
	if req.CuisineType == nil || *req.CuisineType == "" {
		return dietaryPreferences{}, &validationError{"cuisine_type", "请选择口味偏好"}
	}
	if _, ok := cuisineTypeText[*req.CuisineType]; !ok {
		return dietaryPreferences{}, &validationError{"cuisine_type", "请选择口味偏好"}
	}
	if req.CookingTime == nil || *req.CookingTime == "" {
		return dietaryPreferences{}, &validationError{"cooking_time", "请选择烹饪时间"}
	}
	if _, ok := cookingTimeText[*req.CookingTime]; !ok {
		return dietaryPreferences{}, &validationError{"cooking_time", "请选择烹饪时间"}
	}

	restrictions := make([]string, 0, len(req.Restrictions))
	seen := make(map[string]bool, len(req.Restrictions))
	for _, tag := range req.Restrictions {
		if _, ok := restrictionText[tag]; !ok {
			return dietaryPreferences{}, &validationError{"restrictions", "未知的饮食限制：" + tag}
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		restrictions = append(restrictions, tag)
	}

	prefs := dietaryPreferences{
		Restrictions: restrictions,
		CuisineType:  *req.CuisineType,
		CookingTime:  *req.CookingTime,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step < stepPreferences {
		return dietaryPreferences{}, errProfileIncomplete
	}
	s.profile.DietaryPreferences = prefs
	s.step = stepGenerate
	return copyPreferences(prefs), nil
}

/* ─── Navigation ─────────────────────────────────────────────────────── */

// goToStep moves back to an earlier (or the current) step. Forward moves
// only happen by submitting the step's form.
func (s *appState) goToStep(step wizardStep) error {
	if step < stepUserInfo || step > stepResult {
		return &validationError{"step", "无效的步骤"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if step > s.step {
		return &validationError{"step", "请先完成当前步骤"}
	}
	s.step = step
	return nil
}

/* ─── Settings dialog ────────────────────────────────────────────────── */

// updateSettings applies the non-nil fields of req. Surrounding whitespace in
// the URL and model is trimmed; an empty URL or model keeps the current value.
func (s *appState) updateSettings(req patchSettingsRequest) apiSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.APIKey != nil {
		s.settings.APIKey = strings.TrimSpace(*req.APIKey)
	}
	if req.APIURL != nil && strings.TrimSpace(*req.APIURL) != "" {
		s.settings.APIURL = strings.TrimSpace(*req.APIURL)
	}
	if req.Model != nil && strings.TrimSpace(*req.Model) != "" {
		s.settings.Model = strings.TrimSpace(*req.Model)
	}
	return s.settings
}

/* ─── Step 2: generation ─────────────────────────────────────────────── */

// beginGeneration sets the loading flag and returns the profile and settings
// snapshot the request must use. Edits made while the call is in flight do
// not affect it. Fails with errGenerationInProgress while another call holds
// the flag.
func (s *appState) beginGeneration() (userProfile, apiSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isLoading {
		return userProfile{}, apiSettings{}, errGenerationInProgress
	}
	if s.settings.APIKey == "" {
		return userProfile{}, apiSettings{}, errMissingAPIKey
	}
	if s.step < stepGenerate {
		return userProfile{}, apiSettings{}, errProfileIncomplete
	}
	s.isLoading = true
	return copyProfile(s.profile), s.settings, nil
}

// completeGeneration stores result (replacing any previous one), clears the
// loading flag and shows the result step.
func (s *appState) completeGeneration(result *mealPlanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mealPlan = result
	s.isLoading = false
	s.step = stepResult
}

// failGeneration clears the loading flag; the previous result, if any, is kept.
func (s *appState) failGeneration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false
}

/* ─── Helpers ────────────────────────────────────────────────────────── */

// copyProfile deep-copies p so callers can't alias session state.
func copyProfile(p userProfile) userProfile {
	out := p
	out.Age = copyPtr(p.Age)
	out.Height = copyPtr(p.Height)
	out.Weight = copyPtr(p.Weight)
	out.TargetWeight = copyPtr(p.TargetWeight)
	out.BMI = copyPtr(p.BMI)
	out.DietaryPreferences = copyPreferences(p.DietaryPreferences)
	return out
}

func copyPreferences(d dietaryPreferences) dietaryPreferences {
	d.Restrictions = append([]string{}, d.Restrictions...)
	return d
}

func copyPtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// maskSettings hides all but the last four characters (runes) of the API key.
func maskSettings(s apiSettings) settingsResponse {
	resp := settingsResponse{APIURL: s.APIURL, Model: s.Model, APIKeySet: s.APIKey != ""}
	if s.APIKey == "" {
		return resp
	}
	key := []rune(s.APIKey)
	if len(key) <= 4 {
		resp.APIKeyMasked = strings.Repeat("*", len(key))
	} else {
		resp.APIKeyMasked = strings.Repeat("*", len(key)-4) + string(key[len(key)-4:])
	}
	return resp
}
