package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

/* ─── System prompt ──────────────────────────────────────────────────── */

// mealPlanSystemPrompt fixes the nutrition rules and the markdown layout the
// model must answer in. The shopping list heading must stay in sync with
// shoppingListPattern.
const mealPlanSystemPrompt = `你是一名专业的减脂营养师，根据用户提供的身体数据（BMI、目标体重）和饮食偏好（忌口、口味、烹饪时间），生成**简单、可执行、热量可控**的每日食谱，并附带清晰的食材清单。规则:
1. **科学优先**
   - 每日总热量 = 用户基础代谢 × 活动系数 - 300~500kcal（安全减脂缺口）
   - 营养素分配：蛋白质30% / 脂肪25% / 碳水45%
   - 食材选择：高饱腹感（燕麦、鸡胸肉）、低GI（糙米、西兰花）

2. **严格遵循用户偏好**
   - 若用户选择"素食"，禁用所有肉类，用豆类/藜麦替代蛋白质
   - 若用户选择"中式"，避免生冷沙拉，推荐蒸煮炒等烹饪方式

3. **输出格式标准化**
   ` + "```" + `markdown
   ## 早餐
   - [菜名]：[食材+分量]（如：燕麦粥：燕麦50g+牛奶200ml）
   - **热量**：XXX kcal

   ## 午餐（示例）
   - 糙米饭：糙米80g
   - 清蒸鱼：鲈鱼100g + 姜片
   - **总热量**：XXX kcal

   ## 购物清单
   - 燕麦 50g
   - 鲈鱼 100g
   ` + "```" + `

4. **禁止行为**
   - ❌ 推荐用户忌口的食材（如用户选择"无乳糖"时禁用牛奶）
   - ❌ 复杂烹饪步骤（单菜烹饪时间≤20分钟）
   - ❌ 模糊分量（必须标注克数/毫升数）`

const mealPlanMaxTokens = 1024

/* ─── Errors ─────────────────────────────────────────────────────────── */

// defaultAPIErrorMessage is used when a failed response carries no error.message.
const defaultAPIErrorMessage = "Failed to generate meal plan"

// errNoContent means the endpoint answered 2xx without choices[0].message.content.
var errNoContent = errors.New("No content in API response")

// mealPlanAPIError is a non-2xx response from the chat-completion endpoint.
type mealPlanAPIError struct {
	StatusCode int
	Message    string
}

func (e *mealPlanAPIError) Error() string {
	return e.Message
}

/* ─── Chat-completion HTTP client ────────────────────────────────────── */

// chatMessage is a single message in the chat completions request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest is the request body for the chat completions API.
type chatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Stream         bool          `json:"stream"`
	MaxTokens      int           `json:"max_tokens"`
	EnableThinking bool          `json:"enable_thinking"`
}

// chatCompletionResponse covers both the success and the error body shape.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// generateMealPlan sends one non-streaming chat completion with the fixed
// system prompt and userPrompt as the user turn, and returns the raw content
// of the first choice. There is no retry and no client-side timeout; only ctx
// cancels the call.
func generateMealPlan(ctx context.Context, client *http.Client, userPrompt string, settings apiSettings) (string, error) {
	reqBody := chatCompletionRequest{
		Model: settings.Model,
		Messages: []chatMessage{
			{Role: "system", Content: mealPlanSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream:         false,
		MaxTokens:      mealPlanMaxTokens,
		EnableThinking: false,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, settings.APIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+settings.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var result chatCompletionResponse
	decodeErr := json.Unmarshal(respBytes, &result)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &mealPlanAPIError{StatusCode: resp.StatusCode, Message: defaultAPIErrorMessage}
		if decodeErr == nil && result.Error != nil && result.Error.Message != "" {
			apiErr.Message = result.Error.Message
		}
		log.Printf("[generateMealPlan] endpoint returned status %d: %s", resp.StatusCode, apiErr.Message)
		return "", apiErr
	}

	if decodeErr != nil {
		return "", fmt.Errorf("unmarshal response: %w", decodeErr)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", errNoContent
	}

	return result.Choices[0].Message.Content, nil
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// generationFailedMessage is shown when the call failed before the endpoint answered.
const generationFailedMessage = "生成食谱失败，请检查API设置"

// postMealPlan handles POST /api/meal-plan.
// Formats the session profile into a prompt, calls the configured endpoint,
// extracts the shopping list and stores the result (replacing the old one).
func (h *Handler) postMealPlan(c *gin.Context) {
	// Same guard as the disabled "生成中..." button.
	profile, settings, err := h.session.beginGeneration()
	switch {
	case errors.Is(err, errGenerationInProgress):
		apiError(c, http.StatusConflict, err.Error())
		return
	case errors.Is(err, errMissingAPIKey):
		apiError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, errProfileIncomplete):
		apiError(c, http.StatusConflict, err.Error())
		return
	case err != nil:
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}

	prompt := formatUserDataForPrompt(profile)
	content, err := generateMealPlan(c.Request.Context(), h.httpClient, prompt, settings)
	if err != nil {
		h.session.failGeneration()
		log.Printf("[postMealPlan] generation failed: %v", err)

		var apiErr *mealPlanAPIError
		switch {
		case errors.As(err, &apiErr):
			apiError(c, http.StatusBadGateway, apiErr.Message)
		case errors.Is(err, errNoContent):
			apiError(c, http.StatusBadGateway, err.Error())
		default:
			apiError(c, http.StatusBadGateway, generationFailedMessage)
		}
		return
	}

	result := newMealPlanResult(content)
	h.session.completeGeneration(result)
	log.Printf("[postMealPlan] generation %s: %d chars, %d shopping list items",
		result.ID, len(content), len(result.ShoppingList))

	c.JSON(http.StatusOK, result)
}

// getMealPlan returns the last generated meal plan.
// GET /api/meal-plan. 404 until a generation succeeds.
func (h *Handler) getMealPlan(c *gin.Context) {
	result := h.session.currentMealPlan()
	if result == nil {
		apiError(c, http.StatusNotFound, "尚未生成食谱")
		return
	}
	c.JSON(http.StatusOK, result)
}

// getShoppingListText returns the clipboard rendering of the shopping list.
// GET /api/meal-plan/shopping-list. An empty list still renders the header;
// the client decides whether to show "无法提取购物清单".
func (h *Handler) getShoppingListText(c *gin.Context) {
	result := h.session.currentMealPlan()
	if result == nil {
		apiError(c, http.StatusNotFound, "尚未生成食谱")
		return
	}
	c.String(http.StatusOK, formatShoppingListText(result.ShoppingList))
}
