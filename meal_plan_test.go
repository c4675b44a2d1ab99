package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// chatCompletionBody wraps a content string in the chat completions
// response shape (choices[0].message.content).
func chatCompletionBody(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"content": content,
				},
			},
		},
	}
}

// recordedRequest is what the mock chat server saw.
type recordedRequest struct {
	mu     sync.Mutex
	method string
	header http.Header
	body   chatCompletionRequest
}

func (r *recordedRequest) get() (string, http.Header, chatCompletionRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.method, r.header, r.body
}

// newMockChatServer returns a server that records the last request and
// answers with status/body. A string body is written verbatim.
func newMockChatServer(t *testing.T, status int, body interface{}) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.method = r.Method
		rec.header = r.Header.Clone()
		json.Unmarshal(raw, &rec.body)
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if s, ok := body.(string); ok {
			io.WriteString(w, s)
			return
		}
		json.NewEncoder(w).Encode(body)
	}))
	return srv, rec
}

func testSettings(url string) apiSettings {
	return apiSettings{APIKey: "test-key", APIURL: url, Model: "test-model"}
}

func TestGenerateMealPlan_Success(t *testing.T) {
	srv, rec := newMockChatServer(t, http.StatusOK, chatCompletionBody("## 早餐\n- 燕麦粥"))
	defer srv.Close()

	content, err := generateMealPlan(context.Background(), srv.Client(), "user prompt", testSettings(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "## 早餐\n- 燕麦粥" {
		t.Errorf("content = %q", content)
	}

	method, header, gotBody := rec.get()
	if method != http.MethodPost {
		t.Errorf("method = %s, want POST", method)
	}
	if got := header.Get("Authorization"); got != "Bearer test-key" {
		t.Errorf("Authorization = %q, want 'Bearer test-key'", got)
	}
	if got := header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	if gotBody.Model != "test-model" {
		t.Errorf("model = %q, want test-model", gotBody.Model)
	}
	if gotBody.Stream || gotBody.EnableThinking {
		t.Errorf("expected stream=false and enable_thinking=false, got %+v", gotBody)
	}
	if gotBody.MaxTokens != 1024 {
		t.Errorf("max_tokens = %d, want 1024", gotBody.MaxTokens)
	}
	if len(gotBody.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(gotBody.Messages))
	}
	if gotBody.Messages[0].Role != "system" || !strings.Contains(gotBody.Messages[0].Content, "## 购物清单") {
		t.Errorf("first message should be the system prompt, got role %q", gotBody.Messages[0].Role)
	}
	if gotBody.Messages[1].Role != "user" || gotBody.Messages[1].Content != "user prompt" {
		t.Errorf("second message = %+v, want user prompt", gotBody.Messages[1])
	}
}

// TestGenerateMealPlan_APIErrorMessage verifies the server's error.message is surfaced.
func TestGenerateMealPlan_APIErrorMessage(t *testing.T) {
	body := map[string]interface{}{"error": map[string]string{"message": "quota exceeded"}}
	srv, _ := newMockChatServer(t, http.StatusTooManyRequests, body)
	defer srv.Close()

	_, err := generateMealPlan(context.Background(), srv.Client(), "p", testSettings(srv.URL))

	var apiErr *mealPlanAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *mealPlanAPIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", apiErr.StatusCode)
	}
	if apiErr.Message != "quota exceeded" {
		t.Errorf("message = %q, want 'quota exceeded'", apiErr.Message)
	}
}

// TestGenerateMealPlan_APIErrorFallback verifies the generic message when
// the error body has no usable error.message.
func TestGenerateMealPlan_APIErrorFallback(t *testing.T) {
	bodies := []interface{}{
		map[string]string{"error": "server error"},
		map[string]interface{}{},
		"<html>bad gateway</html>",
	}
	for _, body := range bodies {
		srv, _ := newMockChatServer(t, http.StatusInternalServerError, body)

		_, err := generateMealPlan(context.Background(), srv.Client(), "p", testSettings(srv.URL))
		srv.Close()

		var apiErr *mealPlanAPIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *mealPlanAPIError for body %v, got %v", body, err)
		}
		if apiErr.Message != defaultAPIErrorMessage {
			t.Errorf("message = %q, want %q", apiErr.Message, defaultAPIErrorMessage)
		}
	}
}

// TestGenerateMealPlan_NoContent verifies a 2xx without content is errNoContent.
func TestGenerateMealPlan_NoContent(t *testing.T) {
	bodies := []interface{}{
		map[string]interface{}{"choices": []interface{}{}},
		chatCompletionBody(""),
	}
	for _, body := range bodies {
		srv, _ := newMockChatServer(t, http.StatusOK, body)

		_, err := generateMealPlan(context.Background(), srv.Client(), "p", testSettings(srv.URL))
		srv.Close()

		if !errors.Is(err, errNoContent) {
			t.Errorf("expected errNoContent for body %v, got %v", body, err)
		}
	}
}

func TestGenerateMealPlan_MalformedJSON(t *testing.T) {
	srv, _ := newMockChatServer(t, http.StatusOK, "not valid json at all")
	defer srv.Close()

	_, err := generateMealPlan(context.Background(), srv.Client(), "p", testSettings(srv.URL))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if errors.Is(err, errNoContent) {
		t.Error("malformed JSON should not be reported as no content")
	}
}

// TestGenerateMealPlan_TransportError verifies an unreachable endpoint fails
// with a plain wrapped error, not an API error.
func TestGenerateMealPlan_TransportError(t *testing.T) {
	srv, _ := newMockChatServer(t, http.StatusOK, chatCompletionBody("x"))
	url := srv.URL
	srv.Close()

	_, err := generateMealPlan(context.Background(), http.DefaultClient, "p", testSettings(url))
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *mealPlanAPIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure reported as API error: %v", err)
	}
}
