package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// chatResponse builds a minimal OpenAI chat completion response body.
func chatResponse(content, finishReason string) string {
	body, _ := json.Marshal(map[string]any{
		"id":    "chatcmpl-test",
		"model": "gpt-4o",
		"choices": []map[string]any{
			{
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finishReason,
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     120,
			"completion_tokens": 15,
			"total_tokens":      135,
		},
	})
	return string(body)
}

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider(OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-4o",
		BaseURL: srv.URL + "/v1",
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func realnessSchema() *Schema {
	return &Schema{
		Name: "realness-check-test",
		Definition: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{"is_real_photo": map[string]any{"type": "boolean"}},
			"required":             []string{"is_real_photo"},
			"additionalProperties": false,
		},
	}
}

func TestOpenAIGenerateVision(t *testing.T) {
	var gotBody map[string]any
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		fmt.Fprint(w, chatResponse(`{"is_real_photo": true}`, "stop"))
	})

	resp, err := p.Generate(t.Context(), Request{
		System: "You inspect photographs.",
		Messages: []Message{{
			Role:     RoleUser,
			ImageURL: "data:image/jpeg;base64,Zm9v",
		}},
		Schema:    realnessSchema(),
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != `{"is_real_photo": true}` {
		t.Errorf("content = %s", resp.Content)
	}
	if resp.Usage.TotalTokens != 135 {
		t.Errorf("usage = %+v", resp.Usage)
	}

	// The wire request carries the image as a multi-part content block
	// and the schema as a structured response format.
	messages := gotBody["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system + user message, got %d", len(messages))
	}
	user := messages[1].(map[string]any)
	parts := user["content"].([]any)
	part := parts[0].(map[string]any)
	if part["type"] != "image_url" {
		t.Errorf("first content part type = %v", part["type"])
	}
	if gotBody["response_format"] == nil {
		t.Error("request missing response_format")
	}
}

func TestOpenAIGenerateSchemaMismatch(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatResponse(`{"wrong_key": 1}`, "stop"))
	})

	_, err := p.Generate(t.Context(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
		Schema:   realnessSchema(),
	})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("err = %v, want *ErrInvalidResponse", err)
	}
}

func TestOpenAIGenerateTruncated(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatResponse(`{"is_real_`, "length"))
	})

	_, err := p.Generate(t.Context(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("err = %v, want *ErrMaxTokensExceeded", err)
	}
}

func TestOpenAIErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusUnauthorized, func(err error) bool { var e *ErrAuth; return errors.As(err, &e) }},
		{http.StatusForbidden, func(err error) bool { var e *ErrAuth; return errors.As(err, &e) }},
		{http.StatusTooManyRequests, func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) }},
		{http.StatusInternalServerError, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprintf(w, `{"error": {"message": "nope", "type": "test"}}`)
			})

			_, err := p.Generate(t.Context(), Request{
				Messages: []Message{{Role: RoleUser, Content: "hi"}},
			})
			if err == nil || !tt.check(err) {
				t.Errorf("status %d mapped to %v", tt.status, err)
			}
		})
	}
}
