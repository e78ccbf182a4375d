package llm

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenRouterAttributionHeaders(t *testing.T) {
	var gotReferer, gotTitle, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, chatResponse(`{"is_real_photo": true}`, "stop"))
	}))
	defer srv.Close()

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "or-test-key",
		Model:   "openai/gpt-4o",
		BaseURL: srv.URL + "/api/v1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.ModelID() != "openai/gpt-4o" {
		t.Errorf("model = %q", p.ModelID())
	}

	resp, err := p.Generate(t.Context(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != `{"is_real_photo": true}` {
		t.Errorf("content = %s", resp.Content)
	}

	if gotReferer != openRouterReferer {
		t.Errorf("HTTP-Referer = %q", gotReferer)
	}
	if gotTitle != openRouterTitle {
		t.Errorf("X-Title = %q", gotTitle)
	}
	if gotAuth != "Bearer or-test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestOpenRouterRequiresKey(t *testing.T) {
	if _, err := NewOpenRouterProvider(OpenRouterConfig{}); err == nil {
		t.Error("expected error for missing API key")
	}
}
