package llm

import (
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// OpenRouter app attribution, shown on openrouter.ai rankings.
	openRouterReferer = "https://github.com/boom724/boomguru"
	openRouterTitle   = "boomguru"
)

// OpenRouterProvider wraps OpenAIProvider with OpenRouter-specific
// defaults. OpenRouter exposes an OpenAI-compatible API, so the underlying
// SDK is reused; requests additionally carry the HTTP-Referer and X-Title
// attribution headers OpenRouter documents.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = baseURL
	config.HTTPClient = &http.Client{
		Transport: &attributionTransport{base: http.DefaultTransport},
	}

	inner := &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  resolveModel(cfg.Model, nil),
	}

	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// attributionTransport injects the OpenRouter attribution headers into
// every outgoing request.
type attributionTransport struct {
	base http.RoundTripper
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("HTTP-Referer", openRouterReferer)
	clone.Header.Set("X-Title", openRouterTitle)
	return t.base.RoundTrip(clone)
}
