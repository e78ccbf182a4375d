package llm

import (
	"context"
	"fmt"

	"github.com/boom724/boomguru/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with concurrency limiting, retry and
// logging middleware.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → limit → timeout → retry → logging →
	// base. The limiter sits outside the timeout so time spent queued for
	// a slot doesn't count against the request deadline.
	logged := WithLogging(base, eventRepo)
	retried := WithRetry(logged, cfg.Retry)
	timed := WithTimeout(retried, cfg.Timeout)
	limited := WithConcurrencyLimit(timed, cfg.MaxInFlight)

	return limited, nil
}

// NewProviderFromEnv builds a provider from BOOMGURU_* env vars, falling
// back to probing the standard provider API key variables.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo) (Provider, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, err
		}
		cfg = discovered
	}
	return NewProvider(ctx, cfg, eventRepo)
}
