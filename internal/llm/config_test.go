package llm

import (
	"testing"
	"time"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestDiscoverConfig(t *testing.T) {
	clearKeyEnv(t)

	if _, ok := DiscoverConfig(); ok {
		t.Error("DiscoverConfig found a provider with no keys set")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "anthropic" {
		t.Errorf("cfg = %+v, ok = %v", cfg, ok)
	}

	// OpenAI takes priority when both are set.
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, ok = DiscoverConfig()
	if !ok || cfg.Provider != "openai" {
		t.Errorf("cfg = %+v, ok = %v", cfg, ok)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("BOOMGURU_LLM_PROVIDER", "gemini")
	t.Setenv("BOOMGURU_GEMINI_API_KEY", "g-test")
	t.Setenv("BOOMGURU_GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("BOOMGURU_LLM_MAX_INFLIGHT", "9")
	t.Setenv("BOOMGURU_LLM_TIMEOUT", "90s")

	cfg := ConfigFromEnv()
	if cfg.Provider != "gemini" {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.Gemini.APIKey != "g-test" || cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("gemini = %+v", cfg.Gemini)
	}
	if cfg.MaxInFlight != 9 {
		t.Errorf("max in-flight = %d", cfg.MaxInFlight)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "openai"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing openai key")
	}

	cfg.Provider = "mock"
	if err := cfg.Validate(); err != nil {
		t.Errorf("mock provider should not need a key: %v", err)
	}

	cfg.Provider = "watson"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}
}
