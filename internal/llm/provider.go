package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction over a multimodal LLM.
// Consumers call Generate with a Request and receive raw text that the
// contract layer parses and validates per stage.
type Provider interface {
	// Generate sends a prompt (and optionally an image) to the LLM and
	// returns its response. The request's Schema field, when set, instructs
	// the provider to return JSON conforming to that schema; the response
	// Content is then the validated JSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the model's role and constraints.
	System string

	// Messages is the conversation. A diagnosis stage typically sends a
	// single user message carrying the image and/or text.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When set, the provider uses its native structured output mechanism.
	// When nil, the response Content is raw text.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
// ImageURL, when set, is attached as an image part alongside Content.
// It accepts a base64 data URL (preferred, stateless) or an https URL
// for providers that fetch images themselves.
type Message struct {
	Role     Role
	Content  string
	ImageURL string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema. Kebab-case, e.g. "category-classification".
	Name string

	// Description is sent to the LLM to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output. When a Schema was provided in the
	// request, this is the validated JSON object.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
