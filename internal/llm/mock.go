package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records every request
// together with the stage label it was issued under, so tests can assert
// which stage attached an image or what prompt a stage rendered.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []Request
	stages    []string
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	m.stages = append(m.stages, StageFrom(ctx))

	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Call returns the i-th recorded request.
func (m *MockProvider) Call(i int) Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[i]
}

// StageAt returns the stage label the i-th call was issued under.
func (m *MockProvider) StageAt(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stages[i]
}

// ImageAttached reports whether the i-th call carried an image in any of
// its messages.
func (m *MockProvider) ImageAttached(i int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.calls[i].Messages {
		if msg.ImageURL != "" {
			return true
		}
	}
	return false
}
