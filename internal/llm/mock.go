package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Text  string
	Usage Usage
	Err   error
}

// MockHandler answers a request when the FIFO queue is empty.
type MockHandler func(req Request) MockResponse

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order, then falls back to Handler,
// and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	handler   MockHandler
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewRoutedMockProvider creates a MockProvider that answers every
// request through h.
func NewRoutedMockProvider(h MockHandler) *MockProvider {
	return &MockProvider{handler: h}
}

// Complete returns the next canned response, the handler's answer, or
// ErrUnavailable when neither is available.
func (m *MockProvider) Complete(_ context.Context, req Request) (*Completion, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)

	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
		m.mu.Unlock()
	case m.handler != nil:
		h := m.handler
		m.mu.Unlock()
		resp = h(req)
	default:
		m.mu.Unlock()
		return nil, &ErrUnavailable{}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Completion{
		Text:       resp.Text,
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

// CallCount returns the number of Complete calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
