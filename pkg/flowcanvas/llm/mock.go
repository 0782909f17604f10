package llm

import (
	"context"
	"sync"
)

// MockClient is a scriptable Client for tests. Responses are
// returned in the order queued; once the queue is empty the
// configured default applies.
type MockClient struct {
	mu       sync.Mutex
	queue    []mockResult
	fallback mockResult

	// Requests records every request received, in order.
	Requests []Request
}

type mockResult struct {
	resp *Response
	err  error
}

// NewMockClient creates a mock that echoes requests by default.
func NewMockClient() *MockClient {
	return &MockClient{
		fallback: mockResult{resp: &Response{Output: "mock output"}},
	}
}

// QueueResponse enqueues a successful response.
func (m *MockClient) QueueResponse(output string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockResult{resp: &Response{Output: output}})
	return m
}

// QueueError enqueues a failure.
func (m *MockClient) QueueError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockResult{err: err})
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	result := m.fallback
	if len(m.queue) > 0 {
		result = m.queue[0]
		m.queue = m.queue[1:]
	}
	if result.err != nil {
		return nil, result.err
	}

	resp := *result.resp
	if resp.Model == "" {
		resp.Model = req.Model
	}
	return &resp, nil
}
