package mock

import (
	"context"
	"sync"

	"github.com/poiesic/distillery/ai"
)

// MockGateway is a test double for ai.ModelGateway.
// It allows custom behavior injection via function fields or a queue of
// canned responses, and records every call for assertions.
type MockGateway struct {
	// CompleteFunc is called by Complete if set.
	// If nil, responses are dequeued from the Enqueue queue; an empty
	// queue yields an empty JSON object.
	CompleteFunc func(ctx context.Context, messages []ai.Message, temperature float64) (string, error)

	mu        sync.Mutex
	queue     []queuedResponse
	calls     []RecordedCall
	callCount int
}

type queuedResponse struct {
	text string
	err  error
}

// RecordedCall captures the arguments of one Complete invocation.
type RecordedCall struct {
	Messages    []ai.Message
	Temperature float64
}

// NewMockGateway creates a mock gateway with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Enqueue appends a successful canned response.
func (m *MockGateway) Enqueue(text string) *MockGateway {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, queuedResponse{text: text})
	return m
}

// EnqueueError appends a failing canned response.
func (m *MockGateway) EnqueueError(err error) *MockGateway {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, queuedResponse{err: err})
	return m
}

// Complete returns the injected behavior, the next queued response, or
// an empty JSON object.
func (m *MockGateway) Complete(ctx context.Context, messages []ai.Message, temperature float64) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.calls = append(m.calls, RecordedCall{Messages: messages, Temperature: temperature})

	if m.CompleteFunc != nil {
		m.mu.Unlock()
		return m.CompleteFunc(ctx, messages, temperature)
	}

	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return next.text, next.err
	}
	m.mu.Unlock()

	return "{}", nil
}

// CallCount returns the number of times Complete was called.
func (m *MockGateway) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Calls returns the recorded invocations in order.
func (m *MockGateway) Calls() []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedCall(nil), m.calls...)
}

// Reset clears the call records, the queue, and any custom function.
func (m *MockGateway) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.calls = nil
	m.queue = nil
	m.CompleteFunc = nil
}
