package engine

import (
	"context"
	"sync"
)

// MockEngine is a lightweight in-memory Engine useful for tests & examples.
// Responses are scripted per latest-message content; unscripted inputs fall
// back to a single echo text event. The last request is recorded for
// assertions.
type MockEngine struct {
	mu      sync.Mutex
	scripts map[string][]RawEvent
	err     error
	last    *Request
}

// NewMockEngine constructs an empty scripted engine.
func NewMockEngine() *MockEngine {
	return &MockEngine{scripts: make(map[string][]RawEvent)}
}

// Script registers the event sequence to emit when the latest inbound
// message content equals input.
func (m *MockEngine) Script(input string, events ...RawEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[input] = events
}

// FailWith makes every subsequent stream end with err after its scripted
// events, simulating a mid-stream engine failure.
func (m *MockEngine) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// LastRequest returns the most recent request passed to Stream, or nil.
func (m *MockEngine) LastRequest() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Stream implements Engine; emits scripted events in order then terminates.
func (m *MockEngine) Stream(ctx context.Context, req Request) (<-chan RawEvent, <-chan error) {
	events := make(chan RawEvent, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	reqCopy := req
	m.last = &reqCopy
	var input string
	if len(req.Messages) > 0 {
		input = req.Messages[len(req.Messages)-1].Content
	}
	script, ok := m.scripts[input]
	failure := m.err
	m.mu.Unlock()

	if !ok {
		script = []RawEvent{
			NewInitEvent("mock-session"),
			NewAssistantEvent("", TextBlock("Mock response to: "+input)),
		}
	}

	go func() {
		defer close(events)
		defer close(errCh)
		for _, ev := range script {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case events <- ev:
			}
		}
		if failure != nil {
			errCh <- failure
		}
	}()

	return events, errCh
}
