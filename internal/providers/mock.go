package providers

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockClient is a Transport for testing. It returns a canned reply and
// records every request it receives.
type MockClient struct {
	// Configurable behavior
	Latency   time.Duration
	Reply     string
	NoChoices bool  // return an envelope with zero choices
	Err       error // returned instead of a completion when set

	mu       sync.Mutex
	requests []*ChatRequest
}

// NewMockClient creates a mock that replies with an empty JSON block.
func NewMockClient() *MockClient {
	return &MockClient{
		Reply: "```json\n{}\n```",
	}
}

// Complete records req and returns the configured reply.
func (c *MockClient) Complete(ctx context.Context, req *ChatRequest) (*ChatCompletion, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	count := len(c.requests)
	c.mu.Unlock()

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return nil, &TransportError{Err: ctx.Err()}
		}
	}
	if c.Err != nil {
		return nil, c.Err
	}

	completion := &ChatCompletion{
		ID:      fmt.Sprintf("mock-%d", count),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
	}
	if !c.NoChoices {
		completion.Choices = []Choice{{
			Index:        0,
			Message:      ReplyMessage{Role: "assistant", Content: c.Reply},
			FinishReason: "stop",
		}}
	}
	return completion, nil
}

// Requests returns the requests received so far.
func (c *MockClient) Requests() []*ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*ChatRequest(nil), c.requests...)
}
