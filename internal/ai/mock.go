package ai

import (
	"context"
	"sync"
	"time"

	"ledgerunify/internal/models"
)

// MockClient is a Client implementation for tests. It can return a fixed
// suggestion, a fixed error, or simulate a slow provider via Delay.
type MockClient struct {
	Suggestion Suggestion
	Err        error
	Delay      time.Duration

	mu    sync.Mutex
	calls int
}

// CallCount returns how many times Classify was invoked.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Classify returns the configured suggestion or error, honoring ctx
// cancellation during the configured delay.
func (m *MockClient) Classify(ctx context.Context, tx models.Transaction, availableCategories []string) (Suggestion, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return Suggestion{}, ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		return Suggestion{}, err
	}
	if m.Err != nil {
		return Suggestion{}, m.Err
	}
	return m.Suggestion, nil
}
