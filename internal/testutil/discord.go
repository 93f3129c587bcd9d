package testutil

import (
	"context"
	"sync"
)

type FollowUp struct {
	Token   string
	Content string
}

// MockDiscordEndpoint captures follow-up deliveries instead of calling the
// platform.
type MockDiscordEndpoint struct {
	EditOriginalFunc func(ctx context.Context, token, content string) error

	mu        sync.Mutex
	followUps []FollowUp
}

func (m *MockDiscordEndpoint) EditOriginalResponse(ctx context.Context, token, content string) error {
	if m.EditOriginalFunc != nil {
		if err := m.EditOriginalFunc(ctx, token, content); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.followUps = append(m.followUps, FollowUp{Token: token, Content: content})
	return nil
}

func (m *MockDiscordEndpoint) FollowUps() []FollowUp {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]FollowUp, len(m.followUps))
	copy(result, m.followUps)
	return result
}
