package testutil

import (
	"context"

	"github.com/hikari-bot/backend/pkg/api/groq"
)

type MockGroqEndpoint struct {
	ChatCompletionFunc func(ctx context.Context, messages []groq.Message) (string, error)
}

func (m *MockGroqEndpoint) ChatCompletion(ctx context.Context, messages []groq.Message) (string, error) {
	if m.ChatCompletionFunc != nil {
		return m.ChatCompletionFunc(ctx, messages)
	}

	panic("not implemented")
}
