package dispatch

import (
	"context"
	"testing"

	"github.com/hikari-bot/backend/pkg/discord"
	"github.com/stretchr/testify/require"
)

type nopHandler struct{}

func (nopHandler) Handle(ctx context.Context, interaction *discord.Interaction) (discord.InteractionResponse, error) {
	return discord.Message("ok"), nil
}

func Test_Registry_Resolve(t *testing.T) {
	registry := NewRegistry()
	registry.Register("chat", nopHandler{})

	handler, ok := registry.Resolve("chat")
	require.True(t, ok)
	require.NotNil(t, handler)

	_, ok = registry.Resolve("missing")
	require.False(t, ok)
}

func Test_Registry_DuplicatePanics(t *testing.T) {
	registry := NewRegistry()
	registry.Register("chat", nopHandler{})

	require.PanicsWithValue(t, "command chat is registered twice", func() {
		registry.Register("chat", nopHandler{})
	})
}

func Test_Registry_NamesSorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register("time", nopHandler{})
	registry.Register("chat", nopHandler{})
	registry.Register("forget", nopHandler{})

	require.Equal(t, []string{"chat", "forget", "time"}, registry.Names())
}
