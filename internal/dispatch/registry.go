package dispatch

import (
	"context"
	"fmt"

	"github.com/hikari-bot/backend/pkg/discord"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Handler is the capability a command name resolves to.
type Handler interface {
	Handle(ctx context.Context, interaction *discord.Interaction) (discord.InteractionResponse, error)
}

// Deferrer is implemented by handlers that know up front they cannot finish
// inside the inline window, so the acknowledgment goes out immediately
// instead of waiting for the budget timer.
type Deferrer interface {
	NeedsDeferral(interaction *discord.Interaction) bool
}

// Registry maps command names to handlers. All registrations happen before
// traffic starts; afterwards the map is read-only, which makes concurrent
// resolves safe without synchronization.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register panics on a duplicate name. Two handlers for one command is a
// wiring bug that must abort startup, not a runtime condition.
func (r *Registry) Register(name string, handler Handler) {
	if _, ok := r.handlers[name]; ok {
		panic(fmt.Sprintf("command %s is registered twice", name))
	}

	r.handlers[name] = handler
}

func (r *Registry) Resolve(name string) (Handler, bool) {
	handler, ok := r.handlers[name]
	return handler, ok
}

func (r *Registry) Names() []string {
	names := maps.Keys(r.handlers)
	slices.Sort(names)
	return names
}
