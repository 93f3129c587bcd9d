package domain

import (
	"context"

	"github.com/hikari-bot/backend/pkg/dateutil"
	"github.com/hikari-bot/backend/pkg/discord"
)

type ClockDomain interface {
	Handle(ctx context.Context, interaction *discord.Interaction) (discord.InteractionResponse, error)
}

type clockDomain struct {
	timeContext *dateutil.TimeContext
}

func NewClockDomain(timeContext *dateutil.TimeContext) ClockDomain {
	return &clockDomain{timeContext: timeContext}
}

// Handle answers with the current wall-clock context. It touches no remote
// state and always finishes well inside the inline window.
func (d *clockDomain) Handle(
	ctx context.Context, interaction *discord.Interaction,
) (discord.InteractionResponse, error) {
	now := d.timeContext.Now()
	return discord.Message(d.timeContext.Greeting(now) + "\n" + d.timeContext.Detailed(now)), nil
}
