package domain

import (
	"context"
	"errors"

	"github.com/hikari-bot/backend/internal/repository"
	"github.com/hikari-bot/backend/pkg/discord"
	"github.com/hikari-bot/backend/pkg/docstore"
	"github.com/hikari-bot/backend/pkg/errorx"
	"github.com/hikari-bot/backend/pkg/xcontext"
)

type ForgetDomain interface {
	Handle(ctx context.Context, interaction *discord.Interaction) (discord.InteractionResponse, error)
}

type forgetDomain struct {
	conversationRepo repository.ConversationRepository
}

func NewForgetDomain(conversationRepo repository.ConversationRepository) ForgetDomain {
	return &forgetDomain{conversationRepo: conversationRepo}
}

func (d *forgetDomain) Handle(
	ctx context.Context, interaction *discord.Interaction,
) (discord.InteractionResponse, error) {
	if err := d.conversationRepo.Clear(ctx, interaction.UserID); err != nil {
		if errors.Is(err, docstore.ErrConflictExhausted) {
			return discord.InteractionResponse{}, errorx.New(errorx.ConflictExhausted,
				"Your history is busy right now, please try again")
		}

		xcontext.Logger(ctx).Errorf("Cannot clear the conversation history: %v", err)
		return discord.InteractionResponse{}, errorx.New(errorx.Internal, "Cannot clear your history")
	}

	return discord.Message("已經忘掉所有過去的對話紀錄。"), nil
}
