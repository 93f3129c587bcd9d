package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/hikari-bot/backend/internal/entity"
	"github.com/hikari-bot/backend/internal/repository"
	"github.com/hikari-bot/backend/pkg/api/groq"
	"github.com/hikari-bot/backend/pkg/dateutil"
	"github.com/hikari-bot/backend/pkg/discord"
	"github.com/hikari-bot/backend/pkg/docstore"
	"github.com/hikari-bot/backend/pkg/errorx"
	"github.com/hikari-bot/backend/pkg/xcontext"
)

const fallbackReply = "非常抱歉，兄長大人...我現在似乎無法正常回應。"

var greetingKeywords = []string{"hi", "hello", "你好", "哈囉", "早", "午", "晚"}
var timeKeywords = []string{"幾點", "現在時間", "時間", "日期", "幾號"}

type ChatDomain interface {
	Handle(ctx context.Context, interaction *discord.Interaction) (discord.InteractionResponse, error)
	NeedsDeferral(interaction *discord.Interaction) bool
}

type chatDomain struct {
	conversationRepo     repository.ConversationRepository
	groqEndpoint         groq.IEndpoint
	timeContext          *dateutil.TimeContext
	characterDescription string
}

func NewChatDomain(
	conversationRepo repository.ConversationRepository,
	groqEndpoint groq.IEndpoint,
	timeContext *dateutil.TimeContext,
	characterDescription string,
) ChatDomain {
	return &chatDomain{
		conversationRepo:     conversationRepo,
		groqEndpoint:         groqEndpoint,
		timeContext:          timeContext,
		characterDescription: characterDescription,
	}
}

// NeedsDeferral is always true: a chat completion takes longer than the
// inline window, so the acknowledgment goes out immediately.
func (d *chatDomain) NeedsDeferral(*discord.Interaction) bool {
	return true
}

func (d *chatDomain) Handle(
	ctx context.Context, interaction *discord.Interaction,
) (discord.InteractionResponse, error) {
	message := strings.TrimSpace(interaction.StringOption("message"))
	if message == "" {
		return discord.InteractionResponse{}, errorx.New(errorx.BadRequest, "Message can not be empty")
	}

	conversation, err := d.conversationRepo.GetByUserID(ctx, interaction.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the conversation history: %v", err)
		return discord.InteractionResponse{}, errorx.New(errorx.Internal, "Cannot load your conversation history")
	}

	now := d.timeContext.Now()
	enhanced := d.enhanceWithTimeContext(message)

	messages := []groq.Message{{
		Role:    "system",
		Content: d.characterDescription + "\n" + d.timeContext.Detailed(now),
	}}
	for _, entry := range conversation.Entries {
		messages = append(messages,
			groq.Message{Role: "user", Content: entry.UserMessage},
			groq.Message{Role: "assistant", Content: entry.BotReply},
		)
	}
	messages = append(messages, groq.Message{Role: "user", Content: enhanced})

	reply, err := d.groqEndpoint.ChatCompletion(ctx, messages)
	if err != nil {
		xcontext.Logger(ctx).Errorf("All models failed: %v", err)
		reply = fallbackReply
	}

	err = d.conversationRepo.Append(ctx, interaction.UserID, entity.ConversationEntry{
		UserMessage: message,
		BotReply:    reply,
		Timestamp:   d.timeContext.Format(now),
	})
	if err != nil {
		// The reply is already computed; losing one history entry is
		// preferable to telling the user nothing, so the error is
		// swallowed after logging.
		if errors.Is(err, docstore.ErrConflictExhausted) {
			xcontext.Logger(ctx).Warnf("Conversation of %s is contended, dropped one entry", interaction.UserID)
		} else {
			xcontext.Logger(ctx).Errorf("Cannot append the conversation: %v", err)
		}
	}

	return discord.Message(reply), nil
}

func (d *chatDomain) enhanceWithTimeContext(message string) string {
	lowered := strings.ToLower(message)
	for _, keyword := range greetingKeywords {
		if strings.Contains(lowered, keyword) {
			return d.timeContext.Greeting(d.timeContext.Now()) + " " + message
		}
	}

	for _, keyword := range timeKeywords {
		if strings.Contains(message, keyword) {
			return d.timeContext.Detailed(d.timeContext.Now()) + "\n" + message
		}
	}

	return message
}
