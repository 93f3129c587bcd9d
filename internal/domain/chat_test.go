package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/hikari-bot/backend/config"
	"github.com/hikari-bot/backend/internal/repository"
	"github.com/hikari-bot/backend/internal/testutil"
	"github.com/hikari-bot/backend/pkg/api/groq"
	"github.com/hikari-bot/backend/pkg/dateutil"
	"github.com/hikari-bot/backend/pkg/discord"
	"github.com/hikari-bot/backend/pkg/errorx"
	"github.com/stretchr/testify/require"
)

const testCharacter = "你是一位溫柔的妹妹，稱呼使用者為兄長大人。"

func chatContext(t *testing.T) context.Context {
	return testutil.MockContext(config.Configs{
		Firebase: config.FirebaseConfigs{MaxWriteAttempts: 4},
		Chat:     config.ChatConfigs{HistoryLimit: 50, Timezone: "Asia/Taipei"},
	})
}

func chatFixture(t *testing.T, groqEndpoint groq.IEndpoint) (ChatDomain, repository.ConversationRepository) {
	timeContext, err := dateutil.NewTimeContext("Asia/Taipei")
	require.NoError(t, err)

	conversationRepo := repository.NewConversationRepository(testutil.NewMemoryDocStore(), nil)
	return NewChatDomain(conversationRepo, groqEndpoint, timeContext, testCharacter), conversationRepo
}

func chatInteraction(message string) *discord.Interaction {
	return &discord.Interaction{
		ID:      "interaction-1",
		Type:    discord.InteractionApplicationCommand,
		Token:   "token-1",
		UserID:  "user-1",
		Command: "chat",
		Options: []discord.CommandOption{
			{Name: "message", Type: discord.OptionString, Value: message},
		},
	}
}

func Test_ChatDomain_ReplyAndPersist(t *testing.T) {
	ctx := chatContext(t)
	groqEndpoint := &testutil.MockGroqEndpoint{
		ChatCompletionFunc: func(ctx context.Context, messages []groq.Message) (string, error) {
			require.NotEmpty(t, messages)
			require.Equal(t, "system", messages[0].Role)
			require.Contains(t, messages[0].Content, testCharacter)
			require.Equal(t, "user", messages[len(messages)-1].Role)
			return "兄長大人，我在這裡。", nil
		},
	}

	chat, conversationRepo := chatFixture(t, groqEndpoint)

	resp, err := chat.Handle(ctx, chatInteraction("are you there?"))
	require.NoError(t, err)
	require.Equal(t, discord.ResponseChannelMessage, resp.Type)
	require.Equal(t, "兄長大人，我在這裡。", resp.Data.Content)

	conversation, err := conversationRepo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, conversation.Entries, 1)
	require.Equal(t, "are you there?", conversation.Entries[0].UserMessage)
	require.Equal(t, "兄長大人，我在這裡。", conversation.Entries[0].BotReply)
}

func Test_ChatDomain_HistoryFlowsIntoPrompt(t *testing.T) {
	ctx := chatContext(t)

	var captured []groq.Message
	groqEndpoint := &testutil.MockGroqEndpoint{
		ChatCompletionFunc: func(ctx context.Context, messages []groq.Message) (string, error) {
			captured = messages
			return "reply", nil
		},
	}

	chat, conversationRepo := chatFixture(t, groqEndpoint)

	_, err := chat.Handle(ctx, chatInteraction("first question"))
	require.NoError(t, err)
	_, err = chat.Handle(ctx, chatInteraction("second question"))
	require.NoError(t, err)

	// system + first user/assistant pair + second user message.
	require.Len(t, captured, 4)
	require.Equal(t, "first question", captured[1].Content)
	require.Equal(t, "reply", captured[2].Content)
	require.Equal(t, "assistant", captured[2].Role)
	require.Equal(t, "second question", captured[3].Content)

	conversation, err := conversationRepo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, conversation.Entries, 2)
}

func Test_ChatDomain_EmptyMessage(t *testing.T) {
	ctx := chatContext(t)
	chat, _ := chatFixture(t, &testutil.MockGroqEndpoint{})

	_, err := chat.Handle(ctx, chatInteraction("   "))
	require.Error(t, err)

	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)
}

func Test_ChatDomain_ModelFailureFallsBack(t *testing.T) {
	ctx := chatContext(t)
	groqEndpoint := &testutil.MockGroqEndpoint{
		ChatCompletionFunc: func(ctx context.Context, messages []groq.Message) (string, error) {
			return "", errors.New("every model is down")
		},
	}

	chat, conversationRepo := chatFixture(t, groqEndpoint)

	resp, err := chat.Handle(ctx, chatInteraction("hello?"))
	require.NoError(t, err)
	require.Equal(t, fallbackReply, resp.Data.Content)

	// The fallback still lands in the history.
	conversation, err := conversationRepo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, conversation.Entries, 1)
	require.Equal(t, fallbackReply, conversation.Entries[0].BotReply)
}

func Test_ChatDomain_NeedsDeferral(t *testing.T) {
	chat, _ := chatFixture(t, &testutil.MockGroqEndpoint{})
	require.True(t, chat.NeedsDeferral(chatInteraction("hello")))
}

func Test_ChatDomain_TimeQuestionGetsContext(t *testing.T) {
	ctx := chatContext(t)

	var captured []groq.Message
	groqEndpoint := &testutil.MockGroqEndpoint{
		ChatCompletionFunc: func(ctx context.Context, messages []groq.Message) (string, error) {
			captured = messages
			return "reply", nil
		},
	}

	chat, _ := chatFixture(t, groqEndpoint)

	_, err := chat.Handle(ctx, chatInteraction("現在幾點了？"))
	require.NoError(t, err)

	last := captured[len(captured)-1]
	require.Contains(t, last.Content, "現在是")
	require.Contains(t, last.Content, "現在幾點了？")
}
