package repository

import (
	"context"
	"errors"

	"github.com/hikari-bot/backend/internal/entity"
	"github.com/hikari-bot/backend/pkg/docstore"
	"github.com/hikari-bot/backend/pkg/xcontext"
	"github.com/hikari-bot/backend/pkg/xredis"
	"github.com/mitchellh/mapstructure"
)

const conversationKeyPrefix = "conversations/"
const conversationCachePrefix = "cache:conversation:"

type ConversationRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entity.Conversation, error)
	Append(ctx context.Context, userID string, entry entity.ConversationEntry) error
	Clear(ctx context.Context, userID string) error
}

type conversationRepository struct {
	store docstore.Client
	cache xredis.Client
}

// NewConversationRepository keeps per-user conversation history in the
// remote document store. A nil cache disables the redis read-through layer.
func NewConversationRepository(store docstore.Client, cache xredis.Client) ConversationRepository {
	return &conversationRepository{store: store, cache: cache}
}

func (r *conversationRepository) GetByUserID(ctx context.Context, userID string) (*entity.Conversation, error) {
	if r.cache != nil {
		var cached entity.Conversation
		if err := r.cache.GetObj(ctx, conversationCachePrefix+userID, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, xredis.ErrNil) {
			xcontext.Logger(ctx).Warnf("Cannot read the conversation cache: %v", err)
		}
	}

	doc, err := r.store.Get(ctx, conversationKeyPrefix+userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			// A user without history starts from an empty conversation.
			return &entity.Conversation{}, nil
		}

		return nil, err
	}

	var conversation entity.Conversation
	if err := mapstructure.Decode(doc.Value, &conversation); err != nil {
		return nil, err
	}

	if r.cache != nil {
		ttl := xcontext.Configs(ctx).Chat.CacheTTL
		if err := r.cache.SetObj(ctx, conversationCachePrefix+userID, conversation, ttl); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot write the conversation cache: %v", err)
		}
	}

	return &conversation, nil
}

func (r *conversationRepository) Append(ctx context.Context, userID string, entry entity.ConversationEntry) error {
	cfg := xcontext.Configs(ctx)

	err := docstore.Mutate(ctx, r.store, conversationKeyPrefix+userID, cfg.Firebase.MaxWriteAttempts,
		func(value map[string]any) (map[string]any, error) {
			var conversation entity.Conversation
			if value != nil {
				if err := mapstructure.Decode(value, &conversation); err != nil {
					return nil, err
				}
			}

			conversation.Entries = append(conversation.Entries, entry)
			if limit := cfg.Chat.HistoryLimit; limit > 0 && len(conversation.Entries) > limit {
				conversation.Entries = conversation.Entries[len(conversation.Entries)-limit:]
			}

			var newValue map[string]any
			if err := mapstructure.Decode(conversation, &newValue); err != nil {
				return nil, err
			}

			return newValue, nil
		})
	if err != nil {
		return err
	}

	r.invalidate(ctx, userID)
	return nil
}

func (r *conversationRepository) Clear(ctx context.Context, userID string) error {
	cfg := xcontext.Configs(ctx)

	err := docstore.Mutate(ctx, r.store, conversationKeyPrefix+userID, cfg.Firebase.MaxWriteAttempts,
		func(value map[string]any) (map[string]any, error) {
			return nil, nil
		})
	if err != nil {
		return err
	}

	r.invalidate(ctx, userID)
	return nil
}

func (r *conversationRepository) invalidate(ctx context.Context, userID string) {
	if r.cache == nil {
		return
	}

	if err := r.cache.Del(ctx, conversationCachePrefix+userID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate the conversation cache: %v", err)
	}
}
