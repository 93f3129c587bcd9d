package discord

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hikari-bot/backend/config"
	"github.com/hikari-bot/backend/pkg/api"
	"github.com/hikari-bot/backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
)

const apiURL = "https://discord.com/api/v10"
const userAgent = "DiscordBot (https://hikari-bot.app, 1.0)"

const editOriginalResource = "edit_original"

// The interaction token is single-use for a given payload, so only transient
// transport failures are retried, and only this many times.
const maxTransportAttempts = 2

type IEndpoint interface {
	EditOriginalResponse(ctx context.Context, token, content string) error
}

type Endpoint struct {
	ApplicationID string

	apiGenerator      api.Generator
	rateLimitResource *xsync.MapOf[string, *xsync.MapOf[string, time.Time]]
}

func New(cfg config.DiscordConfigs) *Endpoint {
	return &Endpoint{
		ApplicationID:     cfg.ApplicationID,
		apiGenerator:      api.NewGenerator(),
		rateLimitResource: xsync.NewMapOf[*xsync.MapOf[string, time.Time]](),
	}
}

// EditOriginalResponse delivers a follow-up payload to the per-interaction
// webhook, replacing the deferred acknowledgment with the real content.
func (e *Endpoint) EditOriginalResponse(ctx context.Context, token, content string) error {
	if err := e.checkLimitingResource(editOriginalResource, token); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < maxTransportAttempts; attempt++ {
		resp, err := e.apiGenerator.New(apiURL, "/webhooks/%s/%s/messages/@original", e.ApplicationID, token).
			Header("User-Agent", userAgent).
			Body(api.JSON{"content": content}).
			PATCH(ctx)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot call the follow-up webhook: %v", err)
			lastErr = err
			continue
		}

		if err := e.checkTooManyRequest(resp, editOriginalResource, token); err != nil {
			return err
		}

		if resp.Code < 200 || resp.Code >= 300 {
			return fmt.Errorf("follow-up webhook responded with status %d", resp.Code)
		}

		return nil
	}

	return lastErr
}

func (e *Endpoint) checkLimitingResource(resource, identifier string) error {
	if limit, ok := e.rateLimitResource.Load(resource); ok {
		if resetAt, ok := limit.Load(identifier); ok {
			if resetAt.After(time.Now()) {
				return wrapRateLimit(resetAt.Unix())
			}

			// If the rate limit is reset, delete the limit for this resource.
			limit.Delete(identifier)
		}
	}

	return nil
}

func (e *Endpoint) checkTooManyRequest(resp *api.Response, resource, identifier string) error {
	if resp.Code == http.StatusTooManyRequests {
		resetAt, err := strconv.Atoi(resp.Header.Get("X-Ratelimit-Reset"))
		if err != nil {
			return err
		}

		resourceLimiter, _ := e.rateLimitResource.LoadOrStore(resource, xsync.NewMapOf[time.Time]())
		resourceLimiter.Store(identifier, time.Unix(int64(resetAt), 0))
		return wrapRateLimit(int64(resetAt))
	}

	return nil
}
