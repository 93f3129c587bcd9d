package discord

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/hikari-bot/backend/config"
	"github.com/hikari-bot/backend/internal/testutil"
	"github.com/hikari-bot/backend/pkg/api"
	"github.com/stretchr/testify/require"
)

func newTestEndpoint(client api.MockAPIClient) *Endpoint {
	endpoint := New(config.DiscordConfigs{ApplicationID: "app-1"})
	endpoint.apiGenerator = &api.MockAPIGenerator{MockClient: client}
	return endpoint
}

func Test_Endpoint_EditOriginalResponse(t *testing.T) {
	ctx := testutil.MockContext(config.Configs{})

	var sentContent string
	client := api.MockAPIClient{
		PATCHFunc: func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
			return &api.Response{Code: http.StatusOK}, nil
		},
	}
	client.BodyFunc = func(body api.Body) api.Client {
		payload, ok := body.(api.JSON)
		require.True(t, ok)
		sentContent, _ = payload["content"].(string)
		return &client
	}
	endpoint := newTestEndpoint(client)

	require.NoError(t, endpoint.EditOriginalResponse(ctx, "token-1", "the answer"))
	require.Equal(t, "the answer", sentContent)
}

func Test_Endpoint_TooManyRequests(t *testing.T) {
	ctx := testutil.MockContext(config.Configs{})

	resetAt := time.Now().Add(time.Hour).Unix()
	calls := 0
	endpoint := newTestEndpoint(api.MockAPIClient{
		PATCHFunc: func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
			calls++
			return &api.Response{
				Code: http.StatusTooManyRequests,
				Header: http.Header{
					"X-Ratelimit-Reset": []string{strconv.FormatInt(resetAt, 10)},
				},
			}, nil
		},
	})

	err := endpoint.EditOriginalResponse(ctx, "token-1", "the answer")
	require.Error(t, err)

	gotResetAt, ok := IsRateLimit(err)
	require.True(t, ok)
	require.Equal(t, resetAt, gotResetAt.Unix())
	require.Equal(t, 1, calls)

	// Subsequent calls for the same token are refused locally until the
	// limit resets, without touching the network.
	err = endpoint.EditOriginalResponse(ctx, "token-1", "the answer")
	require.Error(t, err)
	_, ok = IsRateLimit(err)
	require.True(t, ok)
	require.Equal(t, 1, calls)

	// A different token is not limited.
	err = endpoint.EditOriginalResponse(ctx, "token-2", "the answer")
	require.Error(t, err)
	require.Equal(t, 2, calls)
}

func Test_Endpoint_RetriesTransportFailures(t *testing.T) {
	ctx := testutil.MockContext(config.Configs{})

	calls := 0
	endpoint := newTestEndpoint(api.MockAPIClient{
		PATCHFunc: func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("connection reset")
			}

			return &api.Response{Code: http.StatusOK}, nil
		},
	})

	require.NoError(t, endpoint.EditOriginalResponse(ctx, "token-1", "the answer"))
	require.Equal(t, 2, calls)
}

func Test_Endpoint_DoesNotRetryRejections(t *testing.T) {
	ctx := testutil.MockContext(config.Configs{})

	calls := 0
	endpoint := newTestEndpoint(api.MockAPIClient{
		PATCHFunc: func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
			calls++
			return &api.Response{Code: http.StatusNotFound}, nil
		},
	})

	// A definitive rejection means the token is gone; retrying cannot help.
	err := endpoint.EditOriginalResponse(ctx, "token-1", "the answer")
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func Test_IsRateLimit(t *testing.T) {
	resetAt, ok := IsRateLimit(wrapRateLimit(1700000000))
	require.True(t, ok)
	require.EqualValues(t, 1700000000, resetAt.Unix())

	_, ok = IsRateLimit(errors.New("something else"))
	require.False(t, ok)

	_, ok = IsRateLimit(nil)
	require.False(t, ok)
}
