package groq

import (
	"context"
	"net/http"
	"testing"

	"github.com/hikari-bot/backend/config"
	"github.com/hikari-bot/backend/pkg/api"
	"github.com/hikari-bot/backend/pkg/logger"
	"github.com/hikari-bot/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func quietContext() context.Context {
	return xcontext.WithLogger(context.Background(), logger.NewLogger(logger.SILENCE))
}

func completionResponse(content string) *api.Response {
	// Shapes match what json.Unmarshal produces for a real response body.
	return &api.Response{
		Code: http.StatusOK,
		Body: api.JSON{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": content}},
			},
		},
	}
}

func Test_Endpoint_ChatCompletion(t *testing.T) {
	ctx := quietContext()

	var requestedModels []string
	client := api.MockAPIClient{}
	client.BodyFunc = func(body api.Body) api.Client {
		payload, ok := body.(api.JSON)
		require.True(t, ok)
		requestedModels = append(requestedModels, payload["model"].(string))
		return &client
	}
	client.POSTFunc = func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
		return completionResponse("  the answer  "), nil
	}

	endpoint := New(config.GroqConfigs{APIKey: "key", MaxTokens: 512})
	endpoint.apiGenerator = &api.MockAPIGenerator{MockClient: client}

	reply, err := endpoint.ChatCompletion(ctx, []Message{{Role: "user", Content: "question"}})
	require.NoError(t, err)
	require.Equal(t, "the answer", reply)
	require.Equal(t, []string{modelSequence[0]}, requestedModels)
}

func Test_Endpoint_FallbackChain(t *testing.T) {
	ctx := quietContext()

	var requestedModels []string
	client := api.MockAPIClient{}
	client.BodyFunc = func(body api.Body) api.Client {
		payload, ok := body.(api.JSON)
		require.True(t, ok)
		requestedModels = append(requestedModels, payload["model"].(string))
		return &client
	}
	client.POSTFunc = func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
		// The first two models are overloaded; the third answers.
		if len(requestedModels) < 3 {
			return &api.Response{Code: http.StatusServiceUnavailable}, nil
		}

		return completionResponse("third model answer"), nil
	}

	endpoint := New(config.GroqConfigs{APIKey: "key"})
	endpoint.apiGenerator = &api.MockAPIGenerator{MockClient: client}

	reply, err := endpoint.ChatCompletion(ctx, []Message{{Role: "user", Content: "question"}})
	require.NoError(t, err)
	require.Equal(t, "third model answer", reply)
	require.Equal(t, modelSequence[:3], requestedModels)
}

func Test_Endpoint_AllModelsFail(t *testing.T) {
	ctx := quietContext()

	calls := 0
	client := api.MockAPIClient{}
	client.POSTFunc = func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
		calls++
		return &api.Response{Code: http.StatusInternalServerError}, nil
	}

	endpoint := New(config.GroqConfigs{APIKey: "key"})
	endpoint.apiGenerator = &api.MockAPIGenerator{MockClient: client}

	_, err := endpoint.ChatCompletion(ctx, []Message{{Role: "user", Content: "question"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "all models failed")
	require.Equal(t, len(modelSequence), calls)
}

func Test_Endpoint_MalformedChoices(t *testing.T) {
	ctx := quietContext()

	client := api.MockAPIClient{}
	client.POSTFunc = func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
		return &api.Response{Code: http.StatusOK, Body: api.JSON{"choices": []any{}}}, nil
	}

	endpoint := New(config.GroqConfigs{APIKey: "key"})
	endpoint.apiGenerator = &api.MockAPIGenerator{MockClient: client}

	_, err := endpoint.ChatCompletion(ctx, []Message{{Role: "user", Content: "question"}})
	require.Error(t, err)
}
