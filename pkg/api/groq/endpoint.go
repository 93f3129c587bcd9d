package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hikari-bot/backend/config"
	"github.com/hikari-bot/backend/pkg/api"
	"github.com/hikari-bot/backend/pkg/xcontext"
)

const apiURL = "https://api.groq.com"
const completionPath = "/openai/v1/chat/completions"

// Models are tried in order; on a failure the next one is used as fallback.
var modelSequence = []string{
	"llama-3.2-90b-text-preview",
	"llama-3.1-70b-versatile",
	"llama-3.2-11b-text-preview",
	"llama-3.1-8b-instant",
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type IEndpoint interface {
	ChatCompletion(ctx context.Context, messages []Message) (string, error)
}

type Endpoint struct {
	apiKey           string
	maxTokens        int
	temperature      float64
	presencePenalty  float64
	frequencyPenalty float64

	apiGenerator api.Generator
}

func New(cfg config.GroqConfigs) *Endpoint {
	return &Endpoint{
		apiKey:           cfg.APIKey,
		maxTokens:        cfg.MaxTokens,
		temperature:      cfg.Temperature,
		presencePenalty:  cfg.PresencePenalty,
		frequencyPenalty: cfg.FrequencyPenalty,
		apiGenerator:     api.NewGenerator(),
	}
}

// ChatCompletion walks the model fallback chain until one of them answers.
func (e *Endpoint) ChatCompletion(ctx context.Context, messages []Message) (string, error) {
	var anyMessages []any
	for _, m := range messages {
		anyMessages = append(anyMessages, map[string]any{"role": m.Role, "content": m.Content})
	}

	var lastErr error
	for _, model := range modelSequence {
		payload := api.JSON{
			"model":             model,
			"messages":          anyMessages,
			"max_tokens":        e.maxTokens,
			"temperature":       e.temperature,
			"presence_penalty":  e.presencePenalty,
			"frequency_penalty": e.frequencyPenalty,
		}

		resp, err := e.apiGenerator.New(apiURL, completionPath).
			Body(payload).
			POST(ctx, api.OAuth2("Bearer", e.apiKey))
		if err != nil {
			xcontext.Logger(ctx).Warnf("Request failed for %s: %v", model, err)
			lastErr = err
			continue
		}

		if resp.Code != http.StatusOK {
			xcontext.Logger(ctx).Warnf("Unexpected status %d from %s", resp.Code, model)
			lastErr = fmt.Errorf("unexpected status %d from %s", resp.Code, model)
			continue
		}

		body, ok := resp.Body.(api.JSON)
		if !ok {
			lastErr = errors.New("invalid response")
			continue
		}

		choices, err := body.GetArray("choices")
		if err != nil || len(choices) == 0 {
			xcontext.Logger(ctx).Warnf("Unexpected response from %s", model)
			lastErr = fmt.Errorf("unexpected response from %s", model)
			continue
		}

		content, err := choices[0].GetString("message.content")
		if err != nil {
			lastErr = err
			continue
		}

		xcontext.Logger(ctx).Infof("Successfully got response from %s", model)
		return strings.TrimSpace(content), nil
	}

	return "", fmt.Errorf("all models failed: %w", lastErr)
}
