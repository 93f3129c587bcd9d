package xcontext

import (
	"context"
	"net/http"

	"github.com/hikari-bot/backend/config"
	"github.com/hikari-bot/backend/pkg/logger"
)

type (
	configsKey    struct{}
	loggerKey     struct{}
	httpClientKey struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	if cfg, ok := ctx.Value(configsKey{}).(config.Configs); ok {
		return cfg
	}

	return config.Configs{}
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	if l, ok := ctx.Value(loggerKey{}).(logger.Logger); ok {
		return l
	}

	return logger.NewLogger(logger.INFO)
}

// Detach returns a fresh background context carrying over the process-wide
// values (configs, logger, http client) but not the deadline or cancelation
// of ctx. Used for work that must outlive the inbound request.
func Detach(ctx context.Context) context.Context {
	detached := context.Background()
	if cfg, ok := ctx.Value(configsKey{}).(config.Configs); ok {
		detached = WithConfigs(detached, cfg)
	}

	if l, ok := ctx.Value(loggerKey{}).(logger.Logger); ok {
		detached = WithLogger(detached, l)
	}

	if client, ok := ctx.Value(httpClientKey{}).(*http.Client); ok {
		detached = WithHTTPClient(detached, client)
	}

	return detached
}

func WithHTTPClient(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, httpClientKey{}, client)
}

func HTTPClient(ctx context.Context) *http.Client {
	if client, ok := ctx.Value(httpClientKey{}).(*http.Client); ok {
		return client
	}

	return http.DefaultClient
}
