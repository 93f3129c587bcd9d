package testutil

import (
	"context"

	"github.com/hikari-bot/backend/config"
	"github.com/hikari-bot/backend/pkg/logger"
	"github.com/hikari-bot/backend/pkg/xcontext"
)

func MockContext(cfg config.Configs) context.Context {
	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	return ctx
}
