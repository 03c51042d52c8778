package telegram

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/MemberFlow/config"
	"github.com/Conte777/MemberFlow/internal/domain"
	"github.com/Conte777/MemberFlow/internal/infrastructure/metrics"
	"github.com/Conte777/MemberFlow/internal/participants"
)

// Module provides the Telegram client, executor and resolver for fx DI
var Module = fx.Module("telegram",
	fx.Provide(
		NewMTProtoClientFx,
		func(c *MTProtoClient) domain.TelegramClient { return c },
		NewExecutorFx,
		NewResolverFx,
	),
)

// NewMTProtoClientFx creates the MTProto client with lifecycle hooks for fx DI
func NewMTProtoClientFx(
	lc fx.Lifecycle,
	telegramCfg *config.TelegramConfig,
	logger zerolog.Logger,
) (*MTProtoClient, error) {
	client, err := NewMTProtoClient(MTProtoClientConfig{
		APIID:       telegramCfg.APIID,
		APIHash:     telegramCfg.APIHash,
		PhoneNumber: telegramCfg.PhoneNumber,
		SessionDir:  telegramCfg.SessionDir,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			connectCtx, cancel := context.WithTimeout(ctx, telegramCfg.ConnectTimeout)
			defer cancel()
			return client.Connect(connectCtx)
		},
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})

	return client, nil
}

// NewExecutorFx creates the RPC executor for fx DI
func NewExecutorFx(client *MTProtoClient, m *metrics.Metrics, logger zerolog.Logger) participants.Executor {
	return NewRPCExecutor(client, m, logger)
}

// NewResolverFx creates the entity resolver for fx DI
func NewResolverFx(client *MTProtoClient, logger zerolog.Logger) domain.EntityResolver {
	return NewResolver(client, logger)
}
