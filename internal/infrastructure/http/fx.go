package http

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/MemberFlow/config"
	delivery "github.com/Conte777/MemberFlow/internal/delivery/http"
	"github.com/Conte777/MemberFlow/internal/infrastructure/http/server"
)

// Module provides HTTP server for fx DI
var Module = fx.Module("http",
	fx.Provide(
		delivery.NewParticipantHandler,
		delivery.NewHealthHandler,
		delivery.NewRouter,
		NewServerFx,
	),
	fx.Invoke(registerRoutes),
)

// NewServerFx creates HTTP server with lifecycle hooks for fx DI
func NewServerFx(
	lc fx.Lifecycle,
	serviceCfg *config.ServiceConfig,
	logger zerolog.Logger,
) *server.Server {
	srv := server.NewServer(serviceCfg.Port, logger)

	// Register Prometheus metrics endpoint
	srv.RegisterMetrics()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}

// registerRoutes attaches delivery routes to the server router
func registerRoutes(srv *server.Server, r *delivery.Router) {
	r.RegisterRoutes(srv.Router)
}
