package app

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/MemberFlow/config"
	"github.com/Conte777/MemberFlow/internal/domain"
	"github.com/Conte777/MemberFlow/internal/infrastructure/database"
	httpfx "github.com/Conte777/MemberFlow/internal/infrastructure/http"
	"github.com/Conte777/MemberFlow/internal/infrastructure/kafka"
	"github.com/Conte777/MemberFlow/internal/infrastructure/logger"
	"github.com/Conte777/MemberFlow/internal/infrastructure/metrics"
	"github.com/Conte777/MemberFlow/internal/infrastructure/telegram"
	"github.com/Conte777/MemberFlow/internal/participants"
	"github.com/Conte777/MemberFlow/internal/repository/memory"
	"github.com/Conte777/MemberFlow/internal/repository/postgres"
	"github.com/Conte777/MemberFlow/internal/usecase"
)

// CreateApp creates the fx application options
func CreateApp() fx.Option {
	return fx.Options(
		fx.Provide(
			config.Out,
			context.Background,
		),
		logger.Module,
		metrics.Module,
		telegram.Module,
		kafka.Module,
		fx.Provide(
			NewSnapshotRepositoryFx,
			NewParticipantServiceFx,
			func(s *participants.Service) domain.ParticipantService { return s },
			usecase.NewCensusUseCase,
			usecase.NewCensusScheduler,
		),
		httpfx.Module,
		fx.Invoke(registerScheduler),
	)
}

// NewParticipantServiceFx creates the enumeration service for fx DI
func NewParticipantServiceFx(exec participants.Executor, log zerolog.Logger) *participants.Service {
	return participants.NewService(exec, log)
}

// NewSnapshotRepositoryFx selects the snapshot repository backend: a
// PostgreSQL store when the database is enabled, in-memory otherwise
func NewSnapshotRepositoryFx(
	lc fx.Lifecycle,
	cfg *config.DatabaseConfig,
	log zerolog.Logger,
) (domain.SnapshotRepository, error) {
	if !cfg.Enabled {
		log.Info().Msg("Database disabled, using in-memory snapshot repository")
		return memory.NewSnapshotRepository(), nil
	}

	db, err := database.NewPostgresDBFx(lc, cfg, log)
	if err != nil {
		return nil, err
	}

	return postgres.NewSnapshotRepository(db)
}

// registerScheduler hooks the census scheduler into the fx lifecycle
func registerScheduler(lc fx.Lifecycle, scheduler *usecase.CensusScheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Runs beyond OnStart, so detach from the startup context
			scheduler.Start(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			scheduler.Stop(ctx)
			return nil
		},
	})
}
