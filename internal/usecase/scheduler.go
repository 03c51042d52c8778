package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/MemberFlow/config"
	"github.com/Conte777/MemberFlow/internal/domain"
	"github.com/Conte777/MemberFlow/internal/participants"
)

// CensusScheduler runs a census over the configured entities on a fixed
// interval. Entities are processed sequentially; a failure on one entity
// does not stop the others.
type CensusScheduler struct {
	usecase  domain.CensusUseCase
	entities []string
	interval time.Duration
	opts     participants.Options
	logger   zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewCensusScheduler creates a scheduler from census configuration
func NewCensusScheduler(uc domain.CensusUseCase, cfg *config.CensusConfig, logger zerolog.Logger) *CensusScheduler {
	return &CensusScheduler{
		usecase:  uc,
		entities: cfg.Entities,
		interval: cfg.Interval,
		opts: participants.Options{
			Limit:      participants.NoLimit,
			Aggressive: cfg.Aggressive,
			FetchTotal: true,
		},
		logger: logger.With().Str("component", "census_scheduler").Logger(),
	}
}

// Start launches the scheduling loop. The first run happens after one full
// interval, not at startup, so a crash-looping service does not hammer the
// API. No-op when no entities are configured.
func (s *CensusScheduler) Start(ctx context.Context) {
	if len(s.entities) == 0 {
		s.logger.Info().Msg("No census entities configured, scheduler idle")
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Info().
		Strs("entities", s.entities).
		Dur("interval", s.interval).
		Msg("Census scheduler started")

	go s.run(runCtx)
}

func (s *CensusScheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce enumerates every configured entity once
func (s *CensusScheduler) runOnce(ctx context.Context) {
	for _, entity := range s.entities {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.usecase.RunCensus(ctx, entity, s.opts); err != nil {
			s.logger.Error().Err(err).
				Str("entity_ref", entity).
				Msg("Scheduled census failed")
			continue
		}
	}
}

// Stop terminates the scheduling loop and waits for an in-flight run to
// finish or the context to expire. Safe to call more than once.
func (s *CensusScheduler) Stop(ctx context.Context) {
	s.once.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		select {
		case <-s.done:
			s.logger.Info().Msg("Census scheduler stopped")
		case <-ctx.Done():
			s.logger.Warn().Msg("Timeout waiting for census scheduler to stop")
		}
	})
}
