package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Conte777/MemberFlow/internal/domain"
	"github.com/Conte777/MemberFlow/internal/infrastructure/metrics"
	"github.com/Conte777/MemberFlow/internal/participants"
	"github.com/Conte777/MemberFlow/pkg/tgutil"
)

// censusUseCase implements domain.CensusUseCase
type censusUseCase struct {
	resolver domain.EntityResolver
	service  domain.ParticipantService
	repo     domain.SnapshotRepository
	producer domain.EventProducer
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewCensusUseCase creates a new census use case. The repository and
// producer are optional: a nil repository skips persistence, a nil
// producer skips event publishing.
func NewCensusUseCase(
	resolver domain.EntityResolver,
	service domain.ParticipantService,
	repo domain.SnapshotRepository,
	producer domain.EventProducer,
	m *metrics.Metrics,
	logger zerolog.Logger,
) domain.CensusUseCase {
	return &censusUseCase{
		resolver: resolver,
		service:  service,
		repo:     repo,
		producer: producer,
		metrics:  m,
		logger:   logger.With().Str("component", "census_usecase").Logger(),
	}
}

// ListParticipants resolves an entity reference and enumerates its participants
func (u *censusUseCase) ListParticipants(ctx context.Context, ref string, opts participants.Options) (*participants.MemberList, error) {
	peer, err := u.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	kind := tgutil.PeerKind(peer)
	if u.metrics != nil {
		u.metrics.RecordEnumeration(kind)
	}

	start := time.Now()
	list, err := u.service.List(ctx, peer, opts)
	if err != nil {
		if u.metrics != nil {
			u.metrics.RecordEnumerationError("rpc_error")
		}
		u.logger.Error().Err(err).
			Str("entity_ref", ref).
			Msg("Participant enumeration failed")
		return nil, err
	}

	if u.metrics != nil {
		u.metrics.RecordEnumerationResult(len(list.Members), time.Since(start).Seconds())
	}
	u.logger.Info().
		Str("entity_ref", ref).
		Str("entity_kind", kind).
		Int("collected", len(list.Members)).
		Int("total", list.Total).
		Msg("Participants enumerated")

	return list, nil
}

// RunCensus enumerates an entity, persists a snapshot and publishes a
// completion event. Persistence failures abort the census; publish
// failures are logged but do not, since the snapshot already exists.
func (u *censusUseCase) RunCensus(ctx context.Context, ref string, opts participants.Options) (*domain.CensusResult, error) {
	peer, err := u.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	kind := tgutil.PeerKind(peer)
	start := time.Now()

	list, err := u.service.List(ctx, peer, opts)
	if err != nil {
		if u.metrics != nil {
			u.metrics.RecordCensusError()
		}
		u.logger.Error().Err(err).
			Str("entity_ref", ref).
			Msg("Census enumeration failed")
		return nil, err
	}

	duration := time.Since(start)
	snapshot := domain.MemberSnapshot{
		ID:         uuid.NewString(),
		EntityRef:  ref,
		EntityKind: kind,
		Total:      list.Total,
		Collected:  len(list.Members),
		Aggressive: opts.Aggressive,
		DurationMS: duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}

	if u.repo != nil {
		if err := u.repo.Save(ctx, &snapshot); err != nil {
			u.logger.Error().Err(err).
				Str("entity_ref", ref).
				Str("snapshot_id", snapshot.ID).
				Msg("Failed to save snapshot")
			return nil, err
		}
		if u.metrics != nil {
			u.metrics.RecordSnapshotStored()
		}
	}

	if u.producer != nil {
		event := &domain.CensusEvent{
			SnapshotID: snapshot.ID,
			EntityRef:  snapshot.EntityRef,
			EntityKind: snapshot.EntityKind,
			Total:      snapshot.Total,
			Collected:  snapshot.Collected,
			Aggressive: snapshot.Aggressive,
			DurationMS: snapshot.DurationMS,
			CreatedAt:  snapshot.CreatedAt,
		}
		if err := u.producer.SendCensusCompleted(ctx, event); err != nil {
			u.logger.Error().Err(err).
				Str("entity_ref", ref).
				Str("snapshot_id", snapshot.ID).
				Msg("Failed to publish census event")
			// Snapshot is already stored, so the census still counts
		}
	}

	if u.metrics != nil {
		u.metrics.RecordCensus(duration.Seconds())
	}
	u.logger.Info().
		Str("entity_ref", ref).
		Str("snapshot_id", snapshot.ID).
		Int("collected", snapshot.Collected).
		Int("total", snapshot.Total).
		Dur("duration", duration).
		Msg("Census completed")

	return &domain.CensusResult{Snapshot: snapshot, Members: list.Members}, nil
}

// ListSnapshots returns stored snapshots for an entity, newest first
func (u *censusUseCase) ListSnapshots(ctx context.Context, ref string, limit int) ([]domain.MemberSnapshot, error) {
	if u.repo == nil {
		return []domain.MemberSnapshot{}, nil
	}
	return u.repo.ListByEntity(ctx, ref, limit)
}
