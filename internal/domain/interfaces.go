package domain

import (
	"context"

	"github.com/gotd/td/tg"

	"github.com/Conte777/MemberFlow/internal/participants"
)

// TelegramClient defines the MTProto connection lifecycle
type TelegramClient interface {
	// Connect connects to Telegram, restoring a stored session when one
	// exists and running the auth flow otherwise
	Connect(ctx context.Context) error

	// Disconnect disconnects from Telegram
	// The context controls the timeout for graceful shutdown
	Disconnect(ctx context.Context) error

	// IsConnected checks if client is connected
	IsConnected() bool
}

// EntityResolver converts a user-supplied entity reference into a typed
// input peer usable in RPC calls
type EntityResolver interface {
	// Resolve accepts "@username", "me"/"self" or a numeric basic-chat id
	Resolve(ctx context.Context, ref string) (tg.InputPeerClass, error)
}

// ParticipantService enumerates the participants of a resolved peer
type ParticipantService interface {
	// Iter starts a lazy enumeration
	Iter(peer tg.InputPeerClass, opts participants.Options) *participants.Iterator

	// List enumerates eagerly, returning members plus the total count
	List(ctx context.Context, peer tg.InputPeerClass, opts participants.Options) (*participants.MemberList, error)
}

// SnapshotRepository stores census snapshots
type SnapshotRepository interface {
	// Save persists a snapshot
	Save(ctx context.Context, snapshot *MemberSnapshot) error

	// ListByEntity returns the most recent snapshots for an entity,
	// newest first
	ListByEntity(ctx context.Context, entityRef string, limit int) ([]MemberSnapshot, error)
}

// EventProducer publishes census lifecycle events
type EventProducer interface {
	// SendCensusCompleted publishes a census completion event
	SendCensusCompleted(ctx context.Context, event *CensusEvent) error

	// Close closes the producer
	Close() error

	// IsHealthy returns true if the producer can send messages
	IsHealthy() bool
}

// CensusUseCase defines the business logic around participant enumeration
type CensusUseCase interface {
	// ListParticipants resolves an entity reference and enumerates its
	// participants
	ListParticipants(ctx context.Context, ref string, opts participants.Options) (*participants.MemberList, error)

	// RunCensus enumerates an entity, persists a snapshot and publishes
	// a completion event
	RunCensus(ctx context.Context, ref string, opts participants.Options) (*CensusResult, error)

	// ListSnapshots returns stored snapshots for an entity, newest first
	ListSnapshots(ctx context.Context, ref string, limit int) ([]MemberSnapshot, error)
}
