package domain

import (
	"time"

	"github.com/Conte777/MemberFlow/internal/participants"
)

// MemberSnapshot records the outcome of one census run over an entity
type MemberSnapshot struct {
	ID         string
	EntityRef  string
	EntityKind string // channel, chat or user
	Total      int    // server-reported participant count
	Collected  int    // members actually enumerated
	Aggressive bool
	DurationMS int64
	CreatedAt  time.Time
}

// CensusResult is a completed census: the stored snapshot plus the members
// it was computed from
type CensusResult struct {
	Snapshot MemberSnapshot
	Members  []participants.Member
}

// CensusEvent is published to Kafka when a census completes
type CensusEvent struct {
	SnapshotID string    `json:"snapshot_id"`
	EntityRef  string    `json:"entity_ref"`
	EntityKind string    `json:"entity_kind"`
	Total      int       `json:"total"`
	Collected  int       `json:"collected"`
	Aggressive bool      `json:"aggressive"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
