package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Conte777/MemberFlow/internal/domain"
)

// snapshotRepository implements domain.SnapshotRepository using in-memory storage
type snapshotRepository struct {
	mu        sync.RWMutex
	snapshots []domain.MemberSnapshot
}

// NewSnapshotRepository creates a new in-memory snapshot repository
func NewSnapshotRepository() domain.SnapshotRepository {
	return &snapshotRepository{}
}

// Save persists a snapshot
func (r *snapshotRepository) Save(_ context.Context, snapshot *domain.MemberSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots = append(r.snapshots, *snapshot)
	return nil
}

// ListByEntity returns the most recent snapshots for an entity, newest first
func (r *snapshotRepository) ListByEntity(_ context.Context, entityRef string, limit int) ([]domain.MemberSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.MemberSnapshot, 0)
	for _, s := range r.snapshots {
		if s.EntityRef == entityRef {
			matched = append(matched, s)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
