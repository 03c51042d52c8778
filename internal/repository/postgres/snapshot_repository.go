package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Conte777/MemberFlow/internal/domain"
)

// snapshotRecord is the gorm model for stored census snapshots
type snapshotRecord struct {
	ID         string `gorm:"primaryKey;size:36"`
	EntityRef  string `gorm:"index;size:64;not null"`
	EntityKind string `gorm:"size:16;not null"`
	Total      int
	Collected  int
	Aggressive bool
	DurationMS int64
	CreatedAt  time.Time `gorm:"index"`
}

// TableName sets the table name for snapshot records
func (snapshotRecord) TableName() string {
	return "member_snapshots"
}

// snapshotRepository implements domain.SnapshotRepository over PostgreSQL
type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a PostgreSQL snapshot repository and
// migrates its schema
func NewSnapshotRepository(db *gorm.DB) (domain.SnapshotRepository, error) {
	if err := db.AutoMigrate(&snapshotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot schema: %w", err)
	}
	return &snapshotRepository{db: db}, nil
}

// Save persists a snapshot
func (r *snapshotRepository) Save(ctx context.Context, snapshot *domain.MemberSnapshot) error {
	record := snapshotRecord{
		ID:         snapshot.ID,
		EntityRef:  snapshot.EntityRef,
		EntityKind: snapshot.EntityKind,
		Total:      snapshot.Total,
		Collected:  snapshot.Collected,
		Aggressive: snapshot.Aggressive,
		DurationMS: snapshot.DurationMS,
		CreatedAt:  snapshot.CreatedAt,
	}

	if result := r.db.WithContext(ctx).Create(&record); result.Error != nil {
		return fmt.Errorf("failed to save snapshot: %w", result.Error)
	}
	return nil
}

// ListByEntity returns the most recent snapshots for an entity, newest first
func (r *snapshotRepository) ListByEntity(ctx context.Context, entityRef string, limit int) ([]domain.MemberSnapshot, error) {
	var records []snapshotRecord
	query := r.db.WithContext(ctx).
		Where("entity_ref = ?", entityRef).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&records); result.Error != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", result.Error)
	}

	snapshots := make([]domain.MemberSnapshot, 0, len(records))
	for _, record := range records {
		snapshots = append(snapshots, domain.MemberSnapshot{
			ID:         record.ID,
			EntityRef:  record.EntityRef,
			EntityKind: record.EntityKind,
			Total:      record.Total,
			Collected:  record.Collected,
			Aggressive: record.Aggressive,
			DurationMS: record.DurationMS,
			CreatedAt:  record.CreatedAt,
		})
	}
	return snapshots, nil
}
