package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Conte777/MemberFlow/internal/domain"
)

func TestSnapshotRepository_SaveAndList(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := repo.Save(ctx, &domain.MemberSnapshot{
			ID:        string(rune('a' + i)),
			EntityRef: "@golang_news",
			Total:     100 + i,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	if err := repo.Save(ctx, &domain.MemberSnapshot{ID: "x", EntityRef: "@other", CreatedAt: base}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snapshots, err := repo.ListByEntity(ctx, "@golang_news", 0)
	if err != nil {
		t.Fatalf("ListByEntity failed: %v", err)
	}
	if len(snapshots) != 3 {
		t.Fatalf("Expected 3 snapshots, got %d", len(snapshots))
	}

	// Newest first
	for i := 1; i < len(snapshots); i++ {
		if snapshots[i].CreatedAt.After(snapshots[i-1].CreatedAt) {
			t.Errorf("Snapshots not sorted newest first at index %d", i)
		}
	}
	if snapshots[0].ID != "c" {
		t.Errorf("Expected newest snapshot 'c' first, got %q", snapshots[0].ID)
	}
}

func TestSnapshotRepository_ListLimit(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = repo.Save(ctx, &domain.MemberSnapshot{
			ID:        string(rune('a' + i)),
			EntityRef: "@chan",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		})
	}

	snapshots, err := repo.ListByEntity(ctx, "@chan", 2)
	if err != nil {
		t.Fatalf("ListByEntity failed: %v", err)
	}
	if len(snapshots) != 2 {
		t.Errorf("Expected 2 snapshots with limit, got %d", len(snapshots))
	}
}

func TestSnapshotRepository_ListUnknownEntity(t *testing.T) {
	repo := NewSnapshotRepository()

	snapshots, err := repo.ListByEntity(context.Background(), "@nobody", 10)
	if err != nil {
		t.Fatalf("ListByEntity failed: %v", err)
	}
	if len(snapshots) != 0 {
		t.Errorf("Expected empty result, got %d snapshots", len(snapshots))
	}
}
