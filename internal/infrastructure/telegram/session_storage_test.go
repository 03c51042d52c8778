package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/gotd/td/session"
)

func TestFileSessionStorage_RoundTrip(t *testing.T) {
	storage, err := NewFileSessionStorage(t.TempDir(), "+15550000001")
	if err != nil {
		t.Fatalf("NewFileSessionStorage failed: %v", err)
	}

	ctx := context.Background()

	// No session yet
	if _, err := storage.LoadSession(ctx); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("Expected session.ErrNotFound, got %v", err)
	}
	if storage.SessionExists() {
		t.Error("Expected no session file before store")
	}

	data := []byte(`{"auth":"payload"}`)
	if err := storage.StoreSession(ctx, data); err != nil {
		t.Fatalf("StoreSession failed: %v", err)
	}
	if !storage.SessionExists() {
		t.Error("Expected session file after store")
	}

	loaded, err := storage.LoadSession(ctx)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if string(loaded) != string(data) {
		t.Errorf("Loaded session mismatch: %q", loaded)
	}
}

func TestFileSessionStorage_EmptyFileIsNotFound(t *testing.T) {
	storage, err := NewFileSessionStorage(t.TempDir(), "+15550000002")
	if err != nil {
		t.Fatalf("NewFileSessionStorage failed: %v", err)
	}

	ctx := context.Background()
	if err := storage.StoreSession(ctx, nil); err != nil {
		t.Fatalf("StoreSession failed: %v", err)
	}

	if _, err := storage.LoadSession(ctx); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Expected session.ErrNotFound for empty file, got %v", err)
	}
}

func TestFileSessionStorage_Delete(t *testing.T) {
	storage, err := NewFileSessionStorage(t.TempDir(), "+15550000003")
	if err != nil {
		t.Fatalf("NewFileSessionStorage failed: %v", err)
	}

	ctx := context.Background()

	// Deleting a missing session is not an error
	if err := storage.DeleteSession(); err != nil {
		t.Fatalf("DeleteSession on missing file failed: %v", err)
	}

	if err := storage.StoreSession(ctx, []byte("x")); err != nil {
		t.Fatalf("StoreSession failed: %v", err)
	}
	if err := storage.DeleteSession(); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if storage.SessionExists() {
		t.Error("Expected session file to be removed")
	}
}

func TestMaskPhoneNumber(t *testing.T) {
	tests := []struct {
		phone    string
		expected string
	}{
		{"+15551234567", "+1********67"},
		{"123", "***"},
		{"1234", "1234"},
	}

	for _, tt := range tests {
		if got := maskPhoneNumber(tt.phone); got != tt.expected {
			t.Errorf("maskPhoneNumber(%q) = %q, want %q", tt.phone, got, tt.expected)
		}
	}
}
