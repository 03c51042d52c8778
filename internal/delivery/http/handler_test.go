package http

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/MemberFlow/config"
	"github.com/Conte777/MemberFlow/internal/domain"
	"github.com/Conte777/MemberFlow/internal/participants"
	"github.com/Conte777/MemberFlow/pkg/httputil"
)

// mockUseCase implements domain.CensusUseCase for handler tests
type mockUseCase struct {
	list      *participants.MemberList
	listErr   error
	lastOpts  participants.Options
	result    *domain.CensusResult
	censusErr error
	snapshots []domain.MemberSnapshot
	lastLimit int
}

func (m *mockUseCase) ListParticipants(_ context.Context, _ string, opts participants.Options) (*participants.MemberList, error) {
	m.lastOpts = opts
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.list, nil
}

func (m *mockUseCase) RunCensus(_ context.Context, _ string, opts participants.Options) (*domain.CensusResult, error) {
	m.lastOpts = opts
	if m.censusErr != nil {
		return nil, m.censusErr
	}
	return m.result, nil
}

func (m *mockUseCase) ListSnapshots(_ context.Context, _ string, limit int) ([]domain.MemberSnapshot, error) {
	m.lastLimit = limit
	return m.snapshots, nil
}

func newTestHandler(uc domain.CensusUseCase) *ParticipantHandler {
	return NewParticipantHandler(uc, &config.CensusConfig{SnapshotHistory: 20}, zerolog.Nop())
}

func requestCtx(uri string, ref string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI(uri)
	if ref != "" {
		ctx.SetUserValue("ref", ref)
	}
	return ctx
}

func decodeResponse(t *testing.T, ctx *fasthttp.RequestCtx) httputil.Response {
	t.Helper()
	var resp httputil.Response
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestParticipantHandler_ListParticipants(t *testing.T) {
	uc := &mockUseCase{list: &participants.MemberList{
		Members: []participants.Member{
			{User: &tg.User{ID: 1, FirstName: "Alice", Username: "alice_w"}},
			{User: &tg.User{ID: 2, FirstName: "Bob", Bot: true}},
		},
		Total: 42,
	}}
	h := newTestHandler(uc)

	ctx := requestCtx("/api/v1/entities/@chan/participants?limit=50&search=al&filter=recent&aggressive=true", "@chan")
	h.ListParticipants(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("Expected 200, got %d", ctx.Response.StatusCode())
	}

	resp := decodeResponse(t, ctx)
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}

	if uc.lastOpts.Limit != 50 {
		t.Errorf("Expected limit 50, got %d", uc.lastOpts.Limit)
	}
	if uc.lastOpts.Search != "al" {
		t.Errorf("Expected search 'al', got %q", uc.lastOpts.Search)
	}
	if uc.lastOpts.FilterKind != participants.FilterRecent {
		t.Errorf("Expected recent filter kind, got %v", uc.lastOpts.FilterKind)
	}
	if !uc.lastOpts.Aggressive {
		t.Error("Expected aggressive option to be set")
	}

	data, _ := json.Marshal(resp.Data)
	var body participantsResponse
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Total != 42 {
		t.Errorf("Expected total 42, got %d", body.Total)
	}
	if body.Collected != 2 {
		t.Errorf("Expected collected 2, got %d", body.Collected)
	}
	if body.Members[0].DisplayName != "Alice" {
		t.Errorf("Expected display name 'Alice', got %q", body.Members[0].DisplayName)
	}
	if !body.Members[1].Bot {
		t.Error("Expected second member to be flagged as bot")
	}
}

func TestParticipantHandler_ListParticipants_DefaultsToNoLimit(t *testing.T) {
	uc := &mockUseCase{list: &participants.MemberList{Members: []participants.Member{}}}
	h := newTestHandler(uc)

	ctx := requestCtx("/api/v1/entities/@chan/participants", "@chan")
	h.ListParticipants(ctx)

	if uc.lastOpts.Limit != participants.NoLimit {
		t.Errorf("Expected NoLimit default, got %d", uc.lastOpts.Limit)
	}
}

func TestParticipantHandler_ListParticipants_InvalidParams(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"negative limit", "/api/v1/entities/@chan/participants?limit=-1"},
		{"non-numeric limit", "/api/v1/entities/@chan/participants?limit=abc"},
		{"unknown filter", "/api/v1/entities/@chan/participants?filter=ghosts"},
		{"bad aggressive", "/api/v1/entities/@chan/participants?aggressive=maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{list: &participants.MemberList{}}
			h := newTestHandler(uc)

			ctx := requestCtx(tt.uri, "@chan")
			h.ListParticipants(ctx)

			if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
				t.Errorf("Expected 400, got %d", ctx.Response.StatusCode())
			}
		})
	}
}

func TestParticipantHandler_ListParticipants_MissingRef(t *testing.T) {
	h := newTestHandler(&mockUseCase{})

	ctx := requestCtx("/api/v1/entities//participants", "")
	h.ListParticipants(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Errorf("Expected 400 for missing ref, got %d", ctx.Response.StatusCode())
	}
}

func TestParticipantHandler_ListParticipants_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", domain.ErrEntityNotFound, fasthttp.StatusNotFound},
		{"invalid ref", domain.ErrInvalidEntityRef, fasthttp.StatusBadRequest},
		{"not connected", domain.ErrNotConnected, fasthttp.StatusServiceUnavailable},
		{"unsupported peer", participants.ErrUnsupportedPeer, fasthttp.StatusBadRequest},
		{"unknown error", errors.New("boom"), fasthttp.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&mockUseCase{listErr: tt.err})

			ctx := requestCtx("/api/v1/entities/@chan/participants", "@chan")
			h.ListParticipants(ctx)

			if ctx.Response.StatusCode() != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, ctx.Response.StatusCode())
			}
		})
	}
}

func TestParticipantHandler_RunCensus(t *testing.T) {
	snapshot := domain.MemberSnapshot{
		ID:         "snap-1",
		EntityRef:  "@chan",
		EntityKind: "channel",
		Total:      42,
		Collected:  40,
		CreatedAt:  time.Now().UTC(),
	}
	uc := &mockUseCase{result: &domain.CensusResult{Snapshot: snapshot}}
	h := newTestHandler(uc)

	ctx := requestCtx("/api/v1/entities/@chan/census", "@chan")
	h.RunCensus(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("Expected 201, got %d", ctx.Response.StatusCode())
	}

	resp := decodeResponse(t, ctx)
	data, _ := json.Marshal(resp.Data)
	var body snapshotDTO
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.ID != "snap-1" {
		t.Errorf("Expected snapshot id 'snap-1', got %q", body.ID)
	}
	if body.Total != 42 || body.Collected != 40 {
		t.Errorf("Unexpected counters: total %d collected %d", body.Total, body.Collected)
	}
}

func TestParticipantHandler_RunCensus_Error(t *testing.T) {
	h := newTestHandler(&mockUseCase{censusErr: domain.ErrEntityNotFound})

	ctx := requestCtx("/api/v1/entities/@gone/census", "@gone")
	h.RunCensus(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Errorf("Expected 404, got %d", ctx.Response.StatusCode())
	}
}

func TestParticipantHandler_ListSnapshots(t *testing.T) {
	uc := &mockUseCase{snapshots: []domain.MemberSnapshot{{ID: "a"}, {ID: "b"}}}
	h := newTestHandler(uc)

	ctx := requestCtx("/api/v1/entities/@chan/snapshots?limit=5", "@chan")
	h.ListSnapshots(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("Expected 200, got %d", ctx.Response.StatusCode())
	}
	if uc.lastLimit != 5 {
		t.Errorf("Expected limit 5 passed through, got %d", uc.lastLimit)
	}

	resp := decodeResponse(t, ctx)
	data, _ := json.Marshal(resp.Data)
	var body []snapshotDTO
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if len(body) != 2 {
		t.Errorf("Expected 2 snapshots, got %d", len(body))
	}
}

func TestParticipantHandler_ListSnapshots_LimitCappedByHistory(t *testing.T) {
	uc := &mockUseCase{}
	h := newTestHandler(uc)

	ctx := requestCtx("/api/v1/entities/@chan/snapshots?limit=500", "@chan")
	h.ListSnapshots(ctx)

	if uc.lastLimit != 20 {
		t.Errorf("Expected history cap 20, got %d", uc.lastLimit)
	}
}
