package participants

import (
	"testing"

	"github.com/gotd/td/tg"
)

func testChannel() *tg.InputChannel {
	return &tg.InputChannel{ChannelID: 100, AccessHash: 7}
}

// TestPlanRequests_AggressiveSharding tests the 26-way shard plan
func TestPlanRequests_AggressiveSharding(t *testing.T) {
	requests := planRequests(testChannel(), nil, "x", 15000, true)

	if len(requests) != 26 {
		t.Fatalf("expected 26 shard requests, got %d", len(requests))
	}
	for i, req := range requests {
		search, ok := req.Filter.(*tg.ChannelParticipantsSearch)
		if !ok {
			t.Fatalf("shard %d: expected search filter, got %T", i, req.Filter)
		}
		want := "x" + string(rune('a'+i))
		if search.Q != want {
			t.Errorf("shard %d: expected query %q, got %q", i, want, search.Q)
		}
		if req.Offset != 0 {
			t.Errorf("shard %d: expected offset 0, got %d", i, req.Offset)
		}
		if req.Limit != MaxPageSize {
			t.Errorf("shard %d: expected page size %d, got %d", i, MaxPageSize, req.Limit)
		}
	}
}

// TestPlanRequests_SingleRequest tests the non-sharded plans
func TestPlanRequests_SingleRequest(t *testing.T) {
	tests := []struct {
		name       string
		filter     tg.ChannelParticipantsFilterClass
		search     string
		total      int
		aggressive bool
		wantQuery  string
		wantAdmins bool
	}{
		{
			name:      "small channel without aggressive",
			search:    "jo",
			total:     500,
			wantQuery: "jo",
		},
		{
			name:       "large channel without aggressive",
			total:      50000,
			aggressive: false,
			wantQuery:  "",
		},
		{
			name:       "aggressive below the cap",
			total:      9999,
			aggressive: true,
			wantQuery:  "",
		},
		{
			name:       "structural filter bypasses sharding",
			filter:     &tg.ChannelParticipantsAdmins{},
			total:      15000,
			aggressive: true,
			wantAdmins: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests := planRequests(testChannel(), tt.filter, tt.search, tt.total, tt.aggressive)

			if len(requests) != 1 {
				t.Fatalf("expected a single request, got %d", len(requests))
			}
			req := requests[0]
			if req.Offset != 0 || req.Limit != MaxPageSize {
				t.Errorf("expected offset 0 and limit %d, got %d/%d", MaxPageSize, req.Offset, req.Limit)
			}

			if tt.wantAdmins {
				if _, ok := req.Filter.(*tg.ChannelParticipantsAdmins); !ok {
					t.Errorf("expected admins filter, got %T", req.Filter)
				}
				return
			}
			search, ok := req.Filter.(*tg.ChannelParticipantsSearch)
			if !ok {
				t.Fatalf("expected search filter, got %T", req.Filter)
			}
			if search.Q != tt.wantQuery {
				t.Errorf("expected query %q, got %q", tt.wantQuery, search.Q)
			}
		})
	}
}
