package participants

import (
	"errors"
	"testing"

	"github.com/gotd/td/tg"
)

// TestParseFilterKind tests filter kind name parsing
func TestParseFilterKind(t *testing.T) {
	tests := []struct {
		input   string
		want    FilterKind
		wantErr bool
	}{
		{input: "", want: FilterNone},
		{input: "recent", want: FilterRecent},
		{input: "admins", want: FilterAdmins},
		{input: "bots", want: FilterBots},
		{input: "banned", want: FilterBanned},
		{input: "kicked", want: FilterKicked},
		{input: "search", want: FilterSearch},
		{input: "contacts", want: FilterContacts},
		{input: "  Admins  ", want: FilterAdmins},
		{input: "moderators", wantErr: true},
		{input: "all", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFilterKind(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFilterKind) {
					t.Errorf("expected ErrInvalidFilterKind, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestNormalizeFilter tests bare tag instantiation and pass-through
func TestNormalizeFilter(t *testing.T) {
	t.Run("ready instance wins", func(t *testing.T) {
		ready := &tg.ChannelParticipantsSearch{Q: "abc"}
		got := normalizeFilter(Options{Filter: ready, FilterKind: FilterAdmins})
		if got != ready {
			t.Errorf("expected the ready filter instance, got %#v", got)
		}
	})

	t.Run("none passes through as nil", func(t *testing.T) {
		if got := normalizeFilter(Options{}); got != nil {
			t.Errorf("expected nil filter, got %#v", got)
		}
	})

	tests := []struct {
		kind  FilterKind
		check func(tg.ChannelParticipantsFilterClass) bool
	}{
		{FilterRecent, func(f tg.ChannelParticipantsFilterClass) bool {
			_, ok := f.(*tg.ChannelParticipantsRecent)
			return ok
		}},
		{FilterAdmins, func(f tg.ChannelParticipantsFilterClass) bool {
			_, ok := f.(*tg.ChannelParticipantsAdmins)
			return ok
		}},
		{FilterBots, func(f tg.ChannelParticipantsFilterClass) bool {
			_, ok := f.(*tg.ChannelParticipantsBots)
			return ok
		}},
		{FilterBanned, func(f tg.ChannelParticipantsFilterClass) bool {
			v, ok := f.(*tg.ChannelParticipantsBanned)
			return ok && v.Q == ""
		}},
		{FilterKicked, func(f tg.ChannelParticipantsFilterClass) bool {
			v, ok := f.(*tg.ChannelParticipantsKicked)
			return ok && v.Q == ""
		}},
		{FilterSearch, func(f tg.ChannelParticipantsFilterClass) bool {
			v, ok := f.(*tg.ChannelParticipantsSearch)
			return ok && v.Q == ""
		}},
		{FilterContacts, func(f tg.ChannelParticipantsFilterClass) bool {
			v, ok := f.(*tg.ChannelParticipantsContacts)
			return ok && v.Q == ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got := normalizeFilter(Options{FilterKind: tt.kind})
			if !tt.check(got) {
				t.Errorf("kind %v produced %#v", tt.kind, got)
			}
		})
	}
}
