package participants

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gotd/td/tg"
)

// ErrInvalidFilterKind is returned when a filter kind name is not recognized
var ErrInvalidFilterKind = errors.New("invalid participants filter kind")

// FilterKind is a bare filter variant tag. It stands in for an
// uninstantiated server-side filter; the iterator turns it into a concrete
// tg.ChannelParticipantsFilterClass value.
type FilterKind int

const (
	// FilterNone leaves filter selection to the engine (search filter for
	// channels, none otherwise)
	FilterNone FilterKind = iota

	// FilterRecent selects recently active participants
	FilterRecent

	// FilterAdmins selects administrators
	FilterAdmins

	// FilterBots selects bot accounts
	FilterBots

	// FilterBanned selects banned participants (carries a search query)
	FilterBanned

	// FilterKicked selects kicked participants (carries a search query)
	FilterKicked

	// FilterSearch selects participants by name substring (carries a search query)
	FilterSearch

	// FilterContacts selects participants that are contacts
	FilterContacts
)

// ParseFilterKind parses a filter kind from its string name as used by the
// HTTP API. An empty string means no filter.
func ParseFilterKind(s string) (FilterKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FilterNone, nil
	case "recent":
		return FilterRecent, nil
	case "admins":
		return FilterAdmins, nil
	case "bots":
		return FilterBots, nil
	case "banned":
		return FilterBanned, nil
	case "kicked":
		return FilterKicked, nil
	case "search":
		return FilterSearch, nil
	case "contacts":
		return FilterContacts, nil
	default:
		return FilterNone, fmt.Errorf("%w: %q", ErrInvalidFilterKind, s)
	}
}

// String returns the kind name accepted by ParseFilterKind
func (k FilterKind) String() string {
	switch k {
	case FilterRecent:
		return "recent"
	case FilterAdmins:
		return "admins"
	case FilterBots:
		return "bots"
	case FilterBanned:
		return "banned"
	case FilterKicked:
		return "kicked"
	case FilterSearch:
		return "search"
	case FilterContacts:
		return "contacts"
	default:
		return "none"
	}
}

// normalizeFilter resolves the filter argument of an enumeration call.
// A ready filter instance wins over a bare kind. The banned, kicked and
// search kinds carry a search query, instantiated empty here; the caller
// narrows it by building the instance directly.
func normalizeFilter(opts Options) tg.ChannelParticipantsFilterClass {
	if opts.Filter != nil {
		return opts.Filter
	}
	switch opts.FilterKind {
	case FilterRecent:
		return &tg.ChannelParticipantsRecent{}
	case FilterAdmins:
		return &tg.ChannelParticipantsAdmins{}
	case FilterBots:
		return &tg.ChannelParticipantsBots{}
	case FilterBanned:
		return &tg.ChannelParticipantsBanned{Q: ""}
	case FilterKicked:
		return &tg.ChannelParticipantsKicked{Q: ""}
	case FilterSearch:
		return &tg.ChannelParticipantsSearch{Q: ""}
	case FilterContacts:
		return &tg.ChannelParticipantsContacts{Q: ""}
	default:
		return nil
	}
}
