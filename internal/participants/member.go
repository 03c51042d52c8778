package participants

import (
	"github.com/gotd/td/tg"

	"github.com/Conte777/MemberFlow/pkg/tgutil"
)

// Member is one enumerated participant: the user record plus the membership
// fact it was matched with. Exactly one of ChannelParticipant and
// ChatParticipant is set; both are nil for a single-user peer, where no
// membership metadata applies.
type Member struct {
	User *tg.User

	// ChannelParticipant is set on the channel/supergroup path
	ChannelParticipant tg.ChannelParticipantClass

	// ChatParticipant is set on the basic group path
	ChatParticipant tg.ChatParticipantClass
}

// UserID returns the user identifier of the member
func (m Member) UserID() int64 {
	if m.User == nil {
		return 0
	}
	return m.User.ID
}

// Username returns the public username, if any
func (m Member) Username() string {
	if m.User == nil {
		return ""
	}
	return m.User.Username
}

// DisplayName returns the formatted display name of the member
func (m Member) DisplayName() string {
	return tgutil.DisplayName(m.User)
}

// IsCreator reports whether the member created the channel or chat
func (m Member) IsCreator() bool {
	switch m.ChannelParticipant.(type) {
	case *tg.ChannelParticipantCreator:
		return true
	}
	switch m.ChatParticipant.(type) {
	case *tg.ChatParticipantCreator:
		return true
	}
	return false
}

// IsAdmin reports whether the member is an administrator (creators included)
func (m Member) IsAdmin() bool {
	if m.IsCreator() {
		return true
	}
	switch m.ChannelParticipant.(type) {
	case *tg.ChannelParticipantAdmin:
		return true
	}
	switch m.ChatParticipant.(type) {
	case *tg.ChatParticipantAdmin:
		return true
	}
	return false
}

// Rank returns the custom admin title, if the membership record carries one
func (m Member) Rank() string {
	switch p := m.ChannelParticipant.(type) {
	case *tg.ChannelParticipantCreator:
		return p.Rank
	case *tg.ChannelParticipantAdmin:
		return p.Rank
	}
	return ""
}

// Role names the membership role for API responses
func (m Member) Role() string {
	switch m.ChannelParticipant.(type) {
	case *tg.ChannelParticipantCreator:
		return "creator"
	case *tg.ChannelParticipantAdmin:
		return "admin"
	case *tg.ChannelParticipantBanned:
		return "banned"
	case *tg.ChannelParticipantLeft:
		return "left"
	case *tg.ChannelParticipant, *tg.ChannelParticipantSelf:
		return "member"
	}
	switch m.ChatParticipant.(type) {
	case *tg.ChatParticipantCreator:
		return "creator"
	case *tg.ChatParticipantAdmin:
		return "admin"
	case *tg.ChatParticipant:
		return "member"
	}
	return ""
}

// MemberList is the eager result of an enumeration: members in yield order
// plus the total participant count reported out of band by the server.
type MemberList struct {
	Members []Member
	Total   int
}

// participantUserID extracts the user id a channel participant record is
// keyed by. Banned and left records key by peer and may point at a chat
// instead of a user; those carry no user to enrich and report false.
func participantUserID(p tg.ChannelParticipantClass) (int64, bool) {
	switch v := p.(type) {
	case *tg.ChannelParticipant:
		return v.UserID, true
	case *tg.ChannelParticipantSelf:
		return v.UserID, true
	case *tg.ChannelParticipantCreator:
		return v.UserID, true
	case *tg.ChannelParticipantAdmin:
		return v.UserID, true
	case *tg.ChannelParticipantBanned:
		if peer, ok := v.Peer.(*tg.PeerUser); ok {
			return peer.UserID, true
		}
	case *tg.ChannelParticipantLeft:
		if peer, ok := v.Peer.(*tg.PeerUser); ok {
			return peer.UserID, true
		}
	}
	return 0, false
}
