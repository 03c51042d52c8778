package tgutil

import (
	"strings"

	"github.com/gotd/td/tg"
)

// DisplayName renders a human-readable name for a user: full name first,
// then username, then phone number.
func DisplayName(u *tg.User) string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	case u.Username != "":
		return u.Username
	}
	return u.Phone
}

// PeerKind names the kind of an input peer for logging and snapshots.
func PeerKind(peer tg.InputPeerClass) string {
	switch peer.(type) {
	case *tg.InputPeerChannel:
		return "channel"
	case *tg.InputPeerChat:
		return "chat"
	case *tg.InputPeerUser, *tg.InputPeerSelf:
		return "user"
	default:
		return strings.TrimPrefix(strings.ToLower(peer.TypeName()), "inputpeer")
	}
}
