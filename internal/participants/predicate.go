package participants

import (
	"strings"

	"github.com/gotd/td/tg"

	"github.com/Conte777/MemberFlow/pkg/tgutil"
)

// matchFunc reports whether a user passes the client-side search
type matchFunc func(u *tg.User) bool

// buildPredicate builds the local match predicate for one enumeration call.
// The search has to happen client-side when a structural filter already
// occupies the server-side filter slot, or when the peer is not a channel
// (the API cannot search basic chats or single users). In every other case
// the server does the searching and the predicate matches everything.
func buildPredicate(search string, filter tg.ChannelParticipantsFilterClass, channelPeer bool) matchFunc {
	if search == "" || (filter == nil && channelPeer) {
		return func(*tg.User) bool { return true }
	}

	needle := strings.ToLower(search)
	return func(u *tg.User) bool {
		if u == nil {
			return false
		}
		if strings.Contains(strings.ToLower(tgutil.DisplayName(u)), needle) {
			return true
		}
		return u.Username != "" && strings.Contains(strings.ToLower(u.Username), needle)
	}
}
