package participants

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"
)

// NoLimit makes an enumeration yield every reachable participant
const NoLimit = math.MaxInt

// ErrUnsupportedPeer is returned for peers the engine cannot enumerate
var ErrUnsupportedPeer = errors.New("unsupported peer for participant enumeration")

// Executor issues the engine's RPC calls. One response per request,
// order preserved; failures pass through to the engine untranslated.
// Implementations own transport concerns (rate limiting, batching); the
// engine owns none of them.
type Executor interface {
	// GetParticipants issues a batch of paginated participant queries
	GetParticipants(ctx context.Context, reqs []*tg.ChannelsGetParticipantsRequest) ([]*tg.ChannelsChannelParticipants, error)

	// GetFullChannel fetches full channel metadata (participant count)
	GetFullChannel(ctx context.Context, channel *tg.InputChannel) (*tg.MessagesChatFull, error)

	// GetFullChat fetches full basic-group metadata (membership list)
	GetFullChat(ctx context.Context, chatID int64) (*tg.MessagesChatFull, error)

	// GetUsers resolves full user records
	GetUsers(ctx context.Context, ids []tg.InputUserClass) ([]tg.UserClass, error)
}

// Options control one enumeration call.
//
// The zero value yields nothing: Limit must be set, with NoLimit meaning
// unbounded. A Limit of 0 still reports the total where one is available.
type Options struct {
	// Limit caps the number of members yielded
	Limit int

	// Search filters members by display name or username substring,
	// server-side where the API supports it and client-side otherwise
	Search string

	// Filter is a ready server-side structural filter; wins over FilterKind
	Filter tg.ChannelParticipantsFilterClass

	// FilterKind selects a structural filter by tag when Filter is nil
	FilterKind FilterKind

	// Aggressive enables 26-way letter sharding for channels whose
	// membership exceeds the per-query enumeration cap
	Aggressive bool

	// FetchTotal forces fetching the total participant count up front
	FetchTotal bool
}

// Iterator is a pull-based lazy sequence of members. Each call owns its
// state exclusively; concurrent enumerations never share anything.
//
//	it := participants.NewIterator(exec, log, peer, opts)
//	for it.Next(ctx) {
//		m := it.Value()
//		...
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	exec Executor
	log  zerolog.Logger
	peer tg.InputPeerClass
	opts Options

	limit  int
	filter tg.ChannelParticipantsFilterClass
	match  matchFunc

	started  bool
	done     bool
	requests []*tg.ChannelsGetParticipantsRequest
	seen     map[int64]struct{}
	buf      []Member

	cur      Member
	total    int
	totalSet bool
	err      error
}

// NewIterator creates a lazy participant enumeration over peer. Nothing is
// fetched until the first Next call.
func NewIterator(exec Executor, log zerolog.Logger, peer tg.InputPeerClass, opts Options) *Iterator {
	it := &Iterator{
		exec:  exec,
		log:   log.With().Str("component", "participants").Logger(),
		peer:  peer,
		opts:  opts,
		limit: opts.Limit,
	}
	it.filter = normalizeFilter(opts)
	_, channelPeer := peer.(*tg.InputPeerChannel)
	it.match = buildPredicate(opts.Search, it.filter, channelPeer)
	return it
}

// Next advances the iterator. It returns false when the sequence is
// exhausted or failed; Err distinguishes the two.
func (it *Iterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	for {
		if len(it.buf) > 0 {
			it.cur = it.buf[0]
			it.buf = it.buf[1:]
			return true
		}
		if it.done {
			return false
		}
		if err := ctx.Err(); err != nil {
			it.fail(err)
			return false
		}
		if !it.started {
			it.started = true
			if err := it.start(ctx); err != nil {
				it.fail(err)
				return false
			}
			continue
		}
		if err := it.fetchBatch(ctx); err != nil {
			it.fail(err)
			return false
		}
	}
}

// Value returns the member produced by the last successful Next call
func (it *Iterator) Value() Member {
	return it.cur
}

// Err returns the first error the enumeration hit, if any
func (it *Iterator) Err() error {
	return it.err
}

// Total reports the total participant count once known. It is written at
// most once per enumeration and may be available before the first yield.
func (it *Iterator) Total() (int, bool) {
	return it.total, it.totalSet
}

func (it *Iterator) setTotal(n int) {
	if !it.totalSet {
		it.total = n
		it.totalSet = true
	}
}

func (it *Iterator) fail(err error) {
	it.err = err
	it.done = true
	it.buf = nil
	it.requests = nil
}

// start dispatches on the resolved peer kind
func (it *Iterator) start(ctx context.Context) error {
	switch peer := it.peer.(type) {
	case *tg.InputPeerChannel:
		return it.startChannel(ctx, &tg.InputChannel{
			ChannelID:  peer.ChannelID,
			AccessHash: peer.AccessHash,
		})
	case *tg.InputPeerChat:
		return it.runChat(ctx, peer.ChatID)
	default:
		return it.runSingle(ctx)
	}
}

// startChannel plans the request set for a channel or supergroup. The
// authoritative count is fetched up front when the caller wants the total,
// or when aggressive mode needs it to decide whether sharding is worth it.
func (it *Iterator) startChannel(ctx context.Context, channel *tg.InputChannel) error {
	count := 0
	if it.opts.FetchTotal || (it.opts.Aggressive && it.filter == nil) {
		full, err := it.exec.GetFullChannel(ctx, channel)
		if err != nil {
			return err
		}
		if channelFull, ok := full.FullChat.(*tg.ChannelFull); ok {
			count = channelFull.ParticipantsCount
		}
		it.setTotal(count)
	}

	if it.limit == 0 {
		it.done = true
		return nil
	}

	it.requests = planRequests(channel, it.filter, it.opts.Search, count, it.opts.Aggressive)
	it.seen = make(map[int64]struct{})
	it.log.Debug().
		Int64("channel_id", channel.ChannelID).
		Int("total", count).
		Int("requests", len(it.requests)).
		Bool("aggressive", len(it.requests) > 1).
		Msg("planned participant requests")
	return nil
}

// fetchBatch runs one round of the channel pagination loop: clamp the
// first request to the remaining limit, issue the whole request set as one
// batch, consume every response, advance offsets and retire exhausted
// shards. Members land in the pull buffer in request-list order.
func (it *Iterator) fetchBatch(ctx context.Context) error {
	if len(it.requests) == 0 {
		it.done = true
		return nil
	}

	// Only the first request respects the limit precisely: under
	// aggressive sharding the limit check on the seen set below is what
	// actually stops the enumeration.
	first := it.requests[0]
	remaining := it.limit - first.Offset
	if remaining > MaxPageSize {
		remaining = MaxPageSize
	}
	first.Limit = remaining
	if first.Offset > it.limit {
		it.done = true
		return nil
	}

	pages, err := it.exec.GetParticipants(ctx, it.requests)
	if err != nil {
		return err
	}
	if len(pages) != len(it.requests) {
		return fmt.Errorf("executor returned %d responses for %d requests", len(pages), len(it.requests))
	}

	var exhausted []int
	for i, page := range pages {
		if page == nil || len(page.Users) == 0 {
			exhausted = append(exhausted, i)
			continue
		}
		it.requests[i].Offset += len(page.Participants)

		users := make(map[int64]*tg.User, len(page.Users))
		for _, uc := range page.Users {
			if u, ok := uc.AsNotEmpty(); ok {
				users[u.ID] = u
			}
		}

		for _, record := range page.Participants {
			id, ok := participantUserID(record)
			if !ok {
				continue
			}
			user, ok := users[id]
			if !ok || !it.match(user) {
				continue
			}
			if _, dup := it.seen[id]; dup {
				continue
			}
			it.seen[id] = struct{}{}
			it.buf = append(it.buf, Member{User: user, ChannelParticipant: record})
			if len(it.seen) >= it.limit {
				// Limit reached mid-batch: drop the whole request
				// set, remaining responses included.
				it.requests = nil
				return nil
			}
		}
	}

	// Retire exhausted shards in reverse index order so removals do not
	// disturb lower indices.
	for j := len(exhausted) - 1; j >= 0; j-- {
		i := exhausted[j]
		it.requests = append(it.requests[:i], it.requests[i+1:]...)
	}
	if len(exhausted) > 0 {
		it.log.Debug().
			Int("retired", len(exhausted)).
			Int("active", len(it.requests)).
			Msg("retired exhausted shards")
	}
	return nil
}

// runChat handles basic groups: membership arrives whole in a single
// full-metadata fetch, so the walk is eager. A forbidden or unresolved
// membership list is a normal empty result with total 0, not a fault.
func (it *Iterator) runChat(ctx context.Context, chatID int64) error {
	full, err := it.exec.GetFullChat(ctx, chatID)
	if err != nil {
		return err
	}
	it.done = true

	chatFull, ok := full.FullChat.(*tg.ChatFull)
	if !ok {
		it.setTotal(0)
		return nil
	}
	members, ok := chatFull.Participants.(*tg.ChatParticipants)
	if !ok {
		it.setTotal(0)
		return nil
	}
	it.setTotal(len(members.Participants))

	users := make(map[int64]*tg.User, len(full.Users))
	for _, uc := range full.Users {
		if u, ok := uc.AsNotEmpty(); ok {
			users[u.ID] = u
		}
	}

	// The server already returns a distinct set, so no dedup here
	have := 0
	for _, record := range members.Participants {
		user, ok := users[record.GetUserID()]
		if !ok || !it.match(user) {
			continue
		}
		have++
		if have > it.limit {
			break
		}
		it.buf = append(it.buf, Member{User: user, ChatParticipant: record})
	}
	return nil
}

// runSingle treats the peer itself as the sole candidate. The member is
// yielded with no membership record attached.
func (it *Iterator) runSingle(ctx context.Context) error {
	it.done = true

	var input tg.InputUserClass
	switch peer := it.peer.(type) {
	case *tg.InputPeerUser:
		input = &tg.InputUser{UserID: peer.UserID, AccessHash: peer.AccessHash}
	case *tg.InputPeerSelf:
		input = &tg.InputUserSelf{}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedPeer, it.peer.TypeName())
	}

	it.setTotal(1)
	if it.limit == 0 {
		return nil
	}

	users, err := it.exec.GetUsers(ctx, []tg.InputUserClass{input})
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}
	user, ok := users[0].AsNotEmpty()
	if !ok || !it.match(user) {
		return nil
	}
	it.buf = append(it.buf, Member{User: user})
	return nil
}
