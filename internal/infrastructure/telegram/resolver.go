package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gotd/td/tg"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Conte777/MemberFlow/internal/domain"
)

const (
	// resolveCacheTTL bounds how long a resolved peer stays valid locally.
	// Access hashes are stable per account, so a generous TTL is safe.
	resolveCacheTTL     = 30 * time.Minute
	resolveCacheCleanup = 10 * time.Minute

	// resolvesPerMinute caps contacts.resolveUsername calls, which Telegram
	// flood-limits far harder than regular queries
	resolvesPerMinute = 20
)

// Resolver implements domain.EntityResolver. Resolution results are cached
// because contacts.resolveUsername is among the most flood-limited calls.
type Resolver struct {
	provider apiProvider
	cache    *gocache.Cache
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

// NewResolver creates a caching entity resolver
func NewResolver(provider apiProvider, logger zerolog.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		cache:    gocache.New(resolveCacheTTL, resolveCacheCleanup),
		limiter:  rate.NewLimiter(rate.Every(time.Minute/resolvesPerMinute), 5),
		logger:   logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve converts an entity reference into a typed input peer.
// Accepted forms:
//   - "me" or "self" for the authorized account
//   - "@username" or bare username for channels, supergroups and users
//   - a positive decimal number for a basic group id
func (r *Resolver) Resolve(ctx context.Context, ref string) (tg.InputPeerClass, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", domain.ErrInvalidEntityRef)
	}

	switch strings.ToLower(ref) {
	case "me", "self":
		return &tg.InputPeerSelf{}, nil
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if id <= 0 {
			return nil, fmt.Errorf("%w: non-positive chat id %d", domain.ErrInvalidEntityRef, id)
		}
		return &tg.InputPeerChat{ChatID: id}, nil
	}

	username := strings.TrimPrefix(ref, "@")
	if !validUsername(username) {
		return nil, fmt.Errorf("%w: malformed username %q", domain.ErrInvalidEntityRef, ref)
	}

	cacheKey := strings.ToLower(username)
	if cached, found := r.cache.Get(cacheKey); found {
		r.logger.Debug().Str("username", cacheKey).Msg("resolver cache hit")
		return cached.(tg.InputPeerClass), nil
	}

	peer, err := r.resolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey, peer, gocache.DefaultExpiration)
	return peer, nil
}

// resolveUsername performs the network resolution under the limiter
func (r *Resolver) resolveUsername(ctx context.Context, username string) (tg.InputPeerClass, error) {
	api, err := r.provider.API()
	if err != nil {
		return nil, err
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	resolved, err := api.ContactsResolveUsername(ctx, username)
	if err != nil {
		// USERNAME_NOT_OCCUPIED and USERNAME_INVALID both mean the
		// reference points at nothing reachable
		if strings.Contains(err.Error(), "USERNAME_NOT_OCCUPIED") || strings.Contains(err.Error(), "USERNAME_INVALID") {
			return nil, fmt.Errorf("%w: %s", domain.ErrEntityNotFound, username)
		}
		return nil, fmt.Errorf("contacts.resolveUsername failed: %w", err)
	}

	peer, err := inputPeerFromResolved(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntityNotFound, username)
	}

	r.logger.Debug().Str("username", username).Str("peer", peer.TypeName()).Msg("resolved entity")
	return peer, nil
}

// inputPeerFromResolved matches the resolved peer id against the entity
// lists to recover the access hash
func inputPeerFromResolved(resolved *tg.ContactsResolvedPeer) (tg.InputPeerClass, error) {
	switch peer := resolved.Peer.(type) {
	case *tg.PeerUser:
		for _, uc := range resolved.Users {
			if u, ok := uc.AsNotEmpty(); ok && u.ID == peer.UserID {
				return &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash}, nil
			}
		}
	case *tg.PeerChannel:
		for _, cc := range resolved.Chats {
			if ch, ok := cc.(*tg.Channel); ok && ch.ID == peer.ChannelID {
				return &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}, nil
			}
		}
	case *tg.PeerChat:
		return &tg.InputPeerChat{ChatID: peer.ChatID}, nil
	}
	return nil, fmt.Errorf("resolved peer missing from entity lists")
}

// validUsername checks the Telegram username shape: 4-32 word characters,
// must start with a letter
func validUsername(username string) bool {
	if len(username) < 4 || len(username) > 32 {
		return false
	}
	first := username[0]
	if !(first >= 'a' && first <= 'z') && !(first >= 'A' && first <= 'Z') {
		return false
	}
	for i := 0; i < len(username); i++ {
		c := username[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}

// Ensure Resolver implements domain.EntityResolver interface
var _ domain.EntityResolver = (*Resolver)(nil)
