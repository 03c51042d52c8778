package telegram

import (
	"context"
	"fmt"

	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Conte777/MemberFlow/internal/infrastructure/metrics"
	"github.com/Conte777/MemberFlow/internal/participants"
)

// requestsPerSecond caps outgoing RPC calls to stay under Telegram flood limits
const requestsPerSecond = 10

// apiProvider supplies the RPC client for the active connection
type apiProvider interface {
	API() (*tg.Client, error)
}

// RPCExecutor implements participants.Executor over a live MTProto
// connection. A request batch is issued sequentially under a shared rate
// limiter; MTProto offers no first-class container for batching
// independent queries, so sequencing under the limiter is the transport
// policy here.
type RPCExecutor struct {
	provider apiProvider
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewRPCExecutor creates an executor bound to client's connection lifecycle
func NewRPCExecutor(provider apiProvider, m *metrics.Metrics, logger zerolog.Logger) *RPCExecutor {
	return &RPCExecutor{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		metrics:  m,
		logger:   logger.With().Str("component", "rpc_executor").Logger(),
	}
}

// GetParticipants issues every request in the batch, preserving order.
// A channels.channelParticipantsNotModified response maps to a nil page,
// which callers treat as an exhausted query.
func (e *RPCExecutor) GetParticipants(ctx context.Context, reqs []*tg.ChannelsGetParticipantsRequest) ([]*tg.ChannelsChannelParticipants, error) {
	api, err := e.provider.API()
	if err != nil {
		return nil, err
	}

	pages := make([]*tg.ChannelsChannelParticipants, 0, len(reqs))
	for _, req := range reqs {
		if err := e.wait(ctx); err != nil {
			return nil, err
		}
		res, err := api.ChannelsGetParticipants(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("channels.getParticipants failed: %w", err)
		}
		page, ok := res.AsModified()
		if !ok {
			pages = append(pages, nil)
			continue
		}
		pages = append(pages, page)
	}

	if e.metrics != nil {
		e.metrics.RecordParticipantRequests(len(reqs))
	}
	e.logger.Debug().Int("requests", len(reqs)).Msg("participant batch completed")
	return pages, nil
}

// GetFullChannel fetches full channel metadata
func (e *RPCExecutor) GetFullChannel(ctx context.Context, channel *tg.InputChannel) (*tg.MessagesChatFull, error) {
	api, err := e.provider.API()
	if err != nil {
		return nil, err
	}
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	full, err := api.ChannelsGetFullChannel(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("channels.getFullChannel failed: %w", err)
	}
	return full, nil
}

// GetFullChat fetches full basic-group metadata
func (e *RPCExecutor) GetFullChat(ctx context.Context, chatID int64) (*tg.MessagesChatFull, error) {
	api, err := e.provider.API()
	if err != nil {
		return nil, err
	}
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	full, err := api.MessagesGetFullChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("messages.getFullChat failed: %w", err)
	}
	return full, nil
}

// GetUsers resolves full user records
func (e *RPCExecutor) GetUsers(ctx context.Context, ids []tg.InputUserClass) ([]tg.UserClass, error) {
	api, err := e.provider.API()
	if err != nil {
		return nil, err
	}
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	users, err := api.UsersGetUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("users.getUsers failed: %w", err)
	}
	return users, nil
}

// wait blocks until the rate limiter admits one request
func (e *RPCExecutor) wait(ctx context.Context) error {
	if e.limiter.Tokens() < 1 && e.metrics != nil {
		e.metrics.RecordRateLimitWait()
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}
	return nil
}

// Ensure RPCExecutor implements participants.Executor interface
var _ participants.Executor = (*RPCExecutor)(nil)
