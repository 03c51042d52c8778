package participants

import (
	"context"

	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"
)

// Service is the enumeration entry point: a lazy Iter and an eager List
// over the same engine. Safe for concurrent use; every call starts an
// independent enumeration.
type Service struct {
	exec Executor
	log  zerolog.Logger
}

// NewService creates a participant enumeration service
func NewService(exec Executor, log zerolog.Logger) *Service {
	return &Service{exec: exec, log: log}
}

// Iter starts a lazy enumeration of the participants of peer
func (s *Service) Iter(peer tg.InputPeerClass, opts Options) *Iterator {
	return NewIterator(s.exec, s.log, peer, opts)
}

// List enumerates eagerly and returns members in yield order together with
// the server-reported total participant count.
func (s *Service) List(ctx context.Context, peer tg.InputPeerClass, opts Options) (*MemberList, error) {
	opts.FetchTotal = true
	return Collect(ctx, s.Iter(peer, opts))
}

// Collect drains an iterator into an ordered MemberList. Errors surface
// from the iterator untouched. When the iterator never learned a total
// (lazy channel enumeration without FetchTotal), the number of collected
// members stands in for it.
func Collect(ctx context.Context, it *Iterator) (*MemberList, error) {
	list := &MemberList{Members: []Member{}}
	for it.Next(ctx) {
		list.Members = append(list.Members, it.Value())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	if total, ok := it.Total(); ok {
		list.Total = total
	} else {
		list.Total = len(list.Members)
	}
	return list, nil
}
