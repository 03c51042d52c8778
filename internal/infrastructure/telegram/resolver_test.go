package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"

	"github.com/Conte777/MemberFlow/internal/domain"
)

// disconnectedProvider always reports no connection
type disconnectedProvider struct{}

func (p *disconnectedProvider) API() (*tg.Client, error) {
	return nil, domain.ErrNotConnected
}

func TestResolver_ResolveSelf(t *testing.T) {
	r := NewResolver(&disconnectedProvider{}, zerolog.Nop())

	for _, ref := range []string{"me", "self", "ME", " self "} {
		peer, err := r.Resolve(context.Background(), ref)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", ref, err)
		}
		if _, ok := peer.(*tg.InputPeerSelf); !ok {
			t.Errorf("Resolve(%q): expected InputPeerSelf, got %T", ref, peer)
		}
	}
}

func TestResolver_ResolveNumericChat(t *testing.T) {
	r := NewResolver(&disconnectedProvider{}, zerolog.Nop())

	peer, err := r.Resolve(context.Background(), "12345")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	chat, ok := peer.(*tg.InputPeerChat)
	if !ok {
		t.Fatalf("Expected InputPeerChat, got %T", peer)
	}
	if chat.ChatID != 12345 {
		t.Errorf("Expected chat id 12345, got %d", chat.ChatID)
	}
}

func TestResolver_InvalidReferences(t *testing.T) {
	r := NewResolver(&disconnectedProvider{}, zerolog.Nop())

	tests := []struct {
		name string
		ref  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"negative id", "-100"},
		{"zero id", "0"},
		{"too short username", "@ab"},
		{"leading digit", "@1abc"},
		{"illegal characters", "@na me"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.ref)
			if !errors.Is(err, domain.ErrInvalidEntityRef) {
				t.Errorf("Resolve(%q): expected ErrInvalidEntityRef, got %v", tt.ref, err)
			}
		})
	}
}

func TestResolver_CacheHitSkipsNetwork(t *testing.T) {
	r := NewResolver(&disconnectedProvider{}, zerolog.Nop())

	cached := &tg.InputPeerChannel{ChannelID: 9, AccessHash: 1}
	r.cache.SetDefault("golang_news", cached)

	// Provider is disconnected, so success proves the cache served it
	peer, err := r.Resolve(context.Background(), "@Golang_News")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	got, ok := peer.(*tg.InputPeerChannel)
	if !ok || got != cached {
		t.Errorf("Expected cached peer, got %#v", peer)
	}
}

func TestResolver_UsernameRequiresConnection(t *testing.T) {
	r := NewResolver(&disconnectedProvider{}, zerolog.Nop())

	_, err := r.Resolve(context.Background(), "@golang_news")
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestInputPeerFromResolved(t *testing.T) {
	resolved := &tg.ContactsResolvedPeer{
		Peer: &tg.PeerChannel{ChannelID: 42},
		Chats: []tg.ChatClass{
			&tg.Channel{ID: 42, AccessHash: 777},
		},
	}

	peer, err := inputPeerFromResolved(resolved)
	if err != nil {
		t.Fatalf("inputPeerFromResolved failed: %v", err)
	}
	channel, ok := peer.(*tg.InputPeerChannel)
	if !ok {
		t.Fatalf("Expected InputPeerChannel, got %T", peer)
	}
	if channel.AccessHash != 777 {
		t.Errorf("Expected access hash 777, got %d", channel.AccessHash)
	}
}

func TestInputPeerFromResolved_MissingEntity(t *testing.T) {
	resolved := &tg.ContactsResolvedPeer{
		Peer: &tg.PeerUser{UserID: 7},
	}

	if _, err := inputPeerFromResolved(resolved); err == nil {
		t.Error("Expected error when entity list misses the peer")
	}
}
