package room

import (
	"context"
	"log/slog"
	"sync"

	"ctchen222/Tic-Tac-Toe-AI/pkg/proto"
)

const subscriberBuffer = 8

type subscriber struct {
	ch        chan proto.ServerMessage
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Subscribe registers for state updates. The channel is closed when ctx ends, when unsubscribe is
// called, or when the subscriber falls too far behind.
func (r *Room) Subscribe(ctx context.Context) (<-chan proto.ServerMessage, func()) {
	sub := &subscriber{ch: make(chan proto.ServerMessage, subscriberBuffer)}

	r.subsMu.Lock()
	r.subs[sub] = struct{}{}
	r.subsMu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			r.subsMu.Lock()
			delete(r.subs, sub)
			r.subsMu.Unlock()
			sub.close()
		})
	}
	stop := context.AfterFunc(ctx, unsubscribe)
	return sub.ch, func() {
		stop()
		unsubscribe()
	}
}

// Subscribers returns the number of live subscriptions.
func (r *Room) Subscribers() int {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	return len(r.subs)
}

// broadcast never blocks: a subscriber whose buffer is full is dropped.
func (r *Room) broadcast(ctx context.Context, msg proto.ServerMessage) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	for sub := range r.subs {
		select {
		case sub.ch <- msg:
		default:
			slog.WarnContext(ctx, "dropping slow subscriber", "room.id", r.ID)
			delete(r.subs, sub)
			sub.close()
		}
	}
}
