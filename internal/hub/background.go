package hub

import (
	"context"
	"log/slog"
	"time"

	"ctchen222/Tic-Tac-Toe-AI/internal/room"
)

// RunJanitor evicts rooms that have been idle for longer than idle and have no subscribers.
// Their snapshots stay in Redis so they can be rehydrated later. It returns when ctx is done.
func (h *Hub) RunJanitor(ctx context.Context, idle, interval time.Duration) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "room janitor started", "janitor.idle", idle, "janitor.interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "room janitor stopping")
			return
		case now := <-ticker.C:
			if n := h.evictIdle(now, idle); n > 0 {
				slog.InfoContext(ctx, "evicted idle rooms", "rooms.evicted", n, "rooms.remaining", h.Len())
			}
		}
	}
}

// evictIdle reads room state outside h.mu so a room busy with a move never stalls the hub.
func (h *Hub) evictIdle(now time.Time, idle time.Duration) int {
	h.mu.Lock()
	rooms := make(map[string]*room.Room, len(h.rooms))
	for id, r := range h.rooms {
		rooms[id] = r
	}
	h.mu.Unlock()

	var stale []string
	for id, r := range rooms {
		if r.Subscribers() == 0 && now.Sub(r.LastActive()) > idle {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	evicted := 0
	for _, id := range stale {
		// The room may have been replaced or removed since the scan.
		if h.rooms[id] == rooms[id] {
			delete(h.rooms, id)
			evicted++
		}
	}
	return evicted
}
