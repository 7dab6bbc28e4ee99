package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/events"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"ctchen222/Tic-Tac-Toe-AI/internal/repository"
	"ctchen222/Tic-Tac-Toe-AI/internal/room"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hub")

var ErrRoomNotFound = errors.New("room not found")

// Options configures the rooms a hub creates.
type Options struct {
	DefaultDifficulty bot.Difficulty
	AutoReply         bool
	// Source overrides the randomness of every room. Leave nil outside tests.
	Source game.Source
}

// Hub keeps the rooms served by this process. Rooms evicted from memory are rehydrated from
// the snapshot repository on the next lookup.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*room.Room

	snapshots repository.SnapshotRepository
	results   repository.ResultRepository
	publisher events.Publisher
	opts      Options
}

// NewHub creates a new hub.
func NewHub(snapshots repository.SnapshotRepository, results repository.ResultRepository, publisher events.Publisher, opts Options) *Hub {
	if opts.DefaultDifficulty == "" {
		opts.DefaultDifficulty = bot.Hard
	}
	return &Hub{
		rooms:     make(map[string]*room.Room),
		snapshots: snapshots,
		results:   results,
		publisher: publisher,
		opts:      opts,
	}
}

func (h *Hub) roomOptions() room.Options {
	return room.Options{
		Snapshots: h.snapshots,
		Results:   h.results,
		Publisher: h.publisher,
		Source:    h.opts.Source,
		AutoReply: h.opts.AutoReply,
	}
}

// Create opens a room against a bot of the given difficulty. An empty difficulty uses the default.
func (h *Hub) Create(ctx context.Context, difficulty string) (*room.Room, error) {
	ctx, span := tracer.Start(ctx, "hub.Create", trace.WithAttributes(
		attribute.String("bot.difficulty", difficulty),
	))
	defer span.End()

	d := h.opts.DefaultDifficulty
	if difficulty != "" {
		var err error
		if d, err = bot.ParseDifficulty(difficulty); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Unknown difficulty")
			return nil, err
		}
	}

	id := uuid.New().String()
	span.SetAttributes(attribute.String("room.id", id))
	r := room.NewRoom(id, d, h.roomOptions())
	if err := r.Save(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save new room")
		return nil, fmt.Errorf("failed to save room %s: %w", id, err)
	}

	h.mu.Lock()
	h.rooms[id] = r
	h.mu.Unlock()

	slog.InfoContext(ctx, "room created", "room.id", id, "bot.difficulty", d, "game.current_turn", r.State().CurrentTurn)
	return r, nil
}

// Get returns the room with id, loading it from the snapshot repository when it is not in memory.
func (h *Hub) Get(ctx context.Context, id string) (*room.Room, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}

	h.mu.Lock()
	r, ok := h.rooms[id]
	h.mu.Unlock()
	if ok {
		return r, nil
	}

	ctx, span := tracer.Start(ctx, "hub.rehydrate", trace.WithAttributes(
		attribute.String("room.id", id),
	))
	defer span.End()

	if h.snapshots == nil {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	stored, err := h.snapshots.Load(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load snapshot")
		return nil, err
	}
	loaded, err := room.Rehydrate(id, *stored, h.roomOptions())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to rehydrate room")
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[id]; ok {
		return r, nil
	}
	h.rooms[id] = loaded
	slog.InfoContext(ctx, "room rehydrated", "room.id", id)
	return loaded, nil
}

// Remove drops the room from memory and deletes its snapshot.
func (h *Hub) Remove(ctx context.Context, id string) error {
	h.mu.Lock()
	delete(h.rooms, id)
	h.mu.Unlock()

	if h.snapshots == nil {
		return nil
	}
	if err := h.snapshots.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", id, err)
	}
	return nil
}

// Len returns the number of rooms held in memory.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}
