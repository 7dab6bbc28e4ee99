package room

import (
	"context"
	"fmt"
	"log/slog"

	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/events"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"ctchen222/Tic-Tac-Toe-AI/internal/repository"
	"ctchen222/Tic-Tac-Toe-AI/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Rehydrate rebuilds a room from a stored snapshot.
func Rehydrate(id string, stored repository.StoredGame, opts Options) (*Room, error) {
	difficulty, err := bot.ParseDifficulty(stored.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to rehydrate room %s: %w", id, err)
	}
	r := NewRoom(id, difficulty, opts)
	if err := r.game.Restore(stored.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to rehydrate room %s: %w", id, err)
	}
	if !stored.UpdatedAt.IsZero() {
		r.lastActive = stored.UpdatedAt
	}
	return r, nil
}

// Save writes the current snapshot without notifying anyone.
func (r *Room) Save(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(ctx)
}

func (r *Room) saveLocked(ctx context.Context) error {
	if r.snapshots == nil {
		return nil
	}
	return r.snapshots.Save(ctx, r.ID, repository.StoredGame{
		Snapshot:   r.game.Snapshot(),
		Difficulty: string(r.difficulty),
		UpdatedAt:  r.lastActive,
	})
}

// commitLocked runs after every change to the game: it saves the snapshot, reports a finished
// game and pushes the new state to subscribers.
func (r *Room) commitLocked(ctx context.Context) {
	r.lastActive = r.now()
	if err := r.saveLocked(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to save snapshot", "room.id", r.ID, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}

	msgType := proto.TypeUpdate
	if r.finished != nil {
		over := *r.finished
		r.finished = nil
		r.finishLocked(ctx, over)
		msgType = proto.TypeGameOver
	}
	r.broadcast(ctx, proto.ServerMessage{Type: msgType, State: r.stateLocked()})
}

func (r *Room) finishLocked(ctx context.Context, over game.GameOver) {
	ctx, span := tracer.Start(ctx, "room.finish", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("game.outcome", string(over.Outcome)),
	))
	defer span.End()

	snap := r.game.Snapshot()
	slog.InfoContext(ctx, "game over", "room.id", r.ID, "game.outcome", over.Outcome, "game.board", snap.Board.String())
	recordFinished(ctx, r.difficulty, over.Outcome)

	if r.results != nil {
		rec := repository.NewGameRecord(r.ID, string(r.difficulty), snap, r.lastActive)
		if err := r.results.Record(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "failed to record result", "room.id", r.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to record result")
		}
	}

	r.publish(ctx, events.TypeGameOver, events.GameOverPayload{
		RoomID:      r.ID,
		Outcome:     over.Outcome,
		WinningLine: events.LineIndices(over.Line),
		Board:       snap.Board.String(),
	})
}

func (r *Room) publish(ctx context.Context, eventType string, payload any) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, eventType, payload); err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "room.id", r.ID, "event.type", eventType, "error", err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish "+eventType+" event")
	}
}
