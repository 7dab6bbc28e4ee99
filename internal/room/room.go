package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/events"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"ctchen222/Tic-Tac-Toe-AI/internal/repository"
	"ctchen222/Tic-Tac-Toe-AI/pkg/proto"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// The human always plays X and the bot always plays O.
const (
	HumanMark = game.PlayerX
	BotMark   = game.PlayerO
)

var (
	ErrNotYourTurn = errors.New("not the human's turn")
	ErrNotBotTurn  = errors.New("not the bot's turn")
)

var tracer = otel.Tracer("room")

// Options holds a room's collaborators. Nil repositories and publisher are skipped.
type Options struct {
	Snapshots repository.SnapshotRepository
	Results   repository.ResultRepository
	Publisher events.Publisher
	Source    game.Source
	AutoReply bool
	Now       func() time.Time
}

// Room is one human-vs-bot game. All operations are serialized by mu.
type Room struct {
	ID string

	mu          sync.Mutex
	game        *game.Game
	calc        game.MoveCalculator
	difficulty  bot.Difficulty
	autoReply   bool
	lastBotMove int
	finished    *game.GameOver
	lastActive  time.Time

	snapshots repository.SnapshotRepository
	results   repository.ResultRepository
	publisher events.Publisher
	now       func() time.Time

	subsMu sync.Mutex
	subs   map[*subscriber]struct{}
}

// NewRoom creates a room with a fresh game.
func NewRoom(id string, difficulty bot.Difficulty, opts Options) *Room {
	if opts.Source == nil {
		opts.Source = game.DefaultSource
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &Room{
		ID:          id,
		calc:        bot.NewMoveCalculator(difficulty, opts.Source),
		difficulty:  difficulty,
		autoReply:   opts.AutoReply,
		lastBotMove: -1,
		snapshots:   opts.Snapshots,
		results:     opts.Results,
		publisher:   opts.Publisher,
		now:         opts.Now,
		subs:        make(map[*subscriber]struct{}),
	}
	r.game = game.NewGame(
		game.WithSource(opts.Source),
		game.WithGameOverHandler(func(e game.GameOver) { r.finished = &e }),
	)
	r.lastActive = r.now()
	return r
}

// Difficulty returns the bot's difficulty.
func (r *Room) Difficulty() bot.Difficulty {
	return r.difficulty
}

// LastActive returns the time of the last operation that changed the game.
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

// State returns the current public view of the game.
func (r *Room) State() proto.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

// HandleMove plays the human's mark at index. With auto reply on, the bot answers in the same call.
func (r *Room) HandleMove(ctx context.Context, index int) (proto.GameState, error) {
	ctx, span := tracer.Start(ctx, "room.HandleMove", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.Int("move.index", index),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.game.IsOver() && r.game.CurrentTurn() != HumanMark {
		span.SetStatus(codes.Error, "Move out of turn")
		return r.stateLocked(), ErrNotYourTurn
	}
	if err := r.game.MakeMove(index); err != nil {
		slog.WarnContext(ctx, "rejected move", "room.id", r.ID, "move.index", index, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		return r.stateLocked(), err
	}
	span.SetAttributes(attribute.Bool("move.valid", true))
	r.lastBotMove = -1

	if r.autoReply && !r.game.IsOver() && r.game.CurrentTurn() == BotMark {
		if err := r.playBotLocked(ctx); err != nil {
			r.commitLocked(ctx)
			return r.stateLocked(), err
		}
	}
	r.commitLocked(ctx)
	return r.stateLocked(), nil
}

// HandleBotMove computes the bot's move and applies it. It is used when the bot has the first move
// or when auto reply is off.
func (r *Room) HandleBotMove(ctx context.Context) (proto.GameState, error) {
	ctx, span := tracer.Start(ctx, "room.HandleBotMove", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.game.IsOver() {
		return r.stateLocked(), game.ErrGameOver
	}
	if r.game.CurrentTurn() != BotMark {
		span.SetStatus(codes.Error, "Bot move out of turn")
		return r.stateLocked(), ErrNotBotTurn
	}
	if err := r.playBotLocked(ctx); err != nil {
		return r.stateLocked(), err
	}
	r.commitLocked(ctx)
	return r.stateLocked(), nil
}

// Restart starts a new game in the same room.
func (r *Room) Restart(ctx context.Context) proto.GameState {
	ctx, span := tracer.Start(ctx, "room.Restart", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.game.Restart()
	r.lastBotMove = -1
	r.finished = nil
	slog.InfoContext(ctx, "game restarted", "room.id", r.ID, "game.current_turn", r.game.CurrentTurn())

	r.publish(ctx, events.TypeGameRestarted, events.GameRestartedPayload{
		RoomID:      r.ID,
		CurrentTurn: r.game.CurrentTurn(),
	})
	r.commitLocked(ctx)
	return r.stateLocked()
}

// Restore replaces the game with a saved snapshot. Detection does not run and no game over is reported.
func (r *Room) Restore(ctx context.Context, s game.Snapshot) (proto.GameState, error) {
	ctx, span := tracer.Start(ctx, "room.Restore", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("game.board", s.Board.String()),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.game.Restore(s); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid snapshot")
		return r.stateLocked(), err
	}
	r.lastBotMove = -1
	r.finished = nil
	r.commitLocked(ctx)
	return r.stateLocked(), nil
}

func (r *Room) playBotLocked(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "room.playBot", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("bot.difficulty", string(r.difficulty)),
	))
	defer span.End()

	start := time.Now()
	index, err := r.game.PlayComputedMove(r.calc)
	recordSearch(ctx, r.difficulty, time.Since(start))
	if err != nil {
		slog.ErrorContext(ctx, "bot could not move", "room.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bot could not move")
		return err
	}
	span.SetAttributes(attribute.Int("move.index", index))
	r.lastBotMove = index
	return nil
}
