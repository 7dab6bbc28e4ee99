package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ctchen222/Tic-Tac-Toe-AI/internal/game"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository")

var ErrNotFound = errors.New("game not found")

// Redis hash fields of a room.
const (
	FieldBoard       = "board"
	FieldNextTurn    = "next_turn"
	FieldIsOver      = "is_over"
	FieldOutcome     = "outcome"
	FieldWinningLine = "winning_line"
	FieldDifficulty  = "difficulty"
	FieldUpdatedAt   = "updated_at"
)

// StoredGame is what gets saved for a room: the game snapshot and the bot difficulty.
type StoredGame struct {
	Snapshot   game.Snapshot
	Difficulty string
	UpdatedAt  time.Time
}

//go:generate mockgen -destination=../mocks/mock_repository.go -package=mocks ctchen222/Tic-Tac-Toe-AI/internal/repository SnapshotRepository,ResultRepository

// SnapshotRepository saves and loads game snapshots by room id.
type SnapshotRepository interface {
	Save(ctx context.Context, roomID string, g StoredGame) error
	Load(ctx context.Context, roomID string) (*StoredGame, error)
	Delete(ctx context.Context, roomID string) error
}

type redisSnapshotRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotRepository creates a Redis-backed SnapshotRepository. Keys expire after ttl of
// inactivity; zero keeps them forever.
func NewSnapshotRepository(rdb *redis.Client, ttl time.Duration) SnapshotRepository {
	return &redisSnapshotRepository{rdb: rdb, ttl: ttl}
}

func roomKey(roomID string) string {
	return fmt.Sprintf("room:%s", roomID)
}

// Save writes every field of the snapshot in one transaction.
func (r *redisSnapshotRepository) Save(ctx context.Context, roomID string, g StoredGame) error {
	ctx, span := tracer.Start(ctx, "SnapshotRepository.Save", trace.WithAttributes(
		attribute.String("room.id", roomID),
	))
	defer span.End()

	updatedAt := g.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	key := roomKey(roomID)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			FieldBoard, g.Snapshot.Board.String(),
			FieldNextTurn, string(g.Snapshot.CurrentTurn),
			FieldIsOver, strconv.FormatBool(g.Snapshot.IsOver),
			FieldOutcome, string(g.Snapshot.Outcome),
			FieldWinningLine, encodeLine(g.Snapshot.WinningLine),
			FieldDifficulty, g.Difficulty,
			FieldUpdatedAt, updatedAt.UTC().Format(time.RFC3339Nano),
		)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save game in redis: %w", err)
	}
	return nil
}

// Load reads a snapshot back. It returns ErrNotFound when the room has no saved state.
func (r *redisSnapshotRepository) Load(ctx context.Context, roomID string) (*StoredGame, error) {
	ctx, span := tracer.Start(ctx, "SnapshotRepository.Load", trace.WithAttributes(
		attribute.String("room.id", roomID),
	))
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, roomKey(roomID)).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get game state from redis: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return decodeStoredGame(data)
}

func (r *redisSnapshotRepository) Delete(ctx context.Context, roomID string) error {
	ctx, span := tracer.Start(ctx, "SnapshotRepository.Delete", trace.WithAttributes(
		attribute.String("room.id", roomID),
	))
	defer span.End()

	if err := r.rdb.Del(ctx, roomKey(roomID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete game from redis: %w", err)
	}
	return nil
}

func decodeStoredGame(data map[string]string) (*StoredGame, error) {
	board, err := game.ParseBoard(data[FieldBoard])
	if err != nil {
		return nil, fmt.Errorf("failed to decode board: %w", err)
	}
	isOver, err := strconv.ParseBool(data[FieldIsOver])
	if err != nil {
		return nil, fmt.Errorf("failed to decode is_over: %w", err)
	}
	line, err := decodeLine(data[FieldWinningLine])
	if err != nil {
		return nil, err
	}
	var updatedAt time.Time
	if v := data[FieldUpdatedAt]; v != "" {
		if updatedAt, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return nil, fmt.Errorf("failed to decode updated_at: %w", err)
		}
	}

	return &StoredGame{
		Snapshot: game.Snapshot{
			Board:       board,
			CurrentTurn: game.PlayerMark(data[FieldNextTurn]),
			IsOver:      isOver,
			Outcome:     game.GameResult(data[FieldOutcome]),
			WinningLine: line,
		},
		Difficulty: data[FieldDifficulty],
		UpdatedAt:  updatedAt,
	}, nil
}

// encodeLine writes a line as "0,4,8"; an absent line is the empty string.
func encodeLine(l *game.Line) string {
	if l == nil {
		return ""
	}
	return fmt.Sprintf("%d,%d,%d", l[0], l[1], l[2])
}

func decodeLine(s string) (*game.Line, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("failed to decode winning line %q", s)
	}
	var l game.Line
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("failed to decode winning line %q: %w", s, err)
		}
		l[i] = n
	}
	return &l, nil
}
