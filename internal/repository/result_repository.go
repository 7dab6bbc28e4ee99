package repository

import (
	"context"
	"fmt"
	"time"

	"ctchen222/Tic-Tac-Toe-AI/internal/game"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// GameRecord is a finished game.
type GameRecord struct {
	ID          int64           `db:"id" json:"id"`
	RoomID      string          `db:"room_id" json:"room_id"`
	Difficulty  string          `db:"difficulty" json:"difficulty"`
	Outcome     game.GameResult `db:"outcome" json:"outcome"`
	WinningLine string          `db:"winning_line" json:"winning_line"`
	Board       string          `db:"board" json:"board"`
	FinishedAt  time.Time       `db:"finished_at" json:"finished_at"`
}

// NewGameRecord builds a record from a finished game's snapshot.
func NewGameRecord(roomID, difficulty string, s game.Snapshot, finishedAt time.Time) GameRecord {
	return GameRecord{
		RoomID:      roomID,
		Difficulty:  difficulty,
		Outcome:     s.Outcome,
		WinningLine: encodeLine(s.WinningLine),
		Board:       s.Board.String(),
		FinishedAt:  finishedAt.UTC(),
	}
}

// Stats counts finished games per outcome.
type Stats struct {
	Total         int `json:"total"`
	Ties          int `json:"ties"`
	PlayerOneWins int `json:"x_wins"`
	PlayerTwoWins int `json:"o_wins"`
}

// ResultRepository keeps the history of finished games.
type ResultRepository interface {
	Record(ctx context.Context, rec GameRecord) error
	Stats(ctx context.Context) (Stats, error)
	Recent(ctx context.Context, limit int) ([]GameRecord, error)
}

type sqliteResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a SQLite-based ResultRepository.
func NewResultRepository(db *sqlx.DB) ResultRepository {
	return &sqliteResultRepository{db: db}
}

func (r *sqliteResultRepository) Record(ctx context.Context, rec GameRecord) error {
	ctx, span := tracer.Start(ctx, "ResultRepository.Record", trace.WithAttributes(
		attribute.String("room.id", rec.RoomID),
		attribute.String("game.outcome", string(rec.Outcome)),
	))
	defer span.End()

	query := `INSERT INTO game_results (room_id, difficulty, outcome, winning_line, board, finished_at)
		VALUES (:room_id, :difficulty, :outcome, :winning_line, :board, :finished_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to record game result: %w", err)
	}
	return nil
}

func (r *sqliteResultRepository) Stats(ctx context.Context) (Stats, error) {
	ctx, span := tracer.Start(ctx, "ResultRepository.Stats")
	defer span.End()

	var rows []struct {
		Outcome game.GameResult `db:"outcome"`
		Count   int             `db:"n"`
	}
	query := `SELECT outcome, COUNT(*) AS n FROM game_results GROUP BY outcome`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		span.RecordError(err)
		return Stats{}, fmt.Errorf("failed to count game results: %w", err)
	}

	var s Stats
	for _, row := range rows {
		s.Total += row.Count
		switch row.Outcome {
		case game.Tie:
			s.Ties = row.Count
		case game.PlayerOneWins:
			s.PlayerOneWins = row.Count
		case game.PlayerTwoWins:
			s.PlayerTwoWins = row.Count
		}
	}
	return s, nil
}

func (r *sqliteResultRepository) Recent(ctx context.Context, limit int) ([]GameRecord, error) {
	ctx, span := tracer.Start(ctx, "ResultRepository.Recent")
	defer span.End()

	records := []GameRecord{}
	query := `SELECT id, room_id, difficulty, outcome, winning_line, board, finished_at
		FROM game_results ORDER BY finished_at DESC, id DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list game results: %w", err)
	}
	return records, nil
}
