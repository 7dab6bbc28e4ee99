package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const resultSchema = `
CREATE TABLE IF NOT EXISTS game_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	outcome TEXT NOT NULL,
	winning_line TEXT NOT NULL DEFAULT '',
	board TEXT NOT NULL,
	finished_at TIMESTAMP NOT NULL
);`

const resultIndex = `CREATE INDEX IF NOT EXISTS idx_game_results_finished_at ON game_results (finished_at);`

// OpenSQLite opens the SQLite database at path and makes sure the schema exists.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	pool.SetMaxOpenConns(1)

	if err := InitializeDB(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	slog.InfoContext(ctx, "SQLite connection initialized and schema verified.", "db.path", path)
	return pool, nil
}

// InitializeDB creates the tables used by the results repository.
func InitializeDB(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, resultSchema); err != nil {
		return fmt.Errorf("failed to create game_results table: %w", err)
	}
	if _, err := db.ExecContext(ctx, resultIndex); err != nil {
		return fmt.Errorf("failed to create game_results index: %w", err)
	}
	return nil
}
