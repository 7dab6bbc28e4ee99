package proto

import (
	"fmt"

	"ctchen222/Tic-Tac-Toe-AI/internal/game"
)

// Server message types.
const (
	TypeUpdate   = "update"
	TypeGameOver = "game_over"
)

// CreateGameRequest opens a room against the bot.
type CreateGameRequest struct {
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// MoveRequest is the human's move. Index is a pointer so that a missing field is not read as cell 0.
type MoveRequest struct {
	Index *int `json:"index" validate:"required,cell"`
}

// RestoreRequest carries the five values needed to rehydrate a game.
type RestoreRequest struct {
	Board       string          `json:"board" validate:"required,board"`
	CurrentTurn game.PlayerMark `json:"current_turn" validate:"required,mark"`
	IsOver      bool            `json:"is_over"`
	Outcome     game.GameResult `json:"outcome" validate:"required,oneof=continue tie x_wins o_wins"`
	WinningLine []int           `json:"winning_line" validate:"omitempty,len=3,dive,cell"`
}

// Snapshot converts the request into a game snapshot. Coherence is checked by game.Snapshot.Validate.
func (r RestoreRequest) Snapshot() (game.Snapshot, error) {
	board, err := game.ParseBoard(r.Board)
	if err != nil {
		return game.Snapshot{}, err
	}
	s := game.Snapshot{
		Board:       board,
		CurrentTurn: r.CurrentTurn,
		IsOver:      r.IsOver,
		Outcome:     r.Outcome,
	}
	switch len(r.WinningLine) {
	case 0:
	case 3:
		s.WinningLine = &game.Line{r.WinningLine[0], r.WinningLine[1], r.WinningLine[2]}
	default:
		return game.Snapshot{}, fmt.Errorf("%w: winning line needs 3 cells, got %d", game.ErrInvalidSnapshot, len(r.WinningLine))
	}
	return s, nil
}

// GameState is the public view of a room.
type GameState struct {
	ID          string          `json:"id"`
	Board       string          `json:"board"`
	CurrentTurn game.PlayerMark `json:"current_turn"`
	HumanMark   game.PlayerMark `json:"human_mark"`
	IsOver      bool            `json:"is_over"`
	Outcome     game.GameResult `json:"outcome"`
	WinningLine []int           `json:"winning_line"`
	LastBotMove *int            `json:"last_bot_move,omitempty"`
	Difficulty  string          `json:"difficulty"`
}

// CreateGameResponse is returned when a room is opened. Token authorizes moves in that room.
type CreateGameResponse struct {
	Token string    `json:"token"`
	State GameState `json:"state"`
}

// ServerMessage is pushed to websocket subscribers of a room.
type ServerMessage struct {
	Type  string    `json:"type" validate:"required"`
	State GameState `json:"state"`
}
