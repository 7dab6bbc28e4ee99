package bot

import (
	"errors"
	"fmt"

	"ctchen222/Tic-Tac-Toe-AI/internal/game"
)

// Difficulty selects how the bot picks its moves.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ParseDifficulty maps a name to a Difficulty. The empty string means Hard.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case Easy, Medium, Hard:
		return Difficulty(s), nil
	case "":
		return Hard, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownDifficulty, s)
}

// BotMoveCalculator implements game.MoveCalculator for a fixed difficulty.
type BotMoveCalculator struct {
	difficulty Difficulty
	src        game.Source
	searcher   *Searcher
}

// NewMoveCalculator creates a calculator. A nil src uses the default source.
func NewMoveCalculator(difficulty Difficulty, src game.Source) *BotMoveCalculator {
	if src == nil {
		src = game.DefaultSource
	}
	return &BotMoveCalculator{
		difficulty: difficulty,
		src:        src,
		searcher:   NewSearcher(src),
	}
}

// Difficulty returns the calculator's difficulty.
func (c *BotMoveCalculator) Difficulty() Difficulty {
	return c.difficulty
}

// CalculateNextMove determines the bot's next move based on its difficulty.
func (c *BotMoveCalculator) CalculateNextMove(board game.Board, mark game.PlayerMark) (int, error) {
	switch c.difficulty {
	case Easy:
		return easyMove(board, c.src)
	case Medium:
		return mediumMove(board, mark, c.src)
	default:
		return c.searcher.CalculateNextMove(board, mark)
	}
}

// easyMove makes a completely random move.
func easyMove(board game.Board, src game.Source) (int, error) {
	available := board.EmptyCells()
	if len(available) == 0 {
		return -1, ErrNoMoves
	}
	return available[src.IntN(len(available))], nil
}

// mediumMove will win if it can, block if it must, otherwise move randomly.
func mediumMove(board game.Board, mark game.PlayerMark, src game.Source) (int, error) {
	// 1. Win
	if index, ok := findWinningMove(board, mark); ok {
		return index, nil
	}

	// 2. Block
	if index, ok := findWinningMove(board, mark.Opponent()); ok {
		return index, nil
	}

	// 3. Random
	return easyMove(board, src)
}

// findWinningMove looks for a line holding two of mark's cells and one empty cell.
// Rows are checked first, then columns, then diagonals.
func findWinningMove(board game.Board, mark game.PlayerMark) (int, bool) {
	for _, line := range game.Lines {
		owned, empty := 0, -1
		for _, i := range line {
			switch board[i] {
			case mark:
				owned++
			case game.None:
				empty = i
			}
		}
		if owned == 2 && empty != -1 {
			return empty, true
		}
	}
	return -1, false
}
