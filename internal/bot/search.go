package bot

import (
	"errors"
	"math"

	"ctchen222/Tic-Tac-Toe-AI/internal/game"
)

var ErrNoMoves = errors.New("no moves available")

const winScore = 10

// Searcher runs a full-depth minimax search. Scores are from player two's (O's) point of view:
// O maximizes, X minimizes. Equal scores are broken by a coin flip from the source.
type Searcher struct {
	src game.Source
}

// NewSearcher returns a Searcher drawing randomness from src, or from the default source when nil.
func NewSearcher(src game.Source) *Searcher {
	if src == nil {
		src = game.DefaultSource
	}
	return &Searcher{src: src}
}

// CalculateNextMove implements game.MoveCalculator.
func (s *Searcher) CalculateNextMove(board game.Board, mark game.PlayerMark) (int, error) {
	index, _, err := s.BestMove(board, mark)
	return index, err
}

// BestMove returns the best cell for toMove and its score.
// On an empty board the search is skipped and a uniformly random cell is returned with score 0:
// every opening scores 0 under perfect play, so a fixed tie-break would always open the same way.
func (s *Searcher) BestMove(board game.Board, toMove game.PlayerMark) (index, score int, err error) {
	if !toMove.Valid() {
		return -1, 0, errors.New("invalid mark to move")
	}
	if board.IsEmpty() {
		return s.src.IntN(game.BoardSize), 0, nil
	}
	if board.IsFull() || hasWinner(board) {
		return -1, 0, ErrNoMoves
	}

	score, index = s.minimax(board, toMove, 0, -1)
	return index, score, nil
}

// minimax takes the board by value, so each ply works on its own copy and nothing needs undoing.
func (s *Searcher) minimax(board game.Board, mover game.PlayerMark, depth, last int) (score, move int) {
	if depth > 0 {
		switch game.Detect(board, last).Outcome {
		case game.PlayerTwoWins:
			return winScore - depth, -1
		case game.PlayerOneWins:
			return depth - winScore, -1
		case game.Tie:
			return 0, -1
		}
	}

	maximizing := mover == game.PlayerO
	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}
	move = -1

	for _, index := range board.EmptyCells() {
		next := board
		next[index] = mover
		got, _ := s.minimax(next, mover.Opponent(), depth+1, index)

		better := got < best
		if maximizing {
			better = got > best
		}
		if better || (got == best && s.coinFlip()) {
			best = got
			move = index
		}
	}

	return best, move
}

func (s *Searcher) coinFlip() bool {
	return s.src.IntN(2) == 0
}

func hasWinner(board game.Board) bool {
	for _, l := range game.Lines {
		if board[l[0]] != game.None && board[l[0]] == board[l[1]] && board[l[1]] == board[l[2]] {
			return true
		}
	}
	return false
}
