package game

import (
	"errors"
	"fmt"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot holds the five values needed to rehydrate a game.
type Snapshot struct {
	Board       Board
	CurrentTurn PlayerMark
	IsOver      bool
	Outcome     GameResult
	WinningLine *Line
}

// Snapshot captures the current state.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Board:       g.board,
		CurrentTurn: g.currentTurn,
		IsOver:      g.isOver,
		Outcome:     g.outcome,
		WinningLine: g.WinningLine(),
	}
}

// Restore replaces the game's state with s. Detection is not run and no notification fires.
// The pending bot move is discarded.
func (g *Game) Restore(s Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	g.SetBoard(s.Board)
	g.SetCurrentTurn(s.CurrentTurn)
	g.SetOver(s.IsOver)
	g.SetOutcome(s.Outcome)
	g.SetWinningLine(s.WinningLine)
	g.nextBotMove = -1
	return nil
}

// Validate checks that the snapshot is internally coherent.
func (s Snapshot) Validate() error {
	for i, m := range s.Board {
		if m != None && !m.Valid() {
			return fmt.Errorf("%w: mark %q at index %d", ErrInvalidSnapshot, m, i)
		}
	}
	if !s.CurrentTurn.Valid() {
		return fmt.Errorf("%w: current turn %q", ErrInvalidSnapshot, s.CurrentTurn)
	}
	if !s.Outcome.Valid() {
		return fmt.Errorf("%w: outcome %q", ErrInvalidSnapshot, s.Outcome)
	}
	if s.Outcome.Terminal() != s.IsOver {
		return fmt.Errorf("%w: outcome %s with over=%t", ErrInvalidSnapshot, s.Outcome, s.IsOver)
	}

	winner := s.Outcome.Winner()
	switch {
	case winner == None && s.WinningLine != nil:
		return fmt.Errorf("%w: winning line without a winner", ErrInvalidSnapshot)
	case winner != None && s.WinningLine == nil:
		return fmt.Errorf("%w: %s without a winning line", ErrInvalidSnapshot, s.Outcome)
	case winner != None:
		l := *s.WinningLine
		for _, i := range l {
			if !InBounds(i) {
				return fmt.Errorf("%w: line index %d", ErrInvalidSnapshot, i)
			}
		}
		if !l.IsCanonical() {
			return fmt.Errorf("%w: %v is not a winning line", ErrInvalidSnapshot, l)
		}
		if !matches(s.Board, l, winner) {
			return fmt.Errorf("%w: line %v not held by %s", ErrInvalidSnapshot, l, winner)
		}
	}
	for _, l := range Lines {
		for _, p := range []PlayerMark{PlayerX, PlayerO} {
			if p != winner && matches(s.Board, l, p) {
				return fmt.Errorf("%w: %s holds line %v but the outcome is %s", ErrInvalidSnapshot, p, l, s.Outcome)
			}
		}
	}
	if s.Outcome == Tie && !s.Board.IsFull() {
		return fmt.Errorf("%w: tie on a board with empty cells", ErrInvalidSnapshot)
	}
	if s.Outcome == Continue && s.Board.IsFull() {
		return fmt.Errorf("%w: game continues on a full board", ErrInvalidSnapshot)
	}
	return s.validateCounts()
}

// validateCounts checks that the marks could have been played alternately, ending with CurrentTurn to move.
func (s Snapshot) validateCounts() error {
	var x, o int
	for _, m := range s.Board {
		switch m {
		case PlayerX:
			x++
		case PlayerO:
			o++
		}
	}
	switch {
	case x == o:
	case x == o+1 && s.CurrentTurn == PlayerO:
	case o == x+1 && s.CurrentTurn == PlayerX:
	default:
		return fmt.Errorf("%w: %d X and %d O with %s to move", ErrInvalidSnapshot, x, o, s.CurrentTurn)
	}
	return nil
}
