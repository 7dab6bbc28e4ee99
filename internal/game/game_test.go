package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource returns its values in order, repeating the last one.
type fixedSource struct {
	values []int
	calls  int
}

func (s *fixedSource) IntN(n int) int {
	v := s.values[len(s.values)-1]
	if s.calls < len(s.values) {
		v = s.values[s.calls]
	}
	s.calls++
	return v % n
}

func newGameStartingWith(t *testing.T, first PlayerMark, opts ...Option) *Game {
	t.Helper()
	v := 0
	if first == PlayerO {
		v = 1
	}
	g := NewGame(append([]Option{WithSource(&fixedSource{values: []int{v}})}, opts...)...)
	require.Equal(t, first, g.CurrentTurn())
	return g
}

func playMoves(t *testing.T, g *Game, moves ...int) {
	t.Helper()
	for i, m := range moves {
		if err := g.MakeMove(m); err != nil {
			t.Fatalf("move %d (%d) failed: %v", i, m, err)
		}
	}
}

type calculatorFunc func(Board, PlayerMark) (int, error)

func (f calculatorFunc) CalculateNextMove(b Board, m PlayerMark) (int, error) { return f(b, m) }

func TestNewGameInitialState(t *testing.T) {
	g := NewGame()
	assert.True(t, g.Board().IsEmpty())
	assert.False(t, g.IsOver())
	assert.Equal(t, Continue, g.Outcome())
	assert.Nil(t, g.WinningLine())
	assert.True(t, g.CurrentTurn().Valid())

	_, err := g.NextBotMove()
	assert.ErrorIs(t, err, ErrNoMove)
}

func TestRandomlyChooseFirstPlayer(t *testing.T) {
	seenX, seenO := false, false
	for i := 0; i < 100; i++ {
		switch NewGame().CurrentTurn() {
		case PlayerX:
			seenX = true
		case PlayerO:
			seenO = true
		default:
			t.Fatal("starting player is not X or O")
		}
	}
	if !seenX || !seenO {
		t.Errorf("starting player did not vary over 100 games. Seen X: %v, Seen O: %v", seenX, seenO)
	}
}

func TestMakeMoveCentre(t *testing.T) {
	g := newGameStartingWith(t, PlayerX)
	require.NoError(t, g.MakeMove(4))

	assert.Equal(t, PlayerX, g.Board()[4])
	assert.Equal(t, PlayerO, g.CurrentTurn())
	assert.Equal(t, Continue, g.Outcome())
	assert.False(t, g.IsOver())
	assert.Nil(t, g.WinningLine())
}

func TestTurnAlternation(t *testing.T) {
	for _, first := range []PlayerMark{PlayerX, PlayerO} {
		g := newGameStartingWith(t, first)
		for n, idx := range []int{0, 1, 2, 4, 3, 5, 7} {
			require.NoError(t, g.MakeMove(idx))
			want := first
			if (n+1)%2 == 1 {
				want = first.Opponent()
			}
			assert.Equal(t, want, g.CurrentTurn(), "after %d moves", n+1)
		}
	}
}

func TestMakeMoveRejectsMisuse(t *testing.T) {
	g := newGameStartingWith(t, PlayerX)
	playMoves(t, g, 0)
	before := g.Snapshot()

	for _, idx := range []int{-1, 9, 42} {
		err := g.MakeMove(idx)
		assert.ErrorIs(t, err, ErrOutOfBounds, "index %d", idx)
	}
	assert.ErrorIs(t, g.MakeMove(0), ErrCellOccupied)
	assert.Equal(t, before, g.Snapshot(), "rejected moves must not change state")

	playMoves(t, g, 3, 1, 4, 2)
	require.True(t, g.IsOver())
	over := g.Snapshot()
	assert.ErrorIs(t, g.MakeMove(8), ErrGameOver)
	assert.Equal(t, over, g.Snapshot())
}

func TestMakeMoveWithoutPlayerToMove(t *testing.T) {
	g := newGameStartingWith(t, PlayerX)
	g.SetCurrentTurn(None)

	err := g.MakeMove(0)
	assert.ErrorIs(t, err, ErrNoTurn)
	assert.Equal(t, None, g.Board()[0], "board is untouched")
	assert.Equal(t, None, g.CurrentTurn())
}

func TestGameOverNotification(t *testing.T) {
	var events []GameOver
	g := newGameStartingWith(t, PlayerX, WithGameOverHandler(func(e GameOver) {
		events = append(events, e)
	}))

	// X: 0 1 2, O: 3 4
	playMoves(t, g, 0, 3, 1, 4, 2)

	require.Len(t, events, 1)
	assert.Equal(t, PlayerOneWins, events[0].Outcome)
	require.NotNil(t, events[0].Line)
	assert.Equal(t, Line{0, 1, 2}, *events[0].Line)

	assert.True(t, g.IsOver())
	assert.Equal(t, PlayerOneWins, g.Outcome())
	assert.Equal(t, &Line{0, 1, 2}, g.WinningLine())

	_ = g.MakeMove(8)
	assert.Len(t, events, 1, "notification fires once per game")
}

func TestTieHasNoLine(t *testing.T) {
	var got *GameOver
	g := newGameStartingWith(t, PlayerX, WithGameOverHandler(func(e GameOver) { got = &e }))

	// Ends as XOX / XOO / OXX.
	playMoves(t, g, 0, 1, 2, 4, 3, 5, 7, 6, 8)

	require.NotNil(t, got)
	assert.Equal(t, Tie, got.Outcome)
	assert.Nil(t, got.Line)
	assert.Equal(t, Tie, g.Outcome())
	assert.Nil(t, g.WinningLine())
	assert.True(t, g.Board().IsFull())
}

func TestRestart(t *testing.T) {
	src := &fixedSource{values: []int{0, 1}}
	g := NewGame(WithSource(src))
	require.Equal(t, PlayerX, g.CurrentTurn())
	playMoves(t, g, 0, 3, 1, 4, 2)
	require.True(t, g.IsOver())

	g.Restart()
	assert.True(t, g.Board().IsEmpty())
	assert.False(t, g.IsOver())
	assert.Equal(t, Continue, g.Outcome())
	assert.Nil(t, g.WinningLine())
	assert.Equal(t, PlayerO, g.CurrentTurn(), "starting player is re-rolled")
	assert.NoError(t, g.MakeMove(0))
}

func TestComputeMove(t *testing.T) {
	g := newGameStartingWith(t, PlayerO)
	var gotMark PlayerMark
	calc := calculatorFunc(func(b Board, m PlayerMark) (int, error) {
		gotMark = m
		return 6, nil
	})

	idx, err := g.ComputeMove(calc)
	require.NoError(t, err)
	assert.Equal(t, 6, idx)
	assert.Equal(t, PlayerO, gotMark)
	assert.True(t, g.Board().IsEmpty(), "ComputeMove does not apply the move")

	pending, err := g.NextBotMove()
	require.NoError(t, err)
	assert.Equal(t, 6, pending)

	idx, err = g.PlayComputedMove(calc)
	require.NoError(t, err)
	assert.Equal(t, 6, idx)
	assert.Equal(t, PlayerO, g.Board()[6])
	_, err = g.NextBotMove()
	assert.ErrorIs(t, err, ErrNoMove)
}

func TestComputeMoveErrors(t *testing.T) {
	g := newGameStartingWith(t, PlayerX)
	boom := errors.New("boom")
	_, err := g.PlayComputedMove(calculatorFunc(func(Board, PlayerMark) (int, error) { return -1, boom }))
	assert.ErrorIs(t, err, boom)

	playMoves(t, g, 0, 3, 1, 4, 2)
	_, err = g.ComputeMove(calculatorFunc(func(Board, PlayerMark) (int, error) { return 8, nil }))
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestGameString(t *testing.T) {
	g := newGameStartingWith(t, PlayerX)
	playMoves(t, g, 0, 4)
	assert.Equal(t, "Game{turn=X, outcome=continue, grid= | X-- | -O- | ---}", g.String())
}
