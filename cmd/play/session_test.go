package main

import (
	"bytes"
	"strings"
	"testing"

	"ctchen222/Tic-Tac-Toe-AI/internal/game"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constSource int

func (s constSource) IntN(n int) int { return int(s) % n }

// firstEmpty plays the lowest free cell.
type firstEmpty struct{}

func (firstEmpty) CalculateNextMove(b game.Board, _ game.PlayerMark) (int, error) {
	return b.EmptyCells()[0], nil
}

func asciiOutput(buf *bytes.Buffer) *termenv.Output {
	return termenv.NewOutput(buf, termenv.WithProfile(termenv.Ascii))
}

func TestRender(t *testing.T) {
	b, err := game.ParseBoard("XO-------")
	require.NoError(t, err)

	var buf bytes.Buffer
	got := render(asciiOutput(&buf), b, nil)
	want := " X | O | 2 \n" +
		"---+---+---\n" +
		" 3 | 4 | 5 \n" +
		"---+---+---\n" +
		" 6 | 7 | 8 \n"
	assert.Equal(t, want, got)
}

func TestSessionHumanWins(t *testing.T) {
	var buf bytes.Buffer
	// X takes the left column while the bot fills cells from the top.
	in := strings.NewReader("0\nfoo\n0\n3\n6\n")
	s := newSession(asciiOutput(&buf), in, firstEmpty{}, constSource(0))

	require.NoError(t, s.run())
	out := buf.String()
	assert.Contains(t, out, "You start.")
	assert.Contains(t, out, "\"foo\" is not a cell number.")
	assert.Contains(t, out, "cell already occupied")
	assert.Contains(t, out, "You win!")
	assert.Equal(t, game.PlayerOneWins, s.game.Outcome())
}

func TestSessionQuit(t *testing.T) {
	var buf bytes.Buffer
	s := newSession(asciiOutput(&buf), strings.NewReader("q\n"), firstEmpty{}, constSource(1))

	require.NoError(t, s.run())
	assert.Contains(t, buf.String(), "The bot starts.")
	assert.Contains(t, buf.String(), "Bot plays 0.")
	assert.Contains(t, buf.String(), "Bye.")
	assert.False(t, s.game.IsOver())
}

func TestVerdict(t *testing.T) {
	assert.Equal(t, "You win!", verdict(game.PlayerOneWins))
	assert.Equal(t, "The bot wins.", verdict(game.PlayerTwoWins))
	assert.Equal(t, "It's a tie.", verdict(game.Tie))
}
