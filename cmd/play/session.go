package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ctchen222/Tic-Tac-Toe-AI/internal/game"

	"github.com/muesli/termenv"
)

var errQuit = errors.New("quit")

// session plays one game: the human is X, the bot is O.
type session struct {
	out  *termenv.Output
	in   *bufio.Scanner
	calc game.MoveCalculator
	game *game.Game
	over *game.GameOver
}

func newSession(out *termenv.Output, in io.Reader, calc game.MoveCalculator, src game.Source) *session {
	s := &session{
		out:  out,
		in:   bufio.NewScanner(in),
		calc: calc,
	}
	s.game = game.NewGame(
		game.WithSource(src),
		game.WithGameOverHandler(func(e game.GameOver) { s.over = &e }),
	)
	return s
}

func (s *session) run() error {
	if s.game.CurrentTurn() == game.PlayerO {
		fmt.Fprintln(s.out, "The bot starts.")
	} else {
		fmt.Fprintln(s.out, "You start. You are X.")
	}

	for s.over == nil {
		fmt.Fprint(s.out, render(s.out, s.game.Board(), nil))
		if s.game.CurrentTurn() == game.PlayerO {
			index, err := s.game.PlayComputedMove(s.calc)
			if err != nil {
				return fmt.Errorf("bot failed to move: %w", err)
			}
			fmt.Fprintf(s.out, "Bot plays %d.\n", index)
			continue
		}

		index, err := s.prompt()
		if errors.Is(err, errQuit) {
			fmt.Fprintln(s.out, "Bye.")
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.game.MakeMove(index); err != nil {
			fmt.Fprintln(s.out, s.out.String(err.Error()).Foreground(s.out.Color("1")))
		}
	}

	fmt.Fprint(s.out, render(s.out, s.game.Board(), s.over.Line))
	fmt.Fprintln(s.out, s.out.String(verdict(s.over.Outcome)).Bold())
	return nil
}

func (s *session) prompt() (int, error) {
	for {
		fmt.Fprint(s.out, "Your move (0-8, q to quit): ")
		if !s.in.Scan() {
			if err := s.in.Err(); err != nil {
				return -1, err
			}
			return -1, errQuit
		}
		text := strings.TrimSpace(s.in.Text())
		if text == "q" {
			return -1, errQuit
		}
		index, err := strconv.Atoi(text)
		if err != nil {
			fmt.Fprintf(s.out, "%q is not a cell number.\n", text)
			continue
		}
		return index, nil
	}
}

func verdict(r game.GameResult) string {
	switch r {
	case game.PlayerOneWins:
		return "You win!"
	case game.PlayerTwoWins:
		return "The bot wins."
	}
	return "It's a tie."
}

// render draws the grid. Empty cells show their index; the winning line is highlighted.
func render(out *termenv.Output, b game.Board, line *game.Line) string {
	winning := make(map[int]bool, 3)
	if line != nil {
		for _, i := range line {
			winning[i] = true
		}
	}

	var sb strings.Builder
	for y := 0; y < 3; y++ {
		if y > 0 {
			sb.WriteString("---+---+---\n")
		}
		for x := 0; x < 3; x++ {
			if x > 0 {
				sb.WriteString("|")
			}
			i := game.Index(x, y)
			var cell termenv.Style
			switch b[i] {
			case game.PlayerX:
				cell = out.String("X").Foreground(out.Color("4"))
			case game.PlayerO:
				cell = out.String("O").Foreground(out.Color("3"))
			default:
				cell = out.String(strconv.Itoa(i)).Faint()
			}
			if winning[i] {
				cell = cell.Bold().Underline()
			}
			sb.WriteString(" " + cell.String() + " ")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
