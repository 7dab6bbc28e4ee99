// Command play runs a game against the bot in the terminal.
package main

import (
	"flag"
	"log/slog"
	"os"

	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"ctchen222/Tic-Tac-Toe-AI/internal/logger"

	"github.com/muesli/termenv"
)

func main() {
	difficulty := flag.String("difficulty", "hard", "bot difficulty: easy, medium or hard")
	flag.Parse()

	logger.Init(logger.Options{Output: os.Stderr, Level: slog.LevelWarn})

	d, err := bot.ParseDifficulty(*difficulty)
	if err != nil {
		slog.Error("invalid difficulty", "error", err)
		os.Exit(2)
	}

	s := newSession(termenv.NewOutput(os.Stdout), os.Stdin, bot.NewMoveCalculator(d, nil), game.DefaultSource)
	if err := s.run(); err != nil {
		slog.Error("game aborted", "error", err)
		os.Exit(1)
	}
}
