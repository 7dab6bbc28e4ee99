package room

import (
	"context"
	"time"

	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("room")

var (
	gamesFinished  metric.Int64Counter
	searchDuration metric.Float64Histogram
)

func init() {
	var err error
	gamesFinished, err = meter.Int64Counter("tictactoe.games.finished",
		metric.WithDescription("Games that reached a terminal outcome."),
		metric.WithUnit("{game}"),
	)
	if err != nil {
		otel.Handle(err)
	}
	searchDuration, err = meter.Float64Histogram("tictactoe.bot.move.duration",
		metric.WithDescription("Time the bot spent choosing a move."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		otel.Handle(err)
	}
}

func recordFinished(ctx context.Context, d bot.Difficulty, outcome game.GameResult) {
	gamesFinished.Add(ctx, 1, metric.WithAttributes(
		attribute.String("bot.difficulty", string(d)),
		attribute.String("game.outcome", string(outcome)),
	))
}

func recordSearch(ctx context.Context, d bot.Difficulty, elapsed time.Duration) {
	searchDuration.Record(ctx, float64(elapsed)/float64(time.Millisecond), metric.WithAttributes(
		attribute.String("bot.difficulty", string(d)),
	))
}
