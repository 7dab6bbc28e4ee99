package events

import (
	"context"
	"encoding/json"
	"fmt"

	"ctchen222/Tic-Tac-Toe-AI/internal/game"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Event types
const (
	TypeGameOver      = "game_over"
	TypeGameRestarted = "game_restarted"
)

var tracer = otel.Tracer("events")

// Event represents a global message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// GameOverPayload is the payload for the "game_over" event.
type GameOverPayload struct {
	RoomID      string          `json:"room_id"`
	Outcome     game.GameResult `json:"outcome"`
	WinningLine []int           `json:"winning_line"`
	Board       string          `json:"board"`
}

// GameRestartedPayload is the payload for the "game_restarted" event.
type GameRestartedPayload struct {
	RoomID      string          `json:"room_id"`
	CurrentTurn game.PlayerMark `json:"current_turn"`
}

//go:generate mockgen -destination=../mocks/mock_events.go -package=mocks ctchen222/Tic-Tac-Toe-AI/internal/events Publisher

// Publisher delivers events to other processes.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// NewEvent wraps payload in an Event envelope.
func NewEvent(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: raw}, nil
}

type redisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher publishes events on EventsChannel.
func NewRedisPublisher(rdb *redis.Client) Publisher {
	return &redisPublisher{rdb: rdb, channel: EventsChannel}
}

func (p *redisPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	ctx, span := tracer.Start(ctx, "Publisher.Publish", trace.WithAttributes(
		attribute.String("event.type", eventType),
		attribute.String("event.channel", p.channel),
	))
	defer span.End()

	event, err := NewEvent(eventType, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// LineIndices converts a winning line to the wire form: nil when absent.
func LineIndices(l *game.Line) []int {
	if l == nil {
		return nil
	}
	return []int{l[0], l[1], l[2]}
}
