package events

import (
	"encoding/json"
	"testing"

	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventGameOver(t *testing.T) {
	ev, err := NewEvent(TypeGameOver, GameOverPayload{
		RoomID:      "r1",
		Outcome:     game.PlayerTwoWins,
		WinningLine: LineIndices(&game.Line{2, 4, 6}),
		Board:       "XXO-O-O-X",
	})
	require.NoError(t, err)

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"game_over","payload":{"room_id":"r1","outcome":"o_wins","winning_line":[2,4,6],"board":"XXO-O-O-X"}}`, string(data))
}

func TestLineIndicesTie(t *testing.T) {
	assert.Nil(t, LineIndices(nil))

	ev, err := NewEvent(TypeGameOver, GameOverPayload{RoomID: "r1", Outcome: game.Tie, WinningLine: LineIndices(nil)})
	require.NoError(t, err)
	assert.Contains(t, string(ev.Payload), `"winning_line":null`)
}
