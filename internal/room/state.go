package room

import (
	"ctchen222/Tic-Tac-Toe-AI/internal/events"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"ctchen222/Tic-Tac-Toe-AI/pkg/proto"
)

func (r *Room) stateLocked() proto.GameState {
	return stateOf(r.ID, string(r.difficulty), r.game.Snapshot(), r.lastBotMove)
}

func stateOf(id, difficulty string, s game.Snapshot, lastBotMove int) proto.GameState {
	st := proto.GameState{
		ID:          id,
		Board:       s.Board.String(),
		CurrentTurn: s.CurrentTurn,
		HumanMark:   HumanMark,
		IsOver:      s.IsOver,
		Outcome:     s.Outcome,
		WinningLine: events.LineIndices(s.WinningLine),
		Difficulty:  difficulty,
	}
	if lastBotMove >= 0 {
		idx := lastBotMove
		st.LastBotMove = &idx
	}
	return st
}
