package game

import (
	"testing"
)

func mustBoard(t *testing.T, s string) Board {
	t.Helper()
	b, err := ParseBoard(s)
	if err != nil {
		t.Fatalf("ParseBoard(%q) failed: %v", s, err)
	}
	return b
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		board    string
		index    int
		want     GameResult
		wantLine *Line
	}{
		{
			name:  "Centre move on otherwise empty board continues",
			board: "----X----",
			index: 4,
			want:  Continue,
		},
		{
			name:     "X wins - first row",
			board:    "XXXOO----",
			index:    2,
			want:     PlayerOneWins,
			wantLine: &Line{0, 1, 2},
		},
		{
			name:     "O wins - second column",
			board:    "XOXXO--O-",
			index:    7,
			want:     PlayerTwoWins,
			wantLine: &Line{1, 4, 7},
		},
		{
			name:     "X wins - main diagonal through centre",
			board:    "XO--XO--X",
			index:    4,
			want:     PlayerOneWins,
			wantLine: &Line{0, 4, 8},
		},
		{
			name:     "O wins - anti-diagonal from corner",
			board:    "XXO-O-OX-",
			index:    6,
			want:     PlayerTwoWins,
			wantLine: &Line{2, 4, 6},
		},
		{
			name:     "Column is reported before row",
			board:    "XXXXOOXO-",
			index:    0,
			want:     PlayerOneWins,
			wantLine: &Line{0, 3, 6},
		},
		{
			name:  "Line not through the played cell is ignored",
			board: "XXXOOX---",
			index: 5,
			want:  Continue,
		},
		{
			name:  "Side cell never checks diagonals",
			board: "XO-OXX--X",
			index: 5,
			want:  Continue,
		},
		{
			name:  "Full board without a line is a tie",
			board: "XOXXOOOXX",
			index: 8,
			want:  Tie,
		},
		{
			name:     "Winning last cell of a full board is a win, not a tie",
			board:    "XOXOXOOXX",
			index:    8,
			want:     PlayerOneWins,
			wantLine: &Line{0, 4, 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(mustBoard(t, tt.board), tt.index)
			if got.Outcome != tt.want {
				t.Errorf("Detect() outcome = %v, want %v", got.Outcome, tt.want)
			}
			switch {
			case tt.wantLine == nil && got.Line != nil:
				t.Errorf("Detect() line = %v, want none", *got.Line)
			case tt.wantLine != nil && got.Line == nil:
				t.Errorf("Detect() line = none, want %v", *tt.wantLine)
			case tt.wantLine != nil && *got.Line != *tt.wantLine:
				t.Errorf("Detect() line = %v, want %v", *got.Line, *tt.wantLine)
			}
		})
	}
}

func TestDetectEveryLine(t *testing.T) {
	for _, line := range Lines {
		for _, played := range line {
			var b Board
			for _, i := range line {
				b[i] = PlayerO
			}
			got := Detect(b, played)
			if got.Outcome != PlayerTwoWins || got.Line == nil {
				t.Fatalf("line %v played at %d: got %v", line, played, got.Outcome)
			}
			if !got.Line.IsCanonical() {
				t.Errorf("line %v played at %d: reported non-canonical line %v", line, played, *got.Line)
			}
			for _, i := range got.Line {
				if b[i] != PlayerO {
					t.Errorf("line %v played at %d: reported cell %d without O", line, played, i)
				}
			}
		}
	}
}
