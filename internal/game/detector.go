package game

// GameResult is the status of a game after a detection check.
type GameResult string

const (
	Continue      GameResult = "continue"
	Tie           GameResult = "tie"
	PlayerOneWins GameResult = "x_wins"
	PlayerTwoWins GameResult = "o_wins"
)

// Valid reports whether r is a known result.
func (r GameResult) Valid() bool {
	switch r {
	case Continue, Tie, PlayerOneWins, PlayerTwoWins:
		return true
	}
	return false
}

// Terminal reports whether r ends the game.
func (r GameResult) Terminal() bool {
	return r == Tie || r == PlayerOneWins || r == PlayerTwoWins
}

// Winner returns the winning mark, or None for a tie or a running game.
func (r GameResult) Winner() PlayerMark {
	switch r {
	case PlayerOneWins:
		return PlayerX
	case PlayerTwoWins:
		return PlayerO
	}
	return None
}

// WinFor returns the winning result for mark.
func WinFor(mark PlayerMark) GameResult {
	if mark == PlayerX {
		return PlayerOneWins
	}
	return PlayerTwoWins
}

// Result is the outcome of a detection check. Line is nil unless there is a winner.
type Result struct {
	Outcome GameResult
	Line    *Line
}

var (
	diagonal     = Line{0, 4, 8}
	antiDiagonal = Line{2, 4, 6}
)

// Detect checks only the lines passing through newIndex, the most recently played cell.
// Column first, then row, then the diagonals the cell lies on.
func Detect(b Board, newIndex int) Result {
	player := b[newIndex]
	if player != None {
		if line, ok := detectLine(b, newIndex, player); ok {
			return Result{Outcome: WinFor(player), Line: &line}
		}
	}

	if b.IsFull() {
		return Result{Outcome: Tie}
	}
	return Result{Outcome: Continue}
}

func detectLine(b Board, newIndex int, player PlayerMark) (Line, bool) {
	x, y := Coords(newIndex)

	column := Line{Index(x, 0), Index(x, 1), Index(x, 2)}
	if matches(b, column, player) {
		return column, true
	}

	row := Line{Index(0, y), Index(1, y), Index(2, y)}
	if matches(b, row, player) {
		return row, true
	}

	if newIndex == 0 || newIndex == 4 || newIndex == 8 {
		if matches(b, diagonal, player) {
			return diagonal, true
		}
	}
	if newIndex == 2 || newIndex == 4 || newIndex == 6 {
		if matches(b, antiDiagonal, player) {
			return antiDiagonal, true
		}
	}

	return Line{}, false
}

func matches(b Board, l Line, player PlayerMark) bool {
	return b[l[0]] == player && b[l[1]] == player && b[l[2]] == player
}
