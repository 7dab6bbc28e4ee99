package game

import (
	"fmt"
	"strings"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

const (
	None    PlayerMark = ""
	PlayerX PlayerMark = "X" // player one, the human
	PlayerO PlayerMark = "O" // player two, the bot

	// BoardSize is the number of cells on the board.
	BoardSize = 9

	emptyChar = '-'
)

// Opponent returns the other player's mark. None has no opponent.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return None
}

// Valid reports whether m is one of the two player marks.
func (m PlayerMark) Valid() bool {
	return m == PlayerX || m == PlayerO
}

// Board is the 3x3 grid stored row-major.
type Board [BoardSize]PlayerMark

// Line is three cell indices forming a row, column or diagonal.
type Line [3]int

// Lines lists every winning line: rows, then columns, then diagonals.
var Lines = [8]Line{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// coords maps an index to its (column, row).
var coords = [BoardSize][2]int{
	{0, 0}, {1, 0}, {2, 0},
	{0, 1}, {1, 1}, {2, 1},
	{0, 2}, {1, 2}, {2, 2},
}

// Coords returns the column and row of index i.
func Coords(i int) (x, y int) {
	return coords[i][0], coords[i][1]
}

// Index is the inverse of Coords.
func Index(x, y int) int {
	return y*3 + x
}

// InBounds reports whether i is a valid cell index.
func InBounds(i int) bool {
	return i >= 0 && i < BoardSize
}

// IsCanonical reports whether l is one of the eight winning lines, in any order.
func (l Line) IsCanonical() bool {
	for _, c := range Lines {
		if sameCells(l, c) {
			return true
		}
	}
	return false
}

func sameCells(a, b Line) bool {
	for _, i := range a {
		found := false
		for _, j := range b {
			if i == j {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return a[0] != a[1] && a[1] != a[2] && a[0] != a[2]
}

// EmptyCells returns the indices of all empty cells in ascending order.
func (b Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, m := range b {
		if m == None {
			cells = append(cells, i)
		}
	}
	return cells
}

// IsEmpty reports whether no mark has been placed.
func (b Board) IsEmpty() bool {
	for _, m := range b {
		if m != None {
			return false
		}
	}
	return true
}

// IsFull reports whether every cell holds a mark.
func (b Board) IsFull() bool {
	for _, m := range b {
		if m == None {
			return false
		}
	}
	return true
}

// String encodes the board as nine characters, '-' for an empty cell.
func (b Board) String() string {
	var sb strings.Builder
	sb.Grow(BoardSize)
	for _, m := range b {
		if m == None {
			sb.WriteByte(emptyChar)
			continue
		}
		sb.WriteString(string(m))
	}
	return sb.String()
}

// ParseBoard decodes the nine-character form produced by Board.String.
func ParseBoard(s string) (Board, error) {
	var b Board
	if len(s) != BoardSize {
		return b, fmt.Errorf("board must have %d cells, got %d", BoardSize, len(s))
	}
	for i := range BoardSize {
		switch s[i] {
		case emptyChar:
			b[i] = None
		case 'X':
			b[i] = PlayerX
		case 'O':
			b[i] = PlayerO
		default:
			return b, fmt.Errorf("invalid cell %q at index %d", s[i], i)
		}
	}
	return b, nil
}
