package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

var (
	ErrOutOfBounds  = errors.New("cell index out of bounds")
	ErrCellOccupied = errors.New("cell already occupied")
	ErrGameOver     = errors.New("game already finished")
	ErrNoMove       = errors.New("no move computed")
	ErrNoTurn       = errors.New("no player to move")
)

// Source supplies randomness for the starting player, the opening move and search tie-breaks.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource draws from the math/rand/v2 global generator.
var DefaultSource Source = globalSource{}

// MoveCalculator picks a cell for the side to move. Implementations must not modify the board.
type MoveCalculator interface {
	CalculateNextMove(board Board, mark PlayerMark) (int, error)
}

// GameOver is delivered once per game when a move ends it.
type GameOver struct {
	Outcome GameResult
	Line    *Line // nil on a tie
}

// Game tracks one game between two players. It is not safe for concurrent use.
type Game struct {
	board       Board
	currentTurn PlayerMark
	isOver      bool
	outcome     GameResult
	winningLine *Line
	nextBotMove int

	src        Source
	onGameOver func(GameOver)
}

// Option configures a Game.
type Option func(*Game)

// WithSource sets the randomness used to choose the starting player.
func WithSource(src Source) Option {
	return func(g *Game) {
		if src != nil {
			g.src = src
		}
	}
}

// WithGameOverHandler registers the single observer notified when the game ends.
func WithGameOverHandler(fn func(GameOver)) Option {
	return func(g *Game) {
		g.onGameOver = fn
	}
}

func NewGame(opts ...Option) *Game {
	g := &Game{
		src:         DefaultSource,
		outcome:     Continue,
		nextBotMove: -1,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.currentTurn = randomlyChooseFirstPlayer(g.src)
	return g
}

// MakeMove places the current player's mark at index and checks whether that move ended the game.
func (g *Game) MakeMove(index int) error {
	if g.isOver {
		return ErrGameOver
	}
	if !InBounds(index) {
		return fmt.Errorf("%w: %d", ErrOutOfBounds, index)
	}
	if g.board[index] != None {
		return fmt.Errorf("%w: %d", ErrCellOccupied, index)
	}
	if !g.currentTurn.Valid() {
		return fmt.Errorf("%w: current turn %q", ErrNoTurn, g.currentTurn)
	}

	g.board[index] = g.currentTurn
	g.currentTurn = g.currentTurn.Opponent()
	g.nextBotMove = -1

	res := Detect(g.board, index)
	g.outcome = res.Outcome
	g.winningLine = res.Line
	if res.Outcome.Terminal() {
		g.endGame()
	}
	return nil
}

func (g *Game) endGame() {
	g.isOver = true
	if g.onGameOver != nil {
		g.onGameOver(GameOver{Outcome: g.outcome, Line: g.WinningLine()})
	}
}

// ComputeMove asks calc for the current player's move and stores it as the pending bot move
// without applying it.
func (g *Game) ComputeMove(calc MoveCalculator) (int, error) {
	if g.isOver {
		return -1, ErrGameOver
	}
	index, err := calc.CalculateNextMove(g.board, g.currentTurn)
	if err != nil {
		return -1, err
	}
	g.nextBotMove = index
	return index, nil
}

// PlayComputedMove computes the current player's move with calc and applies it.
func (g *Game) PlayComputedMove(calc MoveCalculator) (int, error) {
	index, err := g.ComputeMove(calc)
	if err != nil {
		return -1, err
	}
	if err := g.MakeMove(index); err != nil {
		return -1, err
	}
	return index, nil
}

// Restart clears the board and terminal state and re-rolls the starting player.
func (g *Game) Restart() {
	g.board = Board{}
	g.isOver = false
	g.outcome = Continue
	g.winningLine = nil
	g.nextBotMove = -1
	g.currentTurn = randomlyChooseFirstPlayer(g.src)
}

func (g *Game) Board() Board {
	return g.board
}

func (g *Game) CurrentTurn() PlayerMark {
	return g.currentTurn
}

func (g *Game) IsOver() bool {
	return g.isOver
}

func (g *Game) Outcome() GameResult {
	return g.outcome
}

// WinningLine returns a copy of the winning line, or nil when nobody has won.
func (g *Game) WinningLine() *Line {
	if g.winningLine == nil {
		return nil
	}
	l := *g.winningLine
	return &l
}

// NextBotMove returns the index chosen by the last ComputeMove, or -1 once it has been played.
func (g *Game) NextBotMove() (int, error) {
	if g.nextBotMove < 0 {
		return -1, ErrNoMove
	}
	return g.nextBotMove, nil
}

// The setters below restore previously saved state. They never run detection.

func (g *Game) SetBoard(b Board) {
	g.board = b
}

func (g *Game) SetCurrentTurn(mark PlayerMark) {
	g.currentTurn = mark
}

func (g *Game) SetOver(over bool) {
	g.isOver = over
}

func (g *Game) SetOutcome(r GameResult) {
	g.outcome = r
}

func (g *Game) SetWinningLine(l *Line) {
	if l == nil {
		g.winningLine = nil
		return
	}
	cp := *l
	g.winningLine = &cp
}

// String renders the grid the way it reads in logs: " | XO- | -X- | --O".
func (g *Game) String() string {
	enc := g.board.String()
	var sb strings.Builder
	for i := 0; i < BoardSize; i += 3 {
		sb.WriteString(" | ")
		sb.WriteString(enc[i : i+3])
	}
	return fmt.Sprintf("Game{turn=%s, outcome=%s, grid=%s}", g.currentTurn, g.outcome, sb.String())
}

func randomlyChooseFirstPlayer(src Source) PlayerMark {
	if src.IntN(2) == 0 {
		return PlayerX
	}
	return PlayerO
}
