package validator

import (
	"ctchen222/Tic-Tac-Toe-AI/internal/game"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// board: nine cells encoded as X, O or '-'.
	_ = validate.RegisterValidation("board", func(fl validator.FieldLevel) bool {
		_, err := game.ParseBoard(fl.Field().String())
		return err == nil
	})
	// mark: a player mark, X or O.
	_ = validate.RegisterValidation("mark", func(fl validator.FieldLevel) bool {
		return game.PlayerMark(fl.Field().String()).Valid()
	})
	// cell: an index on the board.
	_ = validate.RegisterValidation("cell", func(fl validator.FieldLevel) bool {
		return game.InBounds(int(fl.Field().Int()))
	})
}

// GetValidator returns the shared validator, with the board tags registered.
func GetValidator() *validator.Validate {
	return validate
}
