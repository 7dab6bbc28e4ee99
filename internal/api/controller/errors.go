package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"ctchen222/Tic-Tac-Toe-AI/internal/api/response"
	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"ctchen222/Tic-Tac-Toe-AI/internal/hub"
	"ctchen222/Tic-Tac-Toe-AI/internal/room"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, hub.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrOutOfBounds):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrInvalidSnapshot):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrCellOccupied),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, room.ErrNotYourTurn),
		errors.Is(err, room.ErrNotBotTurn),
		errors.Is(err, bot.ErrNoMoves):
		return http.StatusConflict
	case errors.Is(err, bot.ErrUnknownDifficulty):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "http.route", c.FullPath(), "error", err)
		span := trace.SpanFromContext(c.Request.Context())
		span.RecordError(err)
		span.SetStatus(codes.Error, "Request failed")
		response.ErrorResponse(c, code, http.StatusText(code))
		return
	}
	response.ErrorResponse(c, code, err.Error())
}
