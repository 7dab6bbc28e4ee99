package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"ctchen222/Tic-Tac-Toe-AI/internal/api/response"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/service"
	"ctchen222/Tic-Tac-Toe-AI/internal/hub"
	"ctchen222/Tic-Tac-Toe-AI/internal/repository"
	"ctchen222/Tic-Tac-Toe-AI/internal/room"
	"ctchen222/Tic-Tac-Toe-AI/internal/validator"
	"ctchen222/Tic-Tac-Toe-AI/pkg/proto"

	"github.com/gin-gonic/gin"
)

const (
	defaultRecent = 10
	maxRecent     = 100
)

// GameController handles the game HTTP endpoints.
type GameController struct {
	hub     *hub.Hub
	tokens  service.TokenService
	results repository.ResultRepository
}

// NewGameController creates a new GameController.
func NewGameController(h *hub.Hub, tokens service.TokenService, results repository.ResultRepository) *GameController {
	return &GameController{
		hub:     h,
		tokens:  tokens,
		results: results,
	}
}

// bind decodes the JSON body into req and validates it. An empty body is allowed when allowEmpty is set.
func bind(c *gin.Context, req any, allowEmpty bool) bool {
	if err := c.ShouldBindJSON(req); err != nil && !(allowEmpty && errors.Is(err, io.EOF)) {
		response.BadRequest(c, err)
		return false
	}
	if err := validator.GetValidator().Struct(req); err != nil {
		response.BadRequest(c, err)
		return false
	}
	return true
}

func (gc *GameController) room(c *gin.Context) (*room.Room, bool) {
	r, err := gc.hub.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return r, true
}

// Create opens a new room and returns its token and initial state.
func (gc *GameController) Create(c *gin.Context) {
	var req proto.CreateGameRequest
	if !bind(c, &req, true) {
		return
	}

	r, err := gc.hub.Create(c.Request.Context(), req.Difficulty)
	if err != nil {
		writeError(c, err)
		return
	}
	token, err := gc.tokens.Issue(r.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.CreatedResponse(c, proto.CreateGameResponse{Token: token, State: r.State()})
}

// Get returns the room's state.
func (gc *GameController) Get(c *gin.Context) {
	r, ok := gc.room(c)
	if !ok {
		return
	}
	response.SuccessResponse(c, r.State())
}

// Move plays the human's move, followed by the bot's reply when auto reply is on.
func (gc *GameController) Move(c *gin.Context) {
	var req proto.MoveRequest
	if !bind(c, &req, false) {
		return
	}
	r, ok := gc.room(c)
	if !ok {
		return
	}
	st, err := r.HandleMove(c.Request.Context(), *req.Index)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessResponse(c, st)
}

// BotMove asks the bot to play.
func (gc *GameController) BotMove(c *gin.Context) {
	r, ok := gc.room(c)
	if !ok {
		return
	}
	st, err := r.HandleBotMove(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessResponse(c, st)
}

// Restart starts a new game in the room.
func (gc *GameController) Restart(c *gin.Context) {
	r, ok := gc.room(c)
	if !ok {
		return
	}
	response.SuccessResponse(c, r.Restart(c.Request.Context()))
}

// Restore replaces the room's game with the snapshot in the body.
func (gc *GameController) Restore(c *gin.Context) {
	var req proto.RestoreRequest
	if !bind(c, &req, false) {
		return
	}
	snap, err := req.Snapshot()
	if err != nil {
		writeError(c, err)
		return
	}
	r, ok := gc.room(c)
	if !ok {
		return
	}
	st, err := r.Restore(c.Request.Context(), snap)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessResponse(c, st)
}

// Stats returns outcome counts and the most recent finished games.
func (gc *GameController) Stats(c *gin.Context) {
	limit := defaultRecent
	if raw := c.Query("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxRecent {
			response.ErrorResponse(c, http.StatusBadRequest, "recent must be between 0 and 100")
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	stats, err := gc.results.Stats(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	recent := []repository.GameRecord{}
	if limit > 0 {
		if recent, err = gc.results.Recent(ctx, limit); err != nil {
			writeError(c, err)
			return
		}
	}
	response.SuccessResponse(c, gin.H{"stats": stats, "recent": recent})
}
