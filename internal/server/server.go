package server

import (
	"net/http"
	"strings"

	"ctchen222/Tic-Tac-Toe-AI/internal/api/controller"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/response"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/service"
	"ctchen222/Tic-Tac-Toe-AI/internal/hub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	hub      *hub.Hub
	games    *controller.GameController
	tokens   service.TokenService
	upgrader websocket.Upgrader
	engine   *gin.Engine
}

func NewServer(h *hub.Hub, games *controller.GameController, tokens service.TokenService) *Server {
	s := &Server{
		hub:    h,
		games:  games,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.engine = s.routes()
	return s
}

// Engine returns the HTTP handler.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), traceRequests())

	r.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/stats", s.games.Stats)
	api.POST("/games", s.games.Create)

	games := api.Group("/games/:id")
	games.GET("", s.games.Get)
	games.GET("/ws", s.handleWebSocket)

	authed := games.Group("", s.requireRoomToken())
	authed.POST("/moves", s.games.Move)
	authed.POST("/bot-move", s.games.BotMove)
	authed.POST("/restart", s.games.Restart)
	authed.PUT("/state", s.games.Restore)

	return r
}

// traceRequests starts a server span for every request.
func traceRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.Start(c.Request.Context(), "server."+c.Request.Method+" "+route, trace.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if id := c.Param("id"); id != "" {
			span.SetAttributes(attribute.String("room.id", id))
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// requireRoomToken only lets through requests carrying a bearer token issued for the room in the path.
func (s *Server) requireRoomToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "missing room token")
			return
		}
		roomID, err := s.tokens.Verify(token)
		if err != nil {
			trace.SpanFromContext(c.Request.Context()).RecordError(err)
			response.AbortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}
		if roomID != c.Param("id") {
			response.AbortWithError(c, http.StatusForbidden, "token was issued for another room")
			return
		}
		c.Next()
	}
}
