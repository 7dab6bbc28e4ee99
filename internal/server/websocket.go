package server

import (
	"log/slog"
	"time"

	"ctchen222/Tic-Tac-Toe-AI/internal/api/controller"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/response"
	"ctchen222/Tic-Tac-Toe-AI/pkg/proto"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	heartbeatInterval = 10 * time.Second
	writeWait         = 5 * time.Second
	pongWait          = 2 * heartbeatInterval
)

// handleWebSocket streams the room's state: the current state first, then every update and the
// game over message. Nothing is read from the client except control frames.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("room.id", c.Param("id")),
	))
	defer span.End()

	r, err := s.hub.Get(ctx, c.Param("id"))
	if err != nil {
		response.ErrorResponse(c, controller.StatusFor(err), err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "failed to upgrade connection", "room.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}
	defer conn.Close()

	ch, unsubscribe := r.Subscribe(ctx)
	defer unsubscribe()

	// The read loop only exists to process pongs and notice the client going away.
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(msg proto.ServerMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg)
	}
	if err := write(proto.ServerMessage{Type: proto.TypeUpdate, State: r.State()}); err != nil {
		span.RecordError(err)
		return
	}

	ping := time.NewTicker(heartbeatInterval)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			slog.InfoContext(ctx, "websocket closed by client", "room.id", r.ID)
			return
		case msg, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "subscription ended"),
					time.Now().Add(writeWait))
				return
			}
			if err := write(msg); err != nil {
				slog.WarnContext(ctx, "failed to write to websocket", "room.id", r.ID, "error", err)
				span.RecordError(err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				slog.WarnContext(ctx, "failed to send ping, assuming disconnect", "room.id", r.ID, "error", err)
				return
			}
		}
	}
}
