package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctchen222/Tic-Tac-Toe-AI/internal/api/controller"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/service"
	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"ctchen222/Tic-Tac-Toe-AI/internal/config"
	"ctchen222/Tic-Tac-Toe-AI/internal/db"
	"ctchen222/Tic-Tac-Toe-AI/internal/events"
	"ctchen222/Tic-Tac-Toe-AI/internal/hub"
	"ctchen222/Tic-Tac-Toe-AI/internal/logger"
	"ctchen222/Tic-Tac-Toe-AI/internal/repository"
	"ctchen222/Tic-Tac-Toe-AI/internal/server"
	"ctchen222/Tic-Tac-Toe-AI/internal/telemetry"
)

const janitorInterval = time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger.Init(logger.Options{Level: slog.LevelInfo, Otel: cfg.Telemetry.Enabled})

	// Initialize Redis
	rdb, err := db.NewRedisClient(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Fatalf("failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	// Initialize SQLite DB
	sqlDB, err := db.OpenSQLite(ctx, cfg.SQLite.Path)
	if err != nil {
		log.Fatalf("failed to initialize sqlite db: %v", err)
	}
	defer sqlDB.Close()

	// Create repositories
	snapshots := repository.NewSnapshotRepository(rdb, cfg.Redis.SnapshotTTL)
	results := repository.NewResultRepository(sqlDB)
	publisher := events.NewRedisPublisher(rdb)

	difficulty, err := bot.ParseDifficulty(cfg.Bot.DefaultDifficulty)
	if err != nil {
		log.Fatalf("invalid default difficulty: %v", err)
	}

	// Create hub
	h := hub.NewHub(snapshots, results, publisher, hub.Options{
		DefaultDifficulty: difficulty,
		AutoReply:         cfg.Bot.AutoReply,
	})
	go h.RunJanitor(ctx, cfg.Server.RoomIdleTimeout, janitorInterval)

	// Create services and controllers
	tokens := service.NewTokenService(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	gameController := controller.NewGameController(h, tokens, results)

	// Create the Gin-based server
	srv := server.NewServer(h, gameController, tokens)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "http.addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}
