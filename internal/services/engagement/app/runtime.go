package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"strings"

	platformgrpc "github.com/raidroom/engagebot/internal/platform/grpc"
)

const (
	defaultHealthAddr = ":8090"
	// RuntimeHealthService reports SERVING while the bot is receiving updates.
	RuntimeHealthService = "engagement.runtime"
)

// RuntimeConfig controls engagement bot startup and its collaborators.
type RuntimeConfig struct {
	Engine     Config
	HealthAddr string
	Transport  Transport
	Feed       ClickFeed
	Logger     *slog.Logger
}

// Run starts the health server and the trigger clock, then serves platform
// updates until ctx ends.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Transport == nil {
		return errors.New("transport is required")
	}
	if cfg.Feed == nil {
		return errors.New("click feed is required")
	}
	if strings.TrimSpace(cfg.HealthAddr) == "" {
		cfg.HealthAddr = defaultHealthAddr
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	engine, err := NewEngine(cfg.Engine, cfg.Transport, cfg.Feed, WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	listener, err := net.Listen("tcp", cfg.HealthAddr)
	if err != nil {
		return fmt.Errorf("listen on health address %s: %w", cfg.HealthAddr, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	healthServer := platformgrpc.NewHealthServer()
	healthServer.SetServing("", true)
	healthServer.SetServing(RuntimeHealthService, false)
	healthErr := make(chan error, 1)
	go func() {
		healthErr <- healthServer.Serve(ctx, listener)
	}()
	log.Printf("engagement health server listening at %v", listener.Addr())

	scheduler := NewScheduler(engine, logger)
	if err := scheduler.Start(ctx); err != nil {
		cancel()
		<-healthErr
		return fmt.Errorf("start scheduler: %w", err)
	}

	session := engine.Session()
	logger.InfoContext(ctx, "engagement bot started",
		slog.Int("session", session.Number),
		slog.Bool("auto_sessions", engine.AutoSessions()),
		slog.Int("triggers", len(cfg.Engine.Schedule.Triggers())),
	)

	healthServer.SetServing(RuntimeHealthService, true)
	serveErr := cfg.Transport.Serve(ctx, engine)
	healthServer.SetServing(RuntimeHealthService, false)

	scheduler.Stop()
	cancel()
	if err := <-healthErr; err != nil {
		log.Printf("health server: %v", err)
	}
	if serveErr != nil {
		return fmt.Errorf("serve updates: %w", serveErr)
	}
	return nil
}
