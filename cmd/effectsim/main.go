package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/statuseffect/internal/attribute"
	"github.com/udisondev/statuseffect/internal/config"
	"github.com/udisondev/statuseffect/internal/db"
	"github.com/udisondev/statuseffect/internal/effect"
	"github.com/udisondev/statuseffect/internal/sim"
	"github.com/udisondev/statuseffect/internal/world"
)

const ConfigPath = "config/statuseffect.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("STATUSEFFECT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	sim.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("effect simulator starting", "config", cfgPath, "log_level", cfg.LogLevel)

	apps, err := cfg.Applications()
	if err != nil {
		return fmt.Errorf("resolving attribute scaling: %w", err)
	}

	registry := effect.NewRegistry()
	set, err := attribute.Install(registry, world.New(), apps)
	if err != nil {
		return fmt.Errorf("installing attributes: %w", err)
	}
	for _, info := range registry.Attributes() {
		slog.Info("attribute registered",
			"attribute", info.Name,
			"scaling", info.App.String(),
			"bindings", info.Bindings)
	}

	bus := effect.NewBus(effect.BusConfig{
		Workers:    cfg.Bus.Workers,
		DeferRetry: cfg.Bus.DeferRetry,
	})

	runner, err := sim.NewRunner(set, bus, cfg)
	if err != nil {
		return fmt.Errorf("preparing scenario: %w", err)
	}

	// Restored entities are adopted by Spawn under their scenario names.
	var persister *db.WorldPersistenceService
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		persister = db.NewWorldPersistenceService(database.Pool(), db.NewSnapshotRepository(database.Pool()))
		if _, err := persister.LoadWorld(ctx, runner); err != nil {
			return fmt.Errorf("loading world: %w", err)
		}
	}

	if err := runner.Spawn(cfg.Entities); err != nil {
		return fmt.Errorf("spawning entities: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := runner.Start(gctx); err != nil {
			return fmt.Errorf("scenario: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}

	for _, b := range set.Stats() {
		slog.Info("binding stats",
			"binding", b.Binding,
			"applied", b.Stats.Applied,
			"reapplied", b.Stats.Reapplied,
			"discarded", b.Stats.Discarded,
			"reinitialized", b.Stats.Reinitialized)
	}

	if persister != nil {
		// Save with a fresh context: shutdown may have canceled ctx.
		if err := persister.SaveWorld(context.WithoutCancel(ctx), runner); err != nil {
			return fmt.Errorf("saving world: %w", err)
		}
	}

	slog.Info("effect simulator stopped", "ticks", runner.Tick())
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
