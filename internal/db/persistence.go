package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/statuseffect/internal/attribute"
)

// Snapshotter captures a world as snapshots (*attribute.Set, *sim.Runner).
type Snapshotter interface {
	Snapshot() []attribute.Snapshot
}

// Restorer rebuilds a world from snapshots (*attribute.Set, *sim.Runner).
type Restorer interface {
	Restore(snaps []attribute.Snapshot) error
}

// WorldPersistenceService saves and restores the attributes of a whole world.
type WorldPersistenceService struct {
	pool         *pgxpool.Pool
	snapshotRepo *SnapshotRepository
}

// NewWorldPersistenceService creates a new service.
func NewWorldPersistenceService(pool *pgxpool.Pool, snapshotRepo *SnapshotRepository) *WorldPersistenceService {
	return &WorldPersistenceService{
		pool:         pool,
		snapshotRepo: snapshotRepo,
	}
}

// SaveWorld saves every live entity of src in a single transaction.
// Either the whole world is saved or none of it.
func (s *WorldPersistenceService) SaveWorld(ctx context.Context, src Snapshotter) error {
	snaps := src.Snapshot()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for world save: %w", err)
	}
	defer func() {
		if err := rollback(ctx, tx); err != nil {
			slog.Error("rollback failed", "error", err)
		}
	}()

	if err := s.snapshotRepo.SaveTx(ctx, tx, snaps); err != nil {
		return fmt.Errorf("saving world: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for world save: %w", err)
	}

	slog.Info("world saved", "entities", len(snaps))
	return nil
}

// LoadWorld restores stored entities into dst.
// Returns the number of restored entities.
func (s *WorldPersistenceService) LoadWorld(ctx context.Context, dst Restorer) (int, error) {
	snaps, err := s.snapshotRepo.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading world: %w", err)
	}
	if err := dst.Restore(snaps); err != nil {
		return 0, fmt.Errorf("restoring world: %w", err)
	}

	slog.Info("world loaded", "entities", len(snaps))
	return len(snaps), nil
}
