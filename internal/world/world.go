package world

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// World tracks live entities and the attribute stores attached to them.
// Not a singleton: the host creates one World per simulation.
//
// Lock order: World.mu before any Store.mu.
type World struct {
	mu     sync.RWMutex
	alive  map[uint32]struct{}
	stores []entityRemover
	ids    *ObjectIDGenerator
}

// entityRemover is implemented by every Store for uniform cleanup.
type entityRemover interface {
	removeEntity(objectID uint32)
}

// New creates an empty world.
func New() *World {
	return &World{
		alive: make(map[uint32]struct{}),
		ids:   NewObjectIDGenerator(),
	}
}

// CreateEntity reserves a new entity ID of the given kind.
func (w *World) CreateEntity(kind Kind) uint32 {
	id := w.ids.Next(kind)

	w.mu.Lock()
	w.alive[id] = struct{}{}
	w.mu.Unlock()

	slog.Debug("entity created", "objectID", id)
	return id
}

// AddEntity registers an entity with a known ID (restored from storage).
// Returns error if the ID is zero or already alive.
func (w *World) AddEntity(objectID uint32) error {
	if objectID == 0 {
		return fmt.Errorf("invalid object ID 0")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.alive[objectID]; ok {
		return fmt.Errorf("entity %d already exists", objectID)
	}
	w.alive[objectID] = struct{}{}
	w.ids.Observe(objectID)
	return nil
}

// DestroyEntity removes the entity and all its attributes.
// Returns false if the entity did not exist.
func (w *World) DestroyEntity(objectID uint32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.alive[objectID]; !ok {
		return false
	}
	delete(w.alive, objectID)
	for _, s := range w.stores {
		s.removeEntity(objectID)
	}

	slog.Debug("entity destroyed", "objectID", objectID)
	return true
}

// Exists reports whether the entity is alive.
func (w *World) Exists(objectID uint32) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.alive[objectID]
	return ok
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.alive)
}

// Entities returns all live entity IDs in ascending order.
func (w *World) Entities() []uint32 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make([]uint32, 0, len(w.alive))
	for id := range w.alive {
		result = append(result, id)
	}
	slices.Sort(result)
	return result
}

// StoreCount returns the number of attribute stores attached to the world.
func (w *World) StoreCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.stores)
}

func (w *World) register(s entityRemover) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stores = append(w.stores, s)
}
