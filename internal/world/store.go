package world

import (
	"fmt"
	"slices"
	"sync"
)

// Store is a generic container for one attribute type A.
// Attributes are stored by pointer so Modify can mutate them in place.
//
// Implements effect.Storage[A].
type Store[A any] struct {
	world *World

	mu       sync.RWMutex
	attrs    map[uint32]*A
	entities []uint32 // entities that have this attribute, insertion order
}

// NewStore creates a store for A and registers it with w for entity cleanup.
func NewStore[A any](w *World) *Store[A] {
	s := &Store[A]{
		world:    w,
		attrs:    make(map[uint32]*A),
		entities: make([]uint32, 0, 64),
	}
	w.register(s)
	return s
}

// Exists reports whether the entity itself is alive, regardless of A.
func (s *Store[A]) Exists(objectID uint32) bool {
	return s.world.Exists(objectID)
}

// Modify runs fn against the entity's attribute under the store's write lock.
// Returns false if the entity has no such attribute.
func (s *Store[A]) Modify(objectID uint32, fn func(attr *A)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	attr, ok := s.attrs[objectID]
	if !ok {
		return false
	}
	fn(attr)
	return true
}

// Insert attaches attr if the entity is alive and lacks the attribute.
// Never overwrites; returns whether the attribute is present afterwards.
func (s *Store[A]) Insert(objectID uint32, attr A) bool {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()

	if _, alive := s.world.alive[objectID]; !alive {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attrs[objectID]; !ok {
		s.add(objectID, attr)
	}
	return true
}

// Set inserts or replaces the attribute of a live entity.
func (s *Store[A]) Set(objectID uint32, attr A) error {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()

	if _, alive := s.world.alive[objectID]; !alive {
		return fmt.Errorf("entity %d does not exist", objectID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.attrs[objectID]; ok {
		*existing = attr
		return nil
	}
	s.add(objectID, attr)
	return nil
}

// Get returns a copy of the entity's attribute.
func (s *Store[A]) Get(objectID uint32) (A, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attr, ok := s.attrs[objectID]
	if !ok {
		var zero A
		return zero, false
	}
	return *attr, true
}

// Has reports whether the entity has the attribute.
func (s *Store[A]) Has(objectID uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.attrs[objectID]
	return ok
}

// Remove detaches the attribute, keeping the entity alive.
func (s *Store[A]) Remove(objectID uint32) {
	s.removeEntity(objectID)
}

// Entities returns all entities with this attribute in ascending order.
func (s *Store[A]) Entities() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := slices.Clone(s.entities)
	slices.Sort(result)
	return result
}

// Count returns the number of entities with this attribute.
func (s *Store[A]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// add must be called with mu held.
func (s *Store[A]) add(objectID uint32, attr A) {
	s.attrs[objectID] = &attr
	s.entities = append(s.entities, objectID)
}

func (s *Store[A]) removeEntity(objectID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attrs[objectID]; !ok {
		return
	}
	delete(s.attrs, objectID)
	if i := slices.Index(s.entities, objectID); i >= 0 {
		last := len(s.entities) - 1
		s.entities[i] = s.entities[last]
		s.entities = s.entities[:last]
	}
}
