package effect

import (
	"sync"

	"github.com/udisondev/statuseffect/internal/modifier"
)

// testSpeed is a single-value attribute with a zero default.
type testSpeed struct {
	value float64
}

type testSpeedEffect struct {
	mod modifier.Value
}

func (e testSpeedEffect) Modifier() modifier.Value { return e.mod }
func (e testSpeedEffect) Apply(attr *testSpeed, power float64) {
	attr.value = e.mod.ApplyScaled(attr.value, power)
}

// testSlowEffect targets the same attribute as testSpeedEffect.
type testSlowEffect struct {
	percent float64
}

func (e testSlowEffect) Modifier() modifier.Value { return modifier.Percent(-e.percent) }
func (e testSlowEffect) Apply(attr *testSpeed, power float64) {
	attr.value = e.Modifier().ApplyScaled(attr.value, power)
}

// testHealth keeps current/max in ratio and defaults to 100/100.
type testHealth struct {
	current, max float64
}

func (testHealth) Default() testHealth { return testHealth{current: 100, max: 100} }

type testMaxHealthEffect struct {
	mod modifier.Value
}

func (e testMaxHealthEffect) Modifier() modifier.Value { return e.mod }
func (e testMaxHealthEffect) Apply(attr *testHealth, power float64) {
	ratio := 1.0
	if attr.max > 0 {
		ratio = attr.current / attr.max
	}
	attr.max = e.mod.ApplyScaled(attr.max, power)
	attr.current = attr.max * ratio
}

// fakeStorage is an in-memory Storage that records every collaborator call.
type fakeStorage[A any] struct {
	mu      sync.Mutex
	alive   map[uint32]bool
	attrs   map[uint32]*A
	inserts int
	mutated int

	// dropInserts makes Insert report success without storing (broken storage).
	dropInserts bool
	// killOnInsert removes the entity right after a successful Insert.
	killOnInsert bool
}

func newFakeStorage[A any]() *fakeStorage[A] {
	return &fakeStorage[A]{
		alive: make(map[uint32]bool),
		attrs: make(map[uint32]*A),
	}
}

func (s *fakeStorage[A]) spawn(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alive[id] = true
}

func (s *fakeStorage[A]) spawnWith(id uint32, attr A) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alive[id] = true
	s.attrs[id] = &attr
}

func (s *fakeStorage[A]) kill(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.alive, id)
	delete(s.attrs, id)
}

func (s *fakeStorage[A]) get(id uint32) (A, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attrs[id]
	if !ok {
		var zero A
		return zero, false
	}
	return *a, true
}

func (s *fakeStorage[A]) Exists(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive[id]
}

func (s *fakeStorage[A]) Modify(id uint32, fn func(*A)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attrs[id]
	if !ok {
		return false
	}
	fn(a)
	s.mutated++
	return true
}

func (s *fakeStorage[A]) Insert(id uint32, attr A) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive[id] {
		return false
	}
	s.inserts++
	if s.dropInserts {
		return true
	}
	if _, ok := s.attrs[id]; !ok {
		s.attrs[id] = &attr
	}
	if s.killOnInsert {
		delete(s.alive, id)
		delete(s.attrs, id)
	}
	return true
}

func (s *fakeStorage[A]) counts() (inserts, mutated int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts, s.mutated
}
