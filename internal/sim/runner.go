package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/statuseffect/internal/attribute"
	"github.com/udisondev/statuseffect/internal/config"
	"github.com/udisondev/statuseffect/internal/effect"
)

const defaultTickInterval = 100 * time.Millisecond

// action is one prepared script step.
type action struct {
	entity  string
	effect  attribute.Effect // nil for despawn
	despawn bool
}

// Runner drives a scripted scenario: every tick it posts the tick's effects
// to the bus and flushes it.
type Runner struct {
	set      *attribute.Set
	bus      *effect.Bus
	interval time.Duration
	maxTicks int

	actions  map[int][]action
	lastTick int

	mu       sync.RWMutex
	entities map[string]uint32 // name → objectID

	tick     atomic.Int64
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRunner prepares every script step of cfg.
// Returns error if a step names an unknown effect or has invalid params.
func NewRunner(set *attribute.Set, bus *effect.Bus, cfg config.Config) (*Runner, error) {
	r := &Runner{
		set:      set,
		bus:      bus,
		interval: cfg.TickInterval,
		maxTicks: cfg.Ticks,
		actions:  make(map[int][]action),
		lastTick: cfg.LastTick(),
		entities: make(map[string]uint32),
		stopCh:   make(chan struct{}),
	}

	if r.interval <= 0 {
		r.interval = defaultTickInterval
	}

	for tick, steps := range cfg.StepsByTick() {
		for _, s := range steps {
			if s.Despawn {
				r.actions[tick] = append(r.actions[tick], action{entity: s.Entity, despawn: true})
				continue
			}
			eff, err := attribute.CreateEffect(s.Effect, s.Params)
			if err != nil {
				return nil, fmt.Errorf("tick %d, entity %s: %w", tick, s.Entity, err)
			}
			r.actions[tick] = append(r.actions[tick], action{entity: s.Entity, effect: eff})
		}
	}

	return r, nil
}

// Spawn creates the configured entities and their initial attributes.
// Entities already restored under the same name keep their ID and state.
func (r *Runner) Spawn(entities []config.EntityConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entities {
		kind, err := e.ObjectKind()
		if err != nil {
			return err
		}
		if id, ok := r.entities[e.Name]; ok && r.set.World.Exists(id) {
			slog.Info("entity resumed", "name", e.Name, "objectID", id)
			continue
		}
		id := r.set.World.CreateEntity(kind)
		r.entities[e.Name] = id

		if err := r.seed(id, e); err != nil {
			return fmt.Errorf("spawning %s: %w", e.Name, err)
		}

		slog.Info("entity spawned", "name", e.Name, "objectID", id, "kind", e.Kind)
	}
	return nil
}

func (r *Runner) seed(id uint32, e config.EntityConfig) error {
	if e.Speed != nil {
		if err := r.set.Speed.Set(id, attribute.Speed{Value: *e.Speed}); err != nil {
			return err
		}
	}
	if e.Health != nil || e.MaxHealth != nil {
		h := attribute.Health{}.Default()
		if e.MaxHealth != nil {
			h.Max = *e.MaxHealth
			h.Current = h.Max
		}
		if e.Health != nil {
			h.Current = *e.Health
		}
		if err := r.set.Health.Set(id, h); err != nil {
			return err
		}
	}
	if e.Armor != nil {
		if err := r.set.Armor.Set(id, attribute.Armor{Value: *e.Armor}); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot captures the world with entity names filled in.
func (r *Runner) Snapshot() []attribute.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make(map[uint32]string, len(r.entities))
	for name, id := range r.entities {
		names[id] = name
	}

	snaps := r.set.Snapshot()
	for i := range snaps {
		snaps[i].Name = names[snaps[i].ObjectID]
	}
	return snaps
}

// Restore rebuilds the world from snaps and remembers named entities, so a
// later Spawn adopts them instead of creating duplicates.
func (r *Runner) Restore(snaps []attribute.Snapshot) error {
	if err := r.set.Restore(snaps); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, snap := range snaps {
		if snap.Name != "" {
			r.entities[snap.Name] = snap.ObjectID
		}
	}
	return nil
}

// EntityID returns the object ID of a spawned entity.
func (r *Runner) EntityID(name string) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.entities[name]
	return id, ok
}

// Tick returns the number of completed ticks.
func (r *Runner) Tick() int {
	return int(r.tick.Load())
}

// Done reports whether the scenario is over: the tick limit is reached, or the
// script is exhausted and the bus is empty.
func (r *Runner) Done() bool {
	tick := r.Tick()
	if r.maxTicks > 0 {
		return tick >= r.maxTicks
	}
	return tick > r.lastTick && r.bus.Pending() == 0
}

// Start runs the tick loop (blocks until the scenario is done, Stop is
// called or the context is canceled).
func (r *Runner) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("scenario started", "interval", r.interval, "lastTick", r.lastTick)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scenario stopping", "tick", r.Tick())
			return ctx.Err()

		case <-r.stopCh:
			slog.Info("scenario stopped", "tick", r.Tick())
			return nil

		case <-ticker.C:
			if _, err := r.Step(ctx); err != nil {
				return err
			}
			if r.Done() {
				slog.Info("scenario finished", "ticks", r.Tick())
				return nil
			}
		}
	}
}

// Stop stops the tick loop.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// Step runs one tick: posts the tick's effects, applies despawns and flushes
// the bus. Despawns take effect before the flush.
func (r *Runner) Step(ctx context.Context) (effect.FlushResult, error) {
	tick := r.Tick()

	for _, a := range r.actions[tick] {
		id, ok := r.EntityID(a.entity)
		if !ok {
			return effect.FlushResult{}, fmt.Errorf("tick %d: entity %s not spawned", tick, a.entity)
		}
		if a.despawn {
			r.set.World.DestroyEntity(id)
			slog.Info("entity despawned", "tick", tick, "name", a.entity, "objectID", id)
			continue
		}
		a.effect.Post(r.set, r.bus, id)
		slog.Info("effect posted",
			"tick", tick,
			"entity", a.entity,
			"effect", a.effect.Name(),
			"modifier", a.effect.Modifier().String())
	}

	res, err := r.bus.Flush(ctx)
	r.tick.Add(1)
	if err != nil {
		return res, fmt.Errorf("tick %d: %w", tick, err)
	}

	if res.Delivered > 0 {
		r.logState(tick)
	} else if IsDebugEnabled() {
		slog.Debug("tick completed", "tick", tick, "pending", r.bus.Pending())
	}
	return res, nil
}

func (r *Runner) logState(tick int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, id := range r.entities {
		if !r.set.World.Exists(id) {
			continue
		}
		attrs := []any{"tick", tick, "entity", name}
		if v, ok := r.set.Speed.Get(id); ok {
			attrs = append(attrs, "speed", fmt.Sprintf("%.2f", v.Value))
		}
		if v, ok := r.set.Health.Get(id); ok {
			attrs = append(attrs, "health", fmt.Sprintf("%.2f/%.2f", v.Current, v.Max))
		}
		if v, ok := r.set.Armor.Get(id); ok {
			attrs = append(attrs, "armor", fmt.Sprintf("%.2f", v.Value))
		}
		slog.Info("entity state", attrs...)
	}
}
