package config

import (
	"fmt"

	"github.com/udisondev/statuseffect/internal/world"
)

// EntityConfig declares an entity spawned before the first tick.
// Nil attribute fields leave the attribute absent; the first effect that
// targets it initializes the default.
type EntityConfig struct {
	Name      string   `yaml:"name"`
	Kind      string   `yaml:"kind"` // player or npc
	Speed     *float64 `yaml:"speed"`
	Health    *float64 `yaml:"health"`
	MaxHealth *float64 `yaml:"max_health"`
	Armor     *float64 `yaml:"armor"`
}

// ObjectKind maps Kind to the world ID range. Empty means npc.
func (e EntityConfig) ObjectKind() (world.Kind, error) {
	switch e.Kind {
	case "player":
		return world.KindPlayer, nil
	case "npc", "":
		return world.KindNpc, nil
	default:
		return 0, fmt.Errorf("entity %q: unknown kind %q", e.Name, e.Kind)
	}
}

// Step posts one effect to one entity at a tick.
// Params are passed to the effect factory ("value", "stacks").
// Despawn removes the entity instead; Effect is ignored then.
type Step struct {
	Tick    int               `yaml:"tick"`
	Entity  string            `yaml:"entity"`
	Effect  string            `yaml:"effect"`
	Params  map[string]string `yaml:"params"`
	Despawn bool              `yaml:"despawn"`
}

// StepsByTick groups script steps by tick, keeping file order within a tick.
func (c Config) StepsByTick() map[int][]Step {
	byTick := make(map[int][]Step)
	for _, s := range c.Script {
		byTick[s.Tick] = append(byTick[s.Tick], s)
	}
	return byTick
}

// LastTick returns the highest tick referenced by the script, or 0.
func (c Config) LastTick() int {
	last := 0
	for _, s := range c.Script {
		last = max(last, s.Tick)
	}
	return last
}
