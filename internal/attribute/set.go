package attribute

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/statuseffect/internal/effect"
	"github.com/udisondev/statuseffect/internal/world"
)

// Attribute names used in configuration.
const (
	NameSpeed  = "speed"
	NameHealth = "health"
	NameArmor  = "armor"
)

// Names returns all configurable attribute names.
func Names() []string {
	return []string{NameArmor, NameHealth, NameSpeed}
}

// Set wires the attribute stores of one world to their effect engines.
type Set struct {
	World  *world.World
	Speed  *world.Store[Speed]
	Health *world.Store[Health]
	Armor  *world.Store[Armor]

	speedEngine     *effect.Engine[Speed, SpeedModifier]
	maxHealthEngine *effect.Engine[Health, MaxHealthModifier]
	healEngine      *effect.Engine[Health, HealModifier]
	armorEngine     *effect.Engine[Armor, ArmorModifier]
}

// BindingStats pairs a binding name with its dispatch counters.
type BindingStats struct {
	Binding string
	Stats   effect.Stats
}

// Install registers every attribute type in reg with the Application from
// apps (linear when absent) and binds all effect types to stores in w.
// Returns error on unknown attribute names or invalid powers.
func Install(reg *effect.Registry, w *world.World, apps map[string]effect.Application) (*Set, error) {
	for name := range apps {
		if !knownName(name) {
			return nil, fmt.Errorf("unknown attribute %q", name)
		}
	}
	appFor := func(name string) effect.Application {
		if app, ok := apps[name]; ok {
			return app
		}
		return effect.DefaultApplication()
	}

	if err := effect.Register[Speed](reg, appFor(NameSpeed)); err != nil {
		return nil, fmt.Errorf("installing %s: %w", NameSpeed, err)
	}
	if err := effect.Register[Health](reg, appFor(NameHealth)); err != nil {
		return nil, fmt.Errorf("installing %s: %w", NameHealth, err)
	}
	if err := effect.Register[Armor](reg, appFor(NameArmor)); err != nil {
		return nil, fmt.Errorf("installing %s: %w", NameArmor, err)
	}

	// Stores attach to w, so they are created only once registration succeeded.
	s := &Set{
		World:  w,
		Speed:  world.NewStore[Speed](w),
		Health: world.NewStore[Health](w),
		Armor:  world.NewStore[Armor](w),
	}

	var err error
	if s.speedEngine, err = effect.NewEngine[Speed, SpeedModifier](reg, s.Speed); err != nil {
		return nil, err
	}
	if s.maxHealthEngine, err = effect.NewEngine[Health, MaxHealthModifier](reg, s.Health); err != nil {
		return nil, err
	}
	if s.healEngine, err = effect.NewEngine[Health, HealModifier](reg, s.Health); err != nil {
		return nil, err
	}
	if s.armorEngine, err = effect.NewEngine[Armor, ArmorModifier](reg, s.Armor); err != nil {
		return nil, err
	}

	slog.Info("attributes installed",
		"speed", appFor(NameSpeed).String(),
		"health", appFor(NameHealth).String(),
		"armor", appFor(NameArmor).String())

	return s, nil
}

// Stats returns dispatch counters of every binding.
func (s *Set) Stats() []BindingStats {
	return []BindingStats{
		{Binding: s.speedEngine.Name(), Stats: s.speedEngine.Stats()},
		{Binding: s.maxHealthEngine.Name(), Stats: s.maxHealthEngine.Stats()},
		{Binding: s.healEngine.Name(), Stats: s.healEngine.Stats()},
		{Binding: s.armorEngine.Name(), Stats: s.armorEngine.Stats()},
	}
}

func knownName(name string) bool {
	switch name {
	case NameSpeed, NameHealth, NameArmor:
		return true
	default:
		return false
	}
}
