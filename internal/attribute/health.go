package attribute

import (
	"math"

	"github.com/udisondev/statuseffect/internal/effect"
	"github.com/udisondev/statuseffect/internal/modifier"
)

const defaultMaxHealth = 100

// Health holds current and maximum hit points. Defaults to full 100/100.
type Health struct {
	Current float64
	Max     float64
}

// Default implements effect.Defaulter.
func (Health) Default() Health {
	return Health{Current: defaultMaxHealth, Max: defaultMaxHealth}
}

// Ratio returns Current/Max, or 1 when Max is not positive.
func (h Health) Ratio() float64 {
	if h.Max <= 0 {
		return 1
	}
	return h.Current / h.Max
}

// MaxHealthModifier scales Health.Max and keeps the Current/Max ratio.
// Params: "value", optional "stacks".
type MaxHealthModifier struct {
	Mod modifier.Value
}

// NewMaxHealthModifier builds a MaxHealthModifier from "value" and optional "stacks" params.
func NewMaxHealthModifier(params map[string]string) (Effect, error) {
	mod, err := parseModifier(params)
	if err != nil {
		return nil, err
	}
	return MaxHealthModifier{Mod: mod}, nil
}

// Name and Modifier implement Effect.
func (e MaxHealthModifier) Name() string             { return "MaxHealthChange" }
func (e MaxHealthModifier) Modifier() modifier.Value { return e.Mod }

// Apply scales Max and moves Current to keep the Current/Max ratio.
func (e MaxHealthModifier) Apply(attr *Health, power float64) {
	ratio := attr.Ratio()
	attr.Max = e.Mod.ApplyScaled(attr.Max, power)
	attr.Current = attr.Max * ratio
}

// Dispatch applies the effect to the target synchronously.
func (e MaxHealthModifier) Dispatch(s *Set, targetObjID uint32) (effect.Outcome, error) {
	return s.maxHealthEngine.Dispatch(targetObjID, e)
}

// Post queues the effect on bus for the next flush.
func (e MaxHealthModifier) Post(s *Set, bus *effect.Bus, targetObjID uint32) {
	s.maxHealthEngine.Post(bus, targetObjID, e)
}

// HealModifier changes Health.Current, clamped to [0, Max].
// Params: "value", optional "stacks".
type HealModifier struct {
	Mod modifier.Value
}

// NewHealModifier builds a HealModifier from "value" and optional "stacks" params.
func NewHealModifier(params map[string]string) (Effect, error) {
	mod, err := parseModifier(params)
	if err != nil {
		return nil, err
	}
	return HealModifier{Mod: mod}, nil
}

// Name and Modifier implement Effect.
func (e HealModifier) Name() string             { return "Heal" }
func (e HealModifier) Modifier() modifier.Value { return e.Mod }

// Apply scales Current and clamps it to [0, Max].
func (e HealModifier) Apply(attr *Health, power float64) {
	current := e.Mod.ApplyScaled(attr.Current, power)
	attr.Current = math.Min(math.Max(current, 0), attr.Max)
}

// Dispatch applies the effect to the target synchronously.
func (e HealModifier) Dispatch(s *Set, targetObjID uint32) (effect.Outcome, error) {
	return s.healEngine.Dispatch(targetObjID, e)
}

// Post queues the effect on bus for the next flush.
func (e HealModifier) Post(s *Set, bus *effect.Bus, targetObjID uint32) {
	s.healEngine.Post(bus, targetObjID, e)
}
