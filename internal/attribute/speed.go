package attribute

import (
	"github.com/udisondev/statuseffect/internal/effect"
	"github.com/udisondev/statuseffect/internal/modifier"
)

// Speed is the movement speed of an entity. Zero by default.
type Speed struct {
	Value float64
}

// SpeedModifier changes Speed.Value.
// Params: "value" ("+30", "-10%"), optional "stacks".
type SpeedModifier struct {
	Mod modifier.Value
}

// NewSpeedModifier builds a SpeedModifier from "value" and optional "stacks" params.
func NewSpeedModifier(params map[string]string) (Effect, error) {
	mod, err := parseModifier(params)
	if err != nil {
		return nil, err
	}
	return SpeedModifier{Mod: mod}, nil
}

// Name and Modifier implement Effect.
func (e SpeedModifier) Name() string             { return "SpeedChange" }
func (e SpeedModifier) Modifier() modifier.Value { return e.Mod }

// Apply scales Speed.Value with the attribute's power.
func (e SpeedModifier) Apply(attr *Speed, power float64) {
	attr.Value = e.Mod.ApplyScaled(attr.Value, power)
}

// Dispatch applies the effect to the target synchronously.
func (e SpeedModifier) Dispatch(s *Set, targetObjID uint32) (effect.Outcome, error) {
	return s.speedEngine.Dispatch(targetObjID, e)
}

// Post queues the effect on bus for the next flush.
func (e SpeedModifier) Post(s *Set, bus *effect.Bus, targetObjID uint32) {
	s.speedEngine.Post(bus, targetObjID, e)
}
