package attribute

import (
	"github.com/udisondev/statuseffect/internal/effect"
	"github.com/udisondev/statuseffect/internal/modifier"
)

// Armor is a flat damage reduction value. Zero by default.
type Armor struct {
	Value float64
}

// ArmorModifier changes Armor.Value.
type ArmorModifier struct {
	Mod modifier.Value
}

// NewArmorModifier builds an ArmorModifier from "value" and optional "stacks" params.
func NewArmorModifier(params map[string]string) (Effect, error) {
	mod, err := parseModifier(params)
	if err != nil {
		return nil, err
	}
	return ArmorModifier{Mod: mod}, nil
}

// Name and Modifier implement Effect.
func (e ArmorModifier) Name() string             { return "ArmorChange" }
func (e ArmorModifier) Modifier() modifier.Value { return e.Mod }

// Apply scales Armor.Value with the attribute's power.
func (e ArmorModifier) Apply(attr *Armor, power float64) {
	attr.Value = e.Mod.ApplyScaled(attr.Value, power)
}

// Dispatch applies the effect to the target synchronously.
func (e ArmorModifier) Dispatch(s *Set, targetObjID uint32) (effect.Outcome, error) {
	return s.armorEngine.Dispatch(targetObjID, e)
}

// Post queues the effect on bus for the next flush.
func (e ArmorModifier) Post(s *Set, bus *effect.Bus, targetObjID uint32) {
	s.armorEngine.Post(bus, targetObjID, e)
}
