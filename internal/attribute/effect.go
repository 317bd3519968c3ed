package attribute

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/udisondev/statuseffect/internal/effect"
	"github.com/udisondev/statuseffect/internal/modifier"
)

// Effect is a configured effect instance that knows which engine of a Set serves it.
// Every concrete effect type also implements effect.Applicator for its attribute.
type Effect interface {
	Name() string
	Modifier() modifier.Value
	Dispatch(s *Set, targetObjID uint32) (effect.Outcome, error)
	Post(s *Set, bus *effect.Bus, targetObjID uint32)
}

// Factory builds an effect from string params.
type Factory func(params map[string]string) (Effect, error)

// effectRegistry maps effect name → factory function.
// Populated by init() below.
var effectRegistry = map[string]Factory{}

// RegisterEffect registers an effect factory by name.
func RegisterEffect(name string, factory Factory) {
	effectRegistry[name] = factory
}

// CreateEffect creates an effect by name using the registered factory.
// Returns error if name is not registered or params are invalid.
func CreateEffect(name string, params map[string]string) (Effect, error) {
	factory, ok := effectRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown effect type: %s", name)
	}
	eff, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return eff, nil
}

// EffectNames returns all registered effect names sorted.
func EffectNames() []string {
	names := make([]string, 0, len(effectRegistry))
	for name := range effectRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterEffect("SpeedChange", NewSpeedModifier)
	RegisterEffect("MaxHealthChange", NewMaxHealthModifier)
	RegisterEffect("Heal", NewHealModifier)
	RegisterEffect("ArmorChange", NewArmorModifier)
}

// parseModifier reads "value" ("+30", "50%") and the optional "stacks" multiplier.
func parseModifier(params map[string]string) (modifier.Value, error) {
	raw, ok := params["value"]
	if !ok {
		return modifier.Value{}, fmt.Errorf("missing param \"value\"")
	}
	mod, err := modifier.ParseValue(raw)
	if err != nil {
		return modifier.Value{}, err
	}

	if s, ok := params["stacks"]; ok {
		stacks, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return modifier.Value{}, fmt.Errorf("parsing stacks %q: %w", s, err)
		}
		mod = mod.ScaledBy(stacks)
	}
	return mod, nil
}
