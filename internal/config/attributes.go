package config

import (
	"fmt"
	"sort"

	"github.com/udisondev/statuseffect/internal/effect"
	"github.com/udisondev/statuseffect/internal/modifier"
)

// AttributeConfig selects the stacking power of one attribute.
// Scaling is a preset name ("linear", "sqrt", "cube_root", "square", "cube") or
// a number. Power, when set, wins over Scaling.
type AttributeConfig struct {
	Scaling string  `yaml:"scaling"`
	Power   float64 `yaml:"power"`
}

// Application resolves the configured power.
// An empty config means linear.
func (a AttributeConfig) Application() (effect.Application, error) {
	if a.Power != 0 {
		app := effect.WithPower(a.Power)
		return app, app.Validate()
	}
	if a.Scaling == "" {
		return effect.DefaultApplication(), nil
	}
	power, err := modifier.ParsePower(a.Scaling)
	if err != nil {
		return effect.Application{}, err
	}
	return effect.WithPower(power), nil
}

// Applications resolves every configured attribute, keyed by attribute name.
func (c Config) Applications() (map[string]effect.Application, error) {
	names := make([]string, 0, len(c.Attributes))
	for name := range c.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	apps := make(map[string]effect.Application, len(names))
	for _, name := range names {
		app, err := c.Attributes[name].Application()
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		apps[name] = app
	}
	return apps, nil
}
