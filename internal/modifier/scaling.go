package modifier

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Power scaling presets.
//
// Power controls how stacked modifiers combine:
//   - Linear (1):     plain addition/multiplication
//   - Sqrt (0.5):     diminishing returns
//   - CubeRoot (1/3): strong diminishing returns
//   - Square (2):     increasing returns
//   - Cube (3):       strong increasing returns
const (
	Linear   = 1.0
	Sqrt     = 0.5
	CubeRoot = 1.0 / 3.0
	Square   = 2.0
	Cube     = 3.0
)

// presets maps config names to power values.
var presets = map[string]float64{
	"linear":    Linear,
	"sqrt":      Sqrt,
	"cube_root": CubeRoot,
	"square":    Square,
	"cube":      Cube,
}

// ValidPower reports whether power can be used by ApplyScaled.
// Zero is rejected: the formulas divide by power.
func ValidPower(power float64) bool {
	return power > 0 && !math.IsInf(power, 0)
}

// ParsePower resolves a preset name ("sqrt", "cube_root", ...) or a numeric literal.
func ParsePower(s string) (float64, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if p, ok := presets[name]; ok {
		return p, nil
	}
	p, err := strconv.ParseFloat(name, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown scaling %q", s)
	}
	if !ValidPower(p) {
		return 0, fmt.Errorf("scaling power %v must be positive and finite", p)
	}
	return p, nil
}

// PresetName returns the preset name for power, or "" if it is not a preset.
func PresetName(power float64) string {
	for name, p := range presets {
		if p == power {
			return name
		}
	}
	return ""
}
