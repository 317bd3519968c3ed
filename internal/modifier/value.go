package modifier

import (
	"log/slog"
	"math"
	"strconv"
)

// Kind defines how a Value combines with the current stat value.
type Kind int8

const (
	KindFlat    Kind = iota // Additive delta (e.g. +10 speed)
	KindPercent             // Percentage points (e.g. 50 = ×1.5, -10 = ×0.9)
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindPercent:
		return "percent"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a flat or percentage-point delta carried by an effect.
// Immutable value type; the zero Value is Flat(0).
//
// Percentages are expressed in points, not fractions:
//   - Flat(10) adds 10 to the value
//   - Percent(50) means +50% = 1.5x multiplier
//   - Percent(-10) means -10% = 0.9x multiplier
type Value struct {
	kind Kind
	v    float64
}

// Flat creates an additive modifier.
func Flat(v float64) Value {
	return Value{kind: KindFlat, v: v}
}

// Percent creates a percentage modifier from percentage points (50 for +50%).
func Percent(p float64) Value {
	return Value{kind: KindPercent, v: p}
}

// Kind returns the modifier kind.
func (m Value) Kind() Kind { return m.kind }

// IsFlat reports whether m is an additive modifier.
func (m Value) IsFlat() bool { return m.kind == KindFlat }

// IsPercent reports whether m is a percentage modifier.
func (m Value) IsPercent() bool { return m.kind == KindPercent }

// FlatValue returns the flat delta, or 0 for percentage modifiers.
func (m Value) FlatValue() float64 {
	if m.kind != KindFlat {
		return 0
	}
	return m.v
}

// PercentValue returns the percentage points, or 0 for flat modifiers.
func (m Value) PercentValue() float64 {
	if m.kind != KindPercent {
		return 0
	}
	return m.v
}

// ScaledBy returns a modifier of the same kind with its magnitude multiplied by factor.
func (m Value) ScaledBy(factor float64) Value {
	return Value{kind: m.kind, v: m.v * factor}
}

// Apply combines m with current using linear scaling.
// Equivalent to ApplyScaled(current, Linear).
func (m Value) Apply(current float64) float64 {
	return m.ApplyScaled(current, Linear)
}

// ApplyScaled combines m with current using power scaling.
//
// Formulas (p = power):
//   - Flat, v >= 0: (current^(1/p) + v^(1/p))^p
//   - Flat, v < 0:  max(0, current^(1/p) - |v|^(1/p))^p
//   - Percent:      current * max(0, 1 + percent/100)^p
//
// With Sqrt (p=0.5) Flat(30) on 40 gives sqrt(40² + 30²) = 50, and
// Percent(50) on 100 gives 100 * sqrt(1.5) ≈ 122.47.
//
// Game stats are expected to be non-negative. A negative current value is
// logged, scaled by its magnitude and gets its sign restored at the end.
// A non-positive or non-finite power leaves current unchanged.
func (m Value) ApplyScaled(current, power float64) float64 {
	if !ValidPower(power) {
		slog.Warn("invalid scaling power, modifier ignored",
			"power", power,
			"modifier", m.String())
		return current
	}

	abs, sign := current, 1.0
	if current < 0 {
		slog.Warn("negative current value in ApplyScaled; game stats should be positive",
			"current", current,
			"modifier", m.String())
		abs, sign = -current, -1.0
	}

	var result float64
	switch m.kind {
	case KindFlat:
		inv := 1 / power
		currentTerm := math.Pow(abs, inv)
		valTerm := math.Pow(math.Abs(m.v), inv)
		if m.v >= 0 {
			result = math.Pow(currentTerm+valTerm, power)
		} else {
			result = math.Pow(math.Max(0, currentTerm-valTerm), power)
		}
	case KindPercent:
		// 50 -> 1.5, -10 -> 0.9, anything <= -100 zeroes the value
		multiplier := math.Max(0, 1+m.v/100)
		result = abs * math.Pow(multiplier, power)
	default:
		return current
	}

	return result * sign
}
