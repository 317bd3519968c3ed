package effect

import (
	"fmt"

	"github.com/udisondev/statuseffect/internal/modifier"
)

// Application configures how effects combine on one attribute type.
// Created once at registration and read-only afterwards.
type Application struct {
	Power float64
}

// DefaultApplication returns linear scaling.
func DefaultApplication() Application {
	return Linear()
}

// WithPower returns an Application with custom power scaling.
func WithPower(power float64) Application {
	return Application{Power: power}
}

// Linear returns linear scaling (no diminishing returns).
func Linear() Application { return WithPower(modifier.Linear) }

// Sqrt returns square root scaling (diminishing returns).
func Sqrt() Application { return WithPower(modifier.Sqrt) }

// CubeRoot returns cube root scaling (strong diminishing returns).
func CubeRoot() Application { return WithPower(modifier.CubeRoot) }

// Square returns square scaling (increasing returns).
func Square() Application { return WithPower(modifier.Square) }

// Cube returns cube scaling (strong increasing returns).
func Cube() Application { return WithPower(modifier.Cube) }

// Validate rejects zero, negative and non-finite powers.
func (a Application) Validate() error {
	if !modifier.ValidPower(a.Power) {
		return fmt.Errorf("%w: %v (must be positive and finite)", ErrInvalidPower, a.Power)
	}
	return nil
}

// String returns the preset name or the numeric power.
func (a Application) String() string {
	if name := modifier.PresetName(a.Power); name != "" {
		return name
	}
	return fmt.Sprintf("power(%g)", a.Power)
}
