package effect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statuseffect/internal/modifier"
)

func TestApplication_Presets(t *testing.T) {
	assert.Equal(t, modifier.Linear, DefaultApplication().Power)
	assert.Equal(t, modifier.Linear, Linear().Power)
	assert.Equal(t, modifier.Sqrt, Sqrt().Power)
	assert.InDelta(t, 1.0/3.0, CubeRoot().Power, 1e-12)
	assert.Equal(t, modifier.Square, Square().Power)
	assert.Equal(t, modifier.Cube, Cube().Power)
	assert.Equal(t, 0.7, WithPower(0.7).Power)

	assert.Equal(t, "sqrt", Sqrt().String())
	assert.Equal(t, "power(0.7)", WithPower(0.7).String())
}

func TestApplication_Validate(t *testing.T) {
	require.NoError(t, Sqrt().Validate())
	require.NoError(t, WithPower(0.01).Validate())

	for _, p := range []float64{0, -0.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := WithPower(p).Validate()
		assert.ErrorIs(t, err, ErrInvalidPower, "power %v", p)
	}
}

func TestRegister_RejectsInvalidPower(t *testing.T) {
	r := NewRegistry()

	err := Register[testSpeed](r, WithPower(0))
	require.ErrorIs(t, err, ErrInvalidPower)

	_, err = Lookup[testSpeed](r)
	assert.ErrorIs(t, err, ErrNotRegistered, "rejected registration must not be stored")
}

func TestRegister_Twice(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, Register[testSpeed](r, Sqrt()))
	err := Register[testSpeed](r, Linear())
	require.ErrorIs(t, err, ErrAlreadyRegistered)

	app, err := Lookup[testSpeed](r)
	require.NoError(t, err)
	assert.Equal(t, Sqrt(), app, "first registration wins")
}

func TestLookup_Unregistered(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, Register[testSpeed](r, Linear()))

	_, err := Lookup[testHealth](r)
	require.ErrorIs(t, err, ErrNotRegistered)
	assert.Contains(t, err.Error(), "testHealth")
}

func TestRegistry_IndependentInstances(t *testing.T) {
	r1 := NewRegistry()
	r2 := NewRegistry()

	require.NoError(t, Register[testSpeed](r1, Sqrt()))
	require.NoError(t, Register[testSpeed](r2, Cube()))

	a1, err := Lookup[testSpeed](r1)
	require.NoError(t, err)
	a2, err := Lookup[testSpeed](r2)
	require.NoError(t, err)

	assert.Equal(t, modifier.Sqrt, a1.Power)
	assert.Equal(t, modifier.Cube, a2.Power)
}

func TestRegistry_AttributesAndBindings(t *testing.T) {
	r := NewRegistry()
	speed := newFakeStorage[testSpeed]()
	health := newFakeStorage[testHealth]()

	require.NoError(t, Register[testSpeed](r, Sqrt()))
	require.NoError(t, Register[testHealth](r, Linear()))

	_, err := NewEngine[testSpeed, testSpeedEffect](r, speed)
	require.NoError(t, err)
	_, err = NewEngine[testSpeed, testSlowEffect](r, speed)
	require.NoError(t, err)
	_, err = NewEngine[testHealth, testMaxHealthEffect](r, health)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"effect.testMaxHealthEffect_observer",
		"effect.testSlowEffect_observer",
		"effect.testSpeedEffect_observer",
	}, r.Bindings())

	attrs := r.Attributes()
	require.Len(t, attrs, 2)
	assert.Equal(t, "effect.testHealth", attrs[0].Name)
	assert.Equal(t, Linear(), attrs[0].App)
	assert.Equal(t, []string{"effect.testMaxHealthEffect_observer"}, attrs[0].Bindings)
	assert.Equal(t, "effect.testSpeed", attrs[1].Name)
	assert.Len(t, attrs[1].Bindings, 2)
}

func TestNewEngine_DuplicateBinding(t *testing.T) {
	r := NewRegistry()
	s := newFakeStorage[testSpeed]()
	require.NoError(t, Register[testSpeed](r, Linear()))

	_, err := NewEngine[testSpeed, testSpeedEffect](r, s)
	require.NoError(t, err)

	_, err = NewEngine[testSpeed, testSpeedEffect](r, s)
	assert.ErrorIs(t, err, ErrDuplicateBinding)
}

func TestNewEngine_Unregistered(t *testing.T) {
	r := NewRegistry()

	_, err := NewEngine[testSpeed, testSpeedEffect](r, newFakeStorage[testSpeed]())
	require.ErrorIs(t, err, ErrNotRegistered)
	assert.Empty(t, r.Bindings())
}

func TestNewEngine_NilStorage(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, Register[testSpeed](r, Linear()))

	_, err := NewEngine[testSpeed, testSpeedEffect](r, nil)
	assert.Error(t, err)
}

func TestInstall(t *testing.T) {
	r := NewRegistry()
	s := newFakeStorage[testSpeed]()

	eng, err := Install[testSpeed, testSpeedEffect](r, s, Sqrt())
	require.NoError(t, err)
	assert.Equal(t, modifier.Sqrt, eng.Power())
	assert.Equal(t, "effect.testSpeed", eng.Attribute())
	assert.Equal(t, "effect.testSpeedEffect_observer", eng.Name())

	// Second install of the same attribute is a configuration error.
	_, err = Install[testSpeed, testSlowEffect](r, s, Linear())
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	// Binding against the already installed attribute is fine.
	slow, err := NewEngine[testSpeed, testSlowEffect](r, s)
	require.NoError(t, err)
	assert.Equal(t, modifier.Sqrt, slow.Power())
}
