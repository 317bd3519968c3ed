package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statuseffect/internal/modifier"
)

func newSpeedEngine(t *testing.T, app Application) (*Engine[testSpeed, testSpeedEffect], *fakeStorage[testSpeed]) {
	t.Helper()
	s := newFakeStorage[testSpeed]()
	eng, err := Install[testSpeed, testSpeedEffect](NewRegistry(), s, app)
	require.NoError(t, err)
	return eng, s
}

func newHealthEngine(t *testing.T) (*Engine[testHealth, testMaxHealthEffect], *fakeStorage[testHealth]) {
	t.Helper()
	s := newFakeStorage[testHealth]()
	eng, err := Install[testHealth, testMaxHealthEffect](NewRegistry(), s, Linear())
	require.NoError(t, err)
	return eng, s
}

func TestDispatch_Applied(t *testing.T) {
	tests := []struct {
		name    string
		app     Application
		start   float64
		mod     modifier.Value
		want    float64
		epsilon float64
	}{
		{"flat linear", Linear(), 100, modifier.Flat(20), 120, 1e-9},
		{"percent linear", Linear(), 100, modifier.Percent(50), 150, 1e-9},
		{"percent debuff linear", Linear(), 100, modifier.Percent(-25), 75, 1e-9},
		{"flat sqrt", Sqrt(), 40, modifier.Flat(30), 50, 1e-9},
		{"percent sqrt", Sqrt(), 100, modifier.Percent(50), 122.47, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, s := newSpeedEngine(t, tt.app)
			s.spawnWith(1, testSpeed{value: tt.start})

			outcome, err := eng.Dispatch(1, testSpeedEffect{mod: tt.mod})
			require.NoError(t, err)
			assert.Equal(t, OutcomeApplied, outcome)

			got, ok := s.get(1)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got.value, tt.epsilon)

			inserts, mutated := s.counts()
			assert.Equal(t, 0, inserts)
			assert.Equal(t, 1, mutated)
		})
	}
}

func TestDispatch_MissingAttribute_ReinitializesOnce(t *testing.T) {
	eng, s := newSpeedEngine(t, Linear())
	s.spawn(7)

	outcome, err := eng.Dispatch(7, testSpeedEffect{mod: modifier.Flat(50)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeReapplied, outcome)

	got, ok := s.get(7)
	require.True(t, ok)
	assert.Equal(t, 50.0, got.value, "zero default plus flat 50")

	inserts, mutated := s.counts()
	assert.Equal(t, 1, inserts, "exactly one attach")
	assert.Equal(t, 1, mutated, "exactly one mutation")

	assert.Equal(t, Stats{Reapplied: 1, Reinitialized: 1}, eng.Stats())
}

func TestDispatch_MissingAttribute_UsesDefaulter(t *testing.T) {
	eng, s := newHealthEngine(t)
	s.spawn(3)

	outcome, err := eng.Dispatch(3, testMaxHealthEffect{mod: modifier.Flat(50)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeReapplied, outcome)

	got, ok := s.get(3)
	require.True(t, ok)
	assert.InDelta(t, 150.0, got.max, 1e-9)
	assert.InDelta(t, 150.0, got.current, 1e-9)
}

func TestDispatch_VanishedTarget(t *testing.T) {
	eng, s := newSpeedEngine(t, Linear())

	outcome, err := eng.Dispatch(42, testSpeedEffect{mod: modifier.Flat(10)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDiscarded, outcome)

	inserts, mutated := s.counts()
	assert.Equal(t, 0, inserts)
	assert.Equal(t, 0, mutated)
	_, ok := s.get(42)
	assert.False(t, ok)
	assert.Equal(t, Stats{Discarded: 1}, eng.Stats())
}

func TestDispatch_DestroyedTarget(t *testing.T) {
	eng, s := newSpeedEngine(t, Linear())
	s.spawnWith(1, testSpeed{value: 100})
	s.kill(1)

	outcome, err := eng.Dispatch(1, testSpeedEffect{mod: modifier.Flat(10)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDiscarded, outcome)
}

func TestDispatch_TargetRemovedDuringReinit(t *testing.T) {
	eng, s := newSpeedEngine(t, Linear())
	s.spawn(5)
	s.killOnInsert = true

	outcome, err := eng.Dispatch(5, testSpeedEffect{mod: modifier.Flat(10)})
	require.NoError(t, err, "removal during reinit degrades to discard")
	assert.Equal(t, OutcomeDiscarded, outcome)

	inserts, mutated := s.counts()
	assert.Equal(t, 1, inserts)
	assert.Equal(t, 0, mutated)
	assert.Equal(t, Stats{Discarded: 1, Reinitialized: 1}, eng.Stats())
}

func TestDispatch_BrokenStorage_InvariantViolation(t *testing.T) {
	eng, s := newSpeedEngine(t, Linear())
	s.spawn(9)
	s.dropInserts = true

	outcome, err := eng.Dispatch(9, testSpeedEffect{mod: modifier.Flat(10)})
	require.ErrorIs(t, err, ErrInvariantViolation)
	assert.Equal(t, Outcome(0), outcome)

	inserts, _ := s.counts()
	assert.Equal(t, 1, inserts, "no retry loop")
}

func TestDispatch_SequentialOrder(t *testing.T) {
	eng, s := newSpeedEngine(t, Linear())
	s.spawnWith(1, testSpeed{value: 100})
	s.spawnWith(2, testSpeed{value: 100})

	for _, m := range []modifier.Value{modifier.Flat(20), modifier.Percent(10)} {
		_, err := eng.Dispatch(1, testSpeedEffect{mod: m})
		require.NoError(t, err)
	}
	for _, m := range []modifier.Value{modifier.Percent(10), modifier.Flat(20)} {
		_, err := eng.Dispatch(2, testSpeedEffect{mod: m})
		require.NoError(t, err)
	}

	first, _ := s.get(1)
	second, _ := s.get(2)
	assert.InDelta(t, 132.0, first.value, 1e-9)
	assert.InDelta(t, 130.0, second.value, 1e-9)
}

func TestDispatch_RatioPreserved(t *testing.T) {
	eng, s := newHealthEngine(t)
	s.spawnWith(1, testHealth{current: 75, max: 100})

	outcome, err := eng.Dispatch(1, testMaxHealthEffect{mod: modifier.Flat(50)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	got, _ := s.get(1)
	assert.InDelta(t, 150.0, got.max, 1e-9)
	assert.InDelta(t, 112.5, got.current, 1e-9)
}

func TestDispatch_SqrtStacking(t *testing.T) {
	eng, s := newSpeedEngine(t, Sqrt())
	s.spawnWith(1, testSpeed{value: 100})

	for range 2 {
		_, err := eng.Dispatch(1, testSpeedEffect{mod: modifier.Percent(30)})
		require.NoError(t, err)
	}

	got, _ := s.get(1)
	assert.Less(t, got.value, 140.0)
	assert.Greater(t, got.value, 120.0)
}

func TestDispatch_MultipleTargets(t *testing.T) {
	eng, s := newSpeedEngine(t, Linear())
	starts := map[uint32]float64{1: 100, 2: 80, 3: 120}
	for id, v := range starts {
		s.spawnWith(id, testSpeed{value: v})
	}

	for id := range starts {
		_, err := eng.Dispatch(id, testSpeedEffect{mod: modifier.Percent(25)})
		require.NoError(t, err)
	}

	for id, v := range starts {
		got, _ := s.get(id)
		assert.InDelta(t, v*1.25, got.value, 1e-9, "target %d", id)
	}
}

func TestDispatch_BindingsShareAttributePower(t *testing.T) {
	r := NewRegistry()
	s := newFakeStorage[testSpeed]()
	require.NoError(t, Register[testSpeed](r, Square()))

	speed, err := NewEngine[testSpeed, testSpeedEffect](r, s)
	require.NoError(t, err)
	slow, err := NewEngine[testSpeed, testSlowEffect](r, s)
	require.NoError(t, err)

	s.spawnWith(1, testSpeed{value: 100})

	_, err = speed.Dispatch(1, testSpeedEffect{mod: modifier.Percent(50)})
	require.NoError(t, err)
	_, err = slow.Dispatch(1, testSlowEffect{percent: 50})
	require.NoError(t, err)

	got, _ := s.get(1)
	// 100 * 1.5² * 0.5² = 56.25
	assert.InDelta(t, 56.25, got.value, 1e-9)

	assert.Equal(t, Stats{Applied: 1}, speed.Stats())
	assert.Equal(t, Stats{Applied: 1}, slow.Stats())
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "applied", OutcomeApplied.String())
	assert.Equal(t, "reapplied", OutcomeReapplied.String())
	assert.Equal(t, "discarded", OutcomeDiscarded.String())
	assert.Equal(t, "resubmitted", OutcomeResubmitted.String())
	assert.Equal(t, "unknown(0)", Outcome(0).String())
}
