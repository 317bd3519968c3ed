package effect

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
)

// Outcome is the terminal state of one dispatch.
type Outcome int8

const (
	OutcomeApplied     Outcome = iota + 1 // attribute was present, effect applied
	OutcomeReapplied                      // attribute was initialized to default, then effect applied
	OutcomeDiscarded                      // target no longer exists, nothing happened
	OutcomeResubmitted                    // attribute initialized, effect queued for the next flush
)

// String returns the outcome name used in logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeReapplied:
		return "reapplied"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeResubmitted:
		return "resubmitted"
	default:
		return "unknown(" + strconv.Itoa(int(o)) + ")"
	}
}

// Stats holds dispatch counters of one engine.
type Stats struct {
	Applied       uint64
	Reapplied     uint64
	Discarded     uint64
	Reinitialized uint64
}

// Engine dispatches effects of type E to attributes of type A.
//
// Each engine serves exactly one (A, E) binding and shares no state with other
// engines. The scaling power is resolved once at construction.
//
// Dispatch flow per submission:
//
//	resolve ─┬─ present ──────────────────────────────> Applied
//	         ├─ absent, target alive ─> insert default ─> resolve again ─> Reapplied
//	         └─ target gone ──────────────────────────> Discarded
//
// The reinitialization happens at most once per submission.
type Engine[A any, E Applicator[A]] struct {
	name    string
	attr    string
	app     Application
	storage Storage[A]

	applied       atomic.Uint64
	reapplied     atomic.Uint64
	discarded     atomic.Uint64
	reinitialized atomic.Uint64
}

// NewEngine binds effect type E to attribute type A.
// Returns ErrNotRegistered if A has no registered Application.
func NewEngine[A any, E Applicator[A]](r *Registry, storage Storage[A]) (*Engine[A, E], error) {
	if storage == nil {
		return nil, fmt.Errorf("binding %s: nil storage", typeName[E]())
	}

	name := typeName[E]() + "_observer"
	app, err := bind[A](r, name)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", typeName[E](), err)
	}

	slog.Debug("effect binding created",
		"binding", name,
		"attribute", typeName[A](),
		"scaling", app.String())

	return &Engine[A, E]{
		name:    name,
		attr:    typeName[A](),
		app:     app,
		storage: storage,
	}, nil
}

// Install registers A with app and binds E to it in one call.
// Use it when a single effect type owns the attribute's configuration.
func Install[A any, E Applicator[A]](r *Registry, storage Storage[A], app Application) (*Engine[A, E], error) {
	if err := Register[A](r, app); err != nil {
		return nil, err
	}
	return NewEngine[A, E](r, storage)
}

// Name returns the binding name ("attribute.SpeedModifier_observer").
func (e *Engine[A, E]) Name() string { return e.name }

// Attribute returns the attribute type name.
func (e *Engine[A, E]) Attribute() string { return e.attr }

// Power returns the scaling power used for every dispatch.
func (e *Engine[A, E]) Power() float64 { return e.app.Power }

// Stats returns a snapshot of dispatch counters.
func (e *Engine[A, E]) Stats() Stats {
	return Stats{
		Applied:       e.applied.Load(),
		Reapplied:     e.reapplied.Load(),
		Discarded:     e.discarded.Load(),
		Reinitialized: e.reinitialized.Load(),
	}
}

// Dispatch applies eff to the target's attribute synchronously.
//
// A missing attribute is initialized to its default and the effect is applied
// in the same call. A vanished target yields OutcomeDiscarded and no error.
// The only error is ErrInvariantViolation.
func (e *Engine[A, E]) Dispatch(targetObjID uint32, eff E) (Outcome, error) {
	return e.step(targetObjID, eff, false, false)
}

// Post queues eff on bus. The bus decides whether a reinitialized target gets
// the effect in the same flush or in the next one.
func (e *Engine[A, E]) Post(bus *Bus, targetObjID uint32, eff E) {
	bus.post(targetObjID, e.name, func(retry, deferRetry bool) (Outcome, error) {
		return e.step(targetObjID, eff, retry, deferRetry)
	})
}

// step runs one resolve pass. retry marks the single pass allowed after a
// reinitialization; deferRetry stops after the reinitialization so the caller
// can resubmit later.
func (e *Engine[A, E]) step(targetObjID uint32, eff E, retry, deferRetry bool) (Outcome, error) {
	if e.apply(targetObjID, eff) {
		if retry {
			e.reapplied.Add(1)
			return OutcomeReapplied, nil
		}
		e.applied.Add(1)
		return OutcomeApplied, nil
	}

	if !e.storage.Exists(targetObjID) {
		return e.discard(targetObjID, retry), nil
	}

	if retry {
		slog.Error("attribute still missing after reinitialization",
			"binding", e.name,
			"target", targetObjID)
		return 0, fmt.Errorf("%w: %s on target %d (binding %s)",
			ErrInvariantViolation, e.attr, targetObjID, e.name)
	}

	if !e.storage.Insert(targetObjID, newDefault[A]()) {
		// Target removed between the existence check and the insert.
		return e.discard(targetObjID, retry), nil
	}
	e.reinitialized.Add(1)

	slog.Debug("attribute initialized to default",
		"binding", e.name,
		"target", targetObjID)

	if deferRetry {
		return OutcomeResubmitted, nil
	}
	return e.step(targetObjID, eff, true, false)
}

// apply runs the applicator against the live attribute, if any.
func (e *Engine[A, E]) apply(targetObjID uint32, eff E) bool {
	return e.storage.Modify(targetObjID, func(attr *A) {
		eff.Apply(attr, e.app.Power)
	})
}

func (e *Engine[A, E]) discard(targetObjID uint32, retry bool) Outcome {
	e.discarded.Add(1)
	slog.Debug("effect discarded, target gone",
		"binding", e.name,
		"target", targetObjID,
		"retry", retry)
	return OutcomeDiscarded
}
