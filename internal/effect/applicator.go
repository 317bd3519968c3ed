package effect

import "github.com/udisondev/statuseffect/internal/modifier"

// Applicator links an effect type to the attribute type it modifies.
//
// A Go type has a single Apply method, so an effect type can target exactly
// one attribute type. Apply mutates attr once, using the modifier and the
// attribute's configured power, and decides itself which fields to scale
// (e.g. keeping current/max health in ratio). It must not touch anything else.
type Applicator[A any] interface {
	Modifier() modifier.Value
	Apply(attr *A, power float64)
}

// Defaulter is implemented by attributes whose default instance is not the zero value.
// Missing attributes are initialized with Default() before an effect is applied.
type Defaulter[A any] interface {
	Default() A
}

// Storage is the host entity storage for one attribute type.
//
// Exists must distinguish "entity gone" from "entity lacks the attribute".
// Modify runs fn against the live attribute with exclusive access and reports
// whether the attribute was present. Insert attaches attr only if the entity
// is alive and has no such attribute yet; it reports whether the attribute is
// present afterwards.
type Storage[A any] interface {
	Exists(objectID uint32) bool
	Modify(objectID uint32, fn func(attr *A)) bool
	Insert(objectID uint32, attr A) bool
}

// newDefault builds the default instance of A.
func newDefault[A any]() A {
	var zero A
	if d, ok := any(zero).(Defaulter[A]); ok {
		return d.Default()
	}
	if d, ok := any(&zero).(Defaulter[A]); ok {
		return d.Default()
	}
	return zero
}
