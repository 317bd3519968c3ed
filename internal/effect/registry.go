package effect

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sort"
	"sync"
)

// Registry holds the scaling configuration of every attribute type and the
// effect bindings built against it. One Registry is created at startup and
// passed to every engine; there is no package-level instance.
//
// Thread-safe: all methods are protected by sync.RWMutex.
type Registry struct {
	mu    sync.RWMutex
	attrs map[reflect.Type]*attributeEntry
}

type attributeEntry struct {
	name     string
	app      Application
	bindings []string
}

// AttributeInfo describes one registered attribute type.
type AttributeInfo struct {
	Name     string
	App      Application
	Bindings []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		attrs: make(map[reflect.Type]*attributeEntry),
	}
}

// Register stores the scaling configuration for attribute type A.
// Must be called once per attribute type, before any engine for A is built.
func Register[A any](r *Registry, app Application) error {
	if err := app.Validate(); err != nil {
		return fmt.Errorf("registering %s: %w", typeName[A](), err)
	}

	t := reflect.TypeFor[A]()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.attrs[t]; ok {
		return fmt.Errorf("%w: %s (%s)", ErrAlreadyRegistered, existing.name, existing.app)
	}
	r.attrs[t] = &attributeEntry{name: typeName[A](), app: app}

	slog.Debug("attribute registered", "attribute", typeName[A](), "scaling", app.String())
	return nil
}

// Lookup returns the scaling configuration of attribute type A.
func Lookup[A any](r *Registry) (Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.attrs[reflect.TypeFor[A]()]
	if !ok {
		return Application{}, fmt.Errorf("%w: %s", ErrNotRegistered, typeName[A]())
	}
	return entry.app, nil
}

// bind records an (A, E) binding and returns the attribute configuration.
func bind[A any](r *Registry, binding string) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.attrs[reflect.TypeFor[A]()]
	if !ok {
		return Application{}, fmt.Errorf("%w: %s (binding %s)", ErrNotRegistered, typeName[A](), binding)
	}
	if slices.Contains(entry.bindings, binding) {
		return Application{}, fmt.Errorf("%w: %s", ErrDuplicateBinding, binding)
	}
	entry.bindings = append(entry.bindings, binding)
	return entry.app, nil
}

// Attributes returns all registered attributes sorted by name.
func (r *Registry) Attributes() []AttributeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]AttributeInfo, 0, len(r.attrs))
	for _, e := range r.attrs {
		result = append(result, AttributeInfo{
			Name:     e.name,
			App:      e.app,
			Bindings: slices.Clone(e.bindings),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Bindings returns all binding names sorted.
func (r *Registry) Bindings() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []string
	for _, e := range r.attrs {
		result = append(result, e.bindings...)
	}
	sort.Strings(result)
	return result
}

// typeName returns a readable name for T ("attribute.Speed").
func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
