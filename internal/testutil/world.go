package testutil

import (
	"testing"

	"github.com/udisondev/statuseffect/internal/attribute"
	"github.com/udisondev/statuseffect/internal/effect"
	"github.com/udisondev/statuseffect/internal/world"
)

// NewTestSet installs all attributes into a fresh registry and world.
// Attributes missing from apps use linear scaling.
func NewTestSet(t testing.TB, apps map[string]effect.Application) *attribute.Set {
	t.Helper()
	set, err := attribute.Install(effect.NewRegistry(), world.New(), apps)
	if err != nil {
		t.Fatalf("installing attributes: %v", err)
	}
	return set
}
