package attribute

import "fmt"

// Snapshot is the persisted state of one entity's attributes.
// Nil fields mean the entity has no such attribute.
type Snapshot struct {
	ObjectID uint32
	// Name is the scenario name of the entity, empty for unnamed ones.
	// Set leaves it empty and ignores it on Restore.
	Name   string
	Speed  *Speed
	Health *Health
	Armor  *Armor
}

// Snapshot captures every live entity in ascending ID order.
func (s *Set) Snapshot() []Snapshot {
	ids := s.World.Entities()
	result := make([]Snapshot, 0, len(ids))
	for _, id := range ids {
		snap := Snapshot{ObjectID: id}
		if v, ok := s.Speed.Get(id); ok {
			snap.Speed = &v
		}
		if v, ok := s.Health.Get(id); ok {
			snap.Health = &v
		}
		if v, ok := s.Armor.Get(id); ok {
			snap.Armor = &v
		}
		result = append(result, snap)
	}
	return result
}

// Restore recreates entities and attributes from snapshots.
// Entities that are already alive keep their ID and get attributes overwritten.
func (s *Set) Restore(snaps []Snapshot) error {
	for _, snap := range snaps {
		if !s.World.Exists(snap.ObjectID) {
			if err := s.World.AddEntity(snap.ObjectID); err != nil {
				return fmt.Errorf("restoring entity: %w", err)
			}
		}
		if snap.Speed != nil {
			if err := s.Speed.Set(snap.ObjectID, *snap.Speed); err != nil {
				return fmt.Errorf("restoring speed of %d: %w", snap.ObjectID, err)
			}
		}
		if snap.Health != nil {
			if err := s.Health.Set(snap.ObjectID, *snap.Health); err != nil {
				return fmt.Errorf("restoring health of %d: %w", snap.ObjectID, err)
			}
		}
		if snap.Armor != nil {
			if err := s.Armor.Set(snap.ObjectID, *snap.Armor); err != nil {
				return fmt.Errorf("restoring armor of %d: %w", snap.ObjectID, err)
			}
		}
	}
	return nil
}
