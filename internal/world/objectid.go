package world

import "sync/atomic"

// Kind selects the object ID range of an entity.
type Kind int8

const (
	KindPlayer Kind = iota
	KindNpc
)

// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: Reserved (0 = invalid)
//	0x10000000 - 0x1FFFFFFF: Players
//	0x20000000 - 0x2FFFFFFF: NPCs
const (
	playerIDBase uint32 = 0x10000000
	npcIDBase    uint32 = 0x20000000
	npcIDEnd     uint32 = 0x30000000
)

// ObjectIDGenerator generates unique entity IDs per kind.
// Thread-safe via atomic increment.
type ObjectIDGenerator struct {
	nextPlayerID atomic.Uint32
	nextNpcID    atomic.Uint32
}

// NewObjectIDGenerator creates a new ID generator.
func NewObjectIDGenerator() *ObjectIDGenerator {
	gen := &ObjectIDGenerator{}
	gen.nextPlayerID.Store(playerIDBase)
	gen.nextNpcID.Store(npcIDBase)
	return gen
}

// Next generates the next ID for kind.
func (g *ObjectIDGenerator) Next(kind Kind) uint32 {
	if kind == KindNpc {
		return g.nextNpcID.Add(1)
	}
	return g.nextPlayerID.Add(1)
}

// Observe moves the counter of id's range past id.
// Used when entities are restored with IDs issued by a previous run.
func (g *ObjectIDGenerator) Observe(id uint32) {
	counter := &g.nextPlayerID
	if KindOf(id) == KindNpc {
		counter = &g.nextNpcID
	}
	for {
		cur := counter.Load()
		if cur >= id || counter.CompareAndSwap(cur, id) {
			return
		}
	}
}

// KindOf returns the kind encoded in id's range.
func KindOf(id uint32) Kind {
	if id >= npcIDBase && id < npcIDEnd {
		return KindNpc
	}
	return KindPlayer
}
