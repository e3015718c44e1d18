package hako

import "sync/atomic"

// MaxComponentTypes is the number of component handles, static or dynamic, one
// World can register. Archetype signatures are 256-bit masks.
const MaxComponentTypes = 256

// Entity is an opaque row identity. ID is a recyclable slot index and Version
// is bumped every time the slot is freed, so a despawned Entity never refers to
// the slot's next occupant.
type Entity struct {
	ID      uint32
	Version uint32
}

// EcsTypeID is the dense handle a World assigns to one component column family.
type EcsTypeID uint32

// WorldID identifies a World for the lifetime of the process. Handles carry the
// WorldID of the World that created them.
type WorldID uint64

var lastWorldID atomic.Uint64

func newWorldID() WorldID {
	return WorldID(lastWorldID.Add(1))
}

// entityMeta records where a live entity is stored.
type entityMeta struct {
	archetype int // index in the archetype table
	row       int // position in the archetype's entity list and in each of its columns
}
