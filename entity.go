package hako

import (
	"math"
	"sync/atomic"
)

// entitySlot is the allocator's record for one entity index.
type entitySlot struct {
	meta    entityMeta
	version uint32
	alive   bool
}

// entityAllocator issues entity identities and tracks where live ones are
// stored. reserve is safe to call concurrently with anything that only reads
// the World; every other method needs exclusive access.
type entityAllocator struct {
	slots   []entitySlot
	freeIDs []uint32      // stack of recycled indices
	next    atomic.Uint64 // fresh indices handed out so far, fixed or not
	live    int
}

func (a *entityAllocator) init(capacity int) {
	a.slots = make([]entitySlot, 0, capacity)
	a.freeIDs = make([]uint32, 0, capacity)
}

// reserve hands out a fresh index without touching any archetype. The entity
// only becomes alive at the next fixReserved.
func (a *entityAllocator) reserve() Entity {
	id := a.next.Add(1) - 1
	if id >= math.MaxUint32 {
		panic("ecs: too many entities spawned")
	}
	return Entity{ID: uint32(id), Version: 1}
}

// fixReserved turns every index reserved since the last call into a live
// entity of archetype 0. place appends the entity to that archetype and
// returns its row.
func (a *entityAllocator) fixReserved(place func(Entity) int) {
	end := int(min(a.next.Load(), math.MaxUint32))
	for id := len(a.slots); id < end; id++ {
		e := Entity{ID: uint32(id), Version: 1}
		a.slots = append(a.slots, entitySlot{version: 1, alive: true})
		a.slots[id].meta = entityMeta{archetype: 0, row: place(e)}
		a.live++
	}
}

// spawn returns a live entity stored in archetype by place, recycling a freed
// index when one is available. Reserved indices must be fixed first.
func (a *entityAllocator) spawn(archetype int, place func(Entity) int) Entity {
	if n := len(a.freeIDs); n > 0 {
		id := a.freeIDs[n-1]
		a.freeIDs = a.freeIDs[:n-1]
		slot := &a.slots[id]
		e := Entity{ID: id, Version: slot.version}
		slot.alive = true
		slot.meta = entityMeta{archetype: archetype, row: place(e)}
		a.live++
		return e
	}
	e := a.reserve()
	if int(e.ID) != len(a.slots) {
		panic("ecs: entity reserved during a structural operation")
	}
	a.slots = append(a.slots, entitySlot{version: 1, alive: true})
	a.slots[e.ID].meta = entityMeta{archetype: archetype, row: place(e)}
	a.live++
	return e
}

// despawn hands e's last metadata to remove before marking the slot dead. It
// reports false, without calling remove, when e is already dead.
func (a *entityAllocator) despawn(e Entity, remove func(entityMeta)) bool {
	if !a.isAlive(e) {
		return false
	}
	slot := &a.slots[e.ID]
	remove(slot.meta)
	slot.alive = false
	slot.meta = entityMeta{archetype: -1, row: -1}
	slot.version++
	if slot.version == 0 {
		slot.version = 1
	}
	a.freeIDs = append(a.freeIDs, e.ID)
	a.live--
	return true
}

func (a *entityAllocator) isAlive(e Entity) bool {
	if int(e.ID) >= len(a.slots) {
		return false
	}
	slot := &a.slots[e.ID]
	return slot.alive && slot.version == e.Version
}

// meta returns where e is stored, or false if e is dead or was never fixed.
func (a *entityAllocator) meta(e Entity) (entityMeta, bool) {
	if !a.isAlive(e) {
		return entityMeta{}, false
	}
	return a.slots[e.ID].meta, true
}

// metaMut is meta returning a pointer into the slot table, or nil. The pointer
// is valid until the next fixReserved.
func (a *entityAllocator) metaMut(e Entity) *entityMeta {
	if !a.isAlive(e) {
		return nil
	}
	return &a.slots[e.ID].meta
}
