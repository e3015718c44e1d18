// Package hako is an in-memory columnar entity-component store.
//
// Entities are grouped into archetypes by their exact set of components, and
// each component type keeps one contiguous column per archetype. Adding or
// removing a component migrates the entity's whole row to another archetype.
// Component storage is reached only through Handles, and queries borrow whole
// column families under a single-writer/many-readers discipline that is
// checked when a query or system is composed and again when it is acquired.
package hako

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// World owns entities, archetypes and every component column family.
type World struct {
	logger      zerolog.Logger
	resources   *Resources
	events      *EventBus
	archetypes  archetypeTable
	components  componentRegistry
	entities    entityAllocator
	liveQueries atomic.Int32
	id          WorldID
}

// NewWorld creates an empty World. Archetype 0, the empty component set,
// exists from the start and is where every new entity begins.
func NewWorld(opts ...WorldOption) *World {
	cfg := defaultWorldConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	w := &World{
		id:        newWorldID(),
		logger:    cfg.logger,
		resources: &Resources{},
		events:    &EventBus{},
	}
	w.entities.init(cfg.initialCapacity)
	w.archetypes.init()
	w.findOrCreateArchetype(bitmask256{})
	return w
}

// ID returns the identifier Handles of this World are bound to.
func (w *World) ID() WorldID {
	return w.id
}

// Resources returns the World's typed singleton store.
func (w *World) Resources() *Resources {
	return w.resources
}

// Events returns the bus the World publishes ArchetypeCreated and
// EntityDespawned on. Handlers run synchronously inside the structural
// operation and must not mutate the World.
func (w *World) Events() *EventBus {
	return w.events
}

// Spawn creates an entity with no components.
func (w *World) Spawn() Entity {
	w.assertNoLiveQueries("spawn")
	return w.spawnInto(w.archetypes.archetypes[0])
}

// ReserveEntity hands out an entity identity without touching archetype
// state. It is safe to call while queries are live and from concurrently
// running systems. The entity becomes alive, with no components, at the next
// structural operation.
func (w *World) ReserveEntity() Entity {
	return w.entities.reserve()
}

// Despawn removes e and drops all of its components. It reports false if e
// was already dead.
func (w *World) Despawn(e Entity) bool {
	w.assertNoLiveQueries("despawn")
	w.flushReserved()
	if !w.entities.despawn(e, w.dropRow) {
		return false
	}
	Publish(w.events, EntityDespawned{Entity: e})
	return true
}

// IsAlive reports whether e is a live entity of this World. Reserved entities
// are not alive until they have been fixed up.
func (w *World) IsAlive(e Entity) bool {
	return w.entities.isAlive(e)
}

// ArchetypeIndex returns the index of the archetype e currently belongs to.
func (w *World) ArchetypeIndex(e Entity) (int, bool) {
	meta, ok := w.entities.meta(e)
	return meta.archetype, ok
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.entities.live
}

// NumArchetypes returns the number of archetypes created so far.
func (w *World) NumArchetypes() int {
	return len(w.archetypes.archetypes)
}

func (w *World) placeInEmpty(e Entity) int {
	a := w.archetypes.archetypes[0]
	a.entities = append(a.entities, e)
	return len(a.entities) - 1
}

// flushReserved makes every reserved entity alive in archetype 0.
func (w *World) flushReserved() {
	w.entities.fixReserved(w.placeInEmpty)
}

// spawnInto creates an entity directly in a. The caller must push a cell into
// every column of a right after.
func (w *World) spawnInto(a *archetype) Entity {
	w.flushReserved()
	return w.entities.spawn(a.index, func(e Entity) int {
		a.entities = append(a.entities, e)
		return len(a.entities) - 1
	})
}

func (w *World) assertWorld(id WorldID) {
	if id != w.id {
		panic(fmt.Sprintf("ecs: mismatched world ids: handle belongs to world %d, used with world %d", id, w.id))
	}
}

func (w *World) assertNoLiveQueries(op string) {
	if n := w.liveQueries.Load(); n != 0 {
		panic(fmt.Sprintf("ecs: %s while %d query borrow(s) are live", op, n))
	}
}

func deadEntityPanic(op string, e Entity) string {
	return fmt.Sprintf("ecs: %s on unexpected dead entity %d (version %d)", op, e.ID, e.Version)
}
