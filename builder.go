package hako

import (
	"bytes"
	"slices"
)

type builderValue struct {
	push func(w *World, dst *archetype)
	id   EcsTypeID
}

// EntityBuilder spawns entities straight into the archetype of a fixed
// component set, without the intermediate migrations a Spawn followed by one
// Insert per component would cause. A builder can be reused; values are
// copied into every entity it spawns.
type EntityBuilder struct {
	world  *World
	values []builderValue
	mask   bitmask256
}

// NewBuilder returns an empty builder for w.
func NewBuilder(w *World) *EntityBuilder {
	return &EntityBuilder{world: w}
}

func (b *EntityBuilder) set(id EcsTypeID, push func(w *World, dst *archetype)) {
	b.mask.set(uint8(id))
	if i := slices.IndexFunc(b.values, func(v builderValue) bool { return v.id == id }); i >= 0 {
		b.values[i].push = push
		return
	}
	b.values = append(b.values, builderValue{id: id, push: push})
}

// With adds v as h's component for every entity b spawns, replacing any
// value given for h before.
func With[T any](b *EntityBuilder, h Handle[T], v T) *EntityBuilder {
	b.world.assertWorld(h.world)
	b.set(h.id, func(w *World, dst *archetype) {
		cols := h.columns(w)
		col := dst.columnIndices[h.id]
		cols.cols[col] = append(cols.cols[col], v)
	})
	return b
}

// WithBytes is With for a dynamic component. data is copied and must be
// exactly h.Layout().Size bytes long.
func WithBytes(b *EntityBuilder, h DynHandle, data []byte) *EntityBuilder {
	b.world.assertWorld(h.world)
	h.checkLen(data)
	data = bytes.Clone(data)
	b.set(h.id, func(w *World, dst *archetype) {
		h.columns(w).cols[dst.columnIndices[h.id]].Push(data)
	})
	return b
}

// Spawn creates one entity holding every component given to b.
func (b *EntityBuilder) Spawn() Entity {
	w := b.world
	w.assertNoLiveQueries("spawn")
	dst := w.findOrCreateArchetype(b.mask)
	return b.spawnInto(dst)
}

// SpawnN creates n entities holding every component given to b.
func (b *EntityBuilder) SpawnN(n int) []Entity {
	w := b.world
	w.assertNoLiveQueries("spawn")
	dst := w.findOrCreateArchetype(b.mask)
	out := make([]Entity, n)
	for i := range out {
		out[i] = b.spawnInto(dst)
	}
	return out
}

func (b *EntityBuilder) spawnInto(dst *archetype) Entity {
	e := b.world.spawnInto(dst)
	for _, v := range b.values {
		v.push(b.world, dst)
	}
	return e
}
