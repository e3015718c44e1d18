package hako

import "slices"

// archetype groups the entities that hold exactly the component set in mask.
// entities[i] owns row i of every column listed in columnIndices.
type archetype struct {
	columnIndices map[EcsTypeID]int // type id -> slot in that type's column family
	entities      []Entity
	types         []EcsTypeID // ascending
	mask          bitmask256
	index         int // position in archetypeTable.archetypes
}

func (a *archetype) has(id EcsTypeID) bool {
	return a.mask.containsBit(uint8(id))
}

// swapRemoveEntity removes row from the entity list by moving the last entity
// into it. It returns the moved entity, if there was one.
func (a *archetype) swapRemoveEntity(row int) (Entity, bool) {
	last := len(a.entities) - 1
	if row == last {
		a.entities = a.entities[:last]
		return Entity{}, false
	}
	moved := a.entities[last]
	a.entities[row] = moved
	a.entities = a.entities[:last]
	return moved, true
}

// archetypeTable interns component sets. Archetypes are never removed, so an
// index stays valid for the World's lifetime and creation order is index order.
type archetypeTable struct {
	maskToIndex map[bitmask256]int
	archetypes  []*archetype
	version     uint32 // bumped whenever an archetype is created
}

func (t *archetypeTable) init() {
	t.maskToIndex = make(map[bitmask256]int)
	t.archetypes = make([]*archetype, 0, 16)
}

// findOrCreateArchetype returns the archetype for mask, creating it and one
// empty column in each member family when it does not exist yet.
func (w *World) findOrCreateArchetype(mask bitmask256) *archetype {
	if idx, ok := w.archetypes.maskToIndex[mask]; ok {
		return w.archetypes.archetypes[idx]
	}
	a := &archetype{
		index:         len(w.archetypes.archetypes),
		mask:          mask,
		columnIndices: make(map[EcsTypeID]int, mask.count()),
		types:         make([]EcsTypeID, 0, mask.count()),
	}
	for i := range w.components.len() {
		id := EcsTypeID(i)
		if !mask.containsBit(uint8(id)) {
			continue
		}
		a.types = append(a.types, id)
		a.columnIndices[id] = w.components.get(id).pushEmptyColumn()
	}
	w.archetypes.archetypes = append(w.archetypes.archetypes, a)
	w.archetypes.maskToIndex[mask] = a.index
	w.archetypes.version++

	logArchetypeCreated(&w.logger, a, &w.components)
	Publish(w.events, ArchetypeCreated{Index: a.index, Types: slices.Clone(a.types)})
	return a
}

// relocate swap-removes e from src's entity list and appends it to dst,
// keeping the metadata of e and of the entity moved into its old row current.
// Columns must already have been moved by the caller.
func (w *World) relocate(e Entity, meta *entityMeta, src, dst *archetype) {
	if moved, ok := src.swapRemoveEntity(meta.row); ok {
		w.entities.metaMut(moved).row = meta.row
	}
	meta.archetype = dst.index
	meta.row = len(dst.entities)
	dst.entities = append(dst.entities, e)
}

// moveOnInsert migrates e to the archetype that additionally holds id. Every
// column e already has is moved into the destination; the caller appends id's
// own value, which must land at the returned row. It reports false if e is
// dead.
func (w *World) moveOnInsert(e Entity, id EcsTypeID) (*archetype, int, bool) {
	meta := w.entities.metaMut(e)
	if meta == nil {
		return nil, 0, false
	}
	src := w.archetypes.archetypes[meta.archetype]
	mask := src.mask
	mask.set(uint8(id))
	dst := w.findOrCreateArchetype(mask)

	for _, t := range src.types {
		w.components.get(t).swapRemoveTo(src.columnIndices[t], dst.columnIndices[t], meta.row)
	}
	w.relocate(e, meta, src, dst)
	return dst, meta.row, true
}

// moveOnRemove migrates e to the archetype without id, moving every other
// column. It returns the archetype and row e occupied before the move: the
// caller must still swap-remove id's cell from there. It reports false if e is
// dead.
func (w *World) moveOnRemove(e Entity, id EcsTypeID) (*archetype, int, bool) {
	meta := w.entities.metaMut(e)
	if meta == nil {
		return nil, 0, false
	}
	src := w.archetypes.archetypes[meta.archetype]
	row := meta.row
	mask := src.mask
	mask.unset(uint8(id))
	dst := w.findOrCreateArchetype(mask)

	for _, t := range src.types {
		if t == id {
			continue
		}
		w.components.get(t).swapRemoveTo(src.columnIndices[t], dst.columnIndices[t], row)
	}
	w.relocate(e, meta, src, dst)
	return src, row, true
}

// dropRow removes the entity stored at meta together with all of its cells.
func (w *World) dropRow(meta entityMeta) {
	a := w.archetypes.archetypes[meta.archetype]
	for _, t := range a.types {
		w.components.get(t).swapRemoveDrop(a.columnIndices[t], meta.row)
	}
	if moved, ok := a.swapRemoveEntity(meta.row); ok {
		w.entities.metaMut(moved).row = meta.row
	}
}
