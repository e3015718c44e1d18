package hako

import "reflect"

// Handle is the only path to the storage of one statically typed component
// family. The World owns the columns; a Handle is the token that names them and
// is bound to the World that created it. Using it with any other World panics.
type Handle[T any] struct {
	world WorldID
	id    EcsTypeID
}

// NewHandle registers a new column family for T. Two handles of the same Go
// type are two independent component types.
func NewHandle[T any](w *World) Handle[T] {
	name := reflect.TypeFor[T]().String()
	id := w.components.register(&staticColumns[T]{typeName: name})
	logComponentRegistered(&w.logger, id, name)
	return Handle[T]{world: w.id, id: id}
}

// ID returns the component's EcsTypeID.
func (h Handle[T]) ID() EcsTypeID {
	return h.id
}

// World returns the id of the World the handle belongs to.
func (h Handle[T]) World() WorldID {
	return h.world
}

func (h Handle[T]) columns(w *World) *staticColumns[T] {
	w.assertWorld(h.world)
	return w.components.get(h.id).(*staticColumns[T])
}

// Insert sets e's component to v. If e already had one it is overwritten in
// place, the entity keeps its archetype and the old value is returned with
// true. Otherwise e migrates to the archetype that also holds this component.
// Insert panics if e is dead.
func (h Handle[T]) Insert(w *World, e Entity, v T) (T, bool) {
	cols := h.columns(w)
	w.assertNoLiveQueries("insert")
	w.flushReserved()

	meta, ok := w.entities.meta(e)
	if !ok {
		panic(deadEntityPanic("insert", e))
	}
	a := w.archetypes.archetypes[meta.archetype]
	if col, ok := a.columnIndices[h.id]; ok {
		cell := &cols.cols[col][meta.row]
		old := *cell
		*cell = v
		return old, true
	}

	dst, row, _ := w.moveOnInsert(e, h.id)
	col := dst.columnIndices[h.id]
	if len(cols.cols[col]) != row {
		panic("ecs: column out of step with its archetype")
	}
	cols.cols[col] = append(cols.cols[col], v)
	var zero T
	return zero, false
}

// Remove takes the component off e and returns it. e migrates to the
// archetype without this component. It returns false if e did not have the
// component, and panics if e is dead.
func (h Handle[T]) Remove(w *World, e Entity) (T, bool) {
	cols := h.columns(w)
	w.assertNoLiveQueries("remove")
	w.flushReserved()

	var zero T
	meta, ok := w.entities.meta(e)
	if !ok {
		panic(deadEntityPanic("remove", e))
	}
	if !w.archetypes.archetypes[meta.archetype].has(h.id) {
		return zero, false
	}
	src, row, _ := w.moveOnRemove(e, h.id)
	return cols.swapRemove(src.columnIndices[h.id], row), true
}

// Get returns a pointer to e's component, or nil if e is dead or does not
// have it. It also returns nil while a Write query holds the component, so
// that query stays the only mutable view. The pointer is invalidated by the
// next structural operation.
func (h Handle[T]) Get(w *World, e Entity) *T {
	cols := h.columns(w)
	if cols.guard().exclusive() {
		return nil
	}
	meta, ok := w.entities.meta(e)
	if !ok {
		return nil
	}
	a := w.archetypes.archetypes[meta.archetype]
	col, ok := a.columnIndices[h.id]
	if !ok {
		return nil
	}
	return &cols.cols[col][meta.row]
}

// Has reports whether e is alive and has the component.
func (h Handle[T]) Has(w *World, e Entity) bool {
	w.assertWorld(h.world)
	meta, ok := w.entities.meta(e)
	return ok && w.archetypes.archetypes[meta.archetype].has(h.id)
}
