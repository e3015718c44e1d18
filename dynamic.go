package hako

import (
	"bytes"
	"fmt"
	"unsafe"

	"github.com/rotisserie/eris"

	"github.com/edwinsyarief/hako/internal/alignvec"
)

// Layout is the memory shape of a dynamic component: Size bytes, starting at a
// multiple of Align.
type Layout = alignvec.Layout

// MaxAlign is the largest alignment a dynamic component may declare.
const MaxAlign = alignvec.MaxAlign

// LayoutOf returns the layout of T, for dynamic components that mirror a Go
// type.
func LayoutOf[T any]() Layout {
	var zero T
	return Layout{Size: unsafe.Sizeof(zero), Align: unsafe.Alignof(zero)}
}

// Reinterpret views b as a *T when its length equals T's size and its address
// is aligned for T. The pointer aliases b. T must not contain Go pointers.
func Reinterpret[T any](b []byte) (*T, bool) {
	var zero T
	size := unsafe.Sizeof(zero)
	if uintptr(len(b)) != size {
		return nil, false
	}
	if size == 0 {
		return new(T), true
	}
	p := unsafe.Pointer(unsafe.SliceData(b))
	if uintptr(p)%unsafe.Alignof(zero) != 0 {
		return nil, false
	}
	return (*T)(p), true
}

// BytesOf returns the raw bytes of *v, aliasing v.
func BytesOf[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// DynHandle is the Handle of a component whose type is only known at runtime
// as a Layout. Values go in and out as byte slices of exactly Layout.Size
// bytes.
type DynHandle struct {
	layout Layout
	world  WorldID
	id     EcsTypeID
}

// NewDynamicHandle registers a new byte column family with the given layout.
func NewDynamicHandle(w *World, layout Layout) (DynHandle, error) {
	if err := layout.Validate(); err != nil {
		return DynHandle{}, eris.Wrap(err, "failed to register dynamic component")
	}
	cols := &dynamicColumns{layout: layout}
	id := w.components.register(cols)
	logComponentRegistered(&w.logger, id, cols.name())
	return DynHandle{layout: layout, world: w.id, id: id}, nil
}

// ID returns the component's EcsTypeID.
func (h DynHandle) ID() EcsTypeID {
	return h.id
}

// Layout returns the layout every value of this component has.
func (h DynHandle) Layout() Layout {
	return h.layout
}

func (h DynHandle) columns(w *World) *dynamicColumns {
	w.assertWorld(h.world)
	return w.components.get(h.id).(*dynamicColumns)
}

func (h DynHandle) checkLen(data []byte) {
	if uintptr(len(data)) != h.layout.Size {
		panic(fmt.Sprintf("ecs: %d bytes given for a component of layout %s", len(data), h.layout))
	}
}

// Insert copies data into e's component. It returns a copy of the previous
// bytes and true when e already had the component, in which case e keeps its
// archetype. It panics if e is dead or data has the wrong length.
func (h DynHandle) Insert(w *World, e Entity, data []byte) ([]byte, bool) {
	cols := h.columns(w)
	h.checkLen(data)
	w.assertNoLiveQueries("insert")
	w.flushReserved()

	meta, ok := w.entities.meta(e)
	if !ok {
		panic(deadEntityPanic("insert", e))
	}
	a := w.archetypes.archetypes[meta.archetype]
	if col, ok := a.columnIndices[h.id]; ok {
		cell := cols.cols[col].Get(meta.row)
		old := bytes.Clone(cell)
		copy(cell, data)
		return old, true
	}

	dst, row, _ := w.moveOnInsert(e, h.id)
	vec := cols.cols[dst.columnIndices[h.id]]
	if vec.Len() != row {
		panic("ecs: column out of step with its archetype")
	}
	vec.Push(data)
	return nil, false
}

// Remove takes the component off e and returns a copy of its bytes. It
// returns false if e did not have the component, and panics if e is dead.
func (h DynHandle) Remove(w *World, e Entity) ([]byte, bool) {
	cols := h.columns(w)
	w.assertNoLiveQueries("remove")
	w.flushReserved()

	meta, ok := w.entities.meta(e)
	if !ok {
		panic(deadEntityPanic("remove", e))
	}
	if !w.archetypes.archetypes[meta.archetype].has(h.id) {
		return nil, false
	}
	src, row, _ := w.moveOnRemove(e, h.id)
	return cols.cols[src.columnIndices[h.id]].SwapRemove(row), true
}

// Get returns e's component bytes, aliasing the column, or nil if e is dead
// or does not have it, or while a WriteBytes query holds the component.
// Writing through the slice updates the component. It is invalidated by the
// next structural operation.
func (h DynHandle) Get(w *World, e Entity) []byte {
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
	return cols.cols[col].Get(meta.row)
}

// Has reports whether e is alive and has the component.
func (h DynHandle) Has(w *World, e Entity) bool {
	w.assertWorld(h.world)
	meta, ok := w.entities.meta(e)
	return ok && w.archetypes.archetypes[meta.archetype].has(h.id)
}
