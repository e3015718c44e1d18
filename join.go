package hako

import "github.com/edwinsyarief/hako/internal/alignvec"

// Term is one composable piece of a query. It declares the columns it reads
// or writes, decides which archetypes it accepts, and yields one I per row of
// an accepted archetype. Terms are built with Entities, Read, Write,
// ReadBytes, WriteBytes, Maybe, Unsatisfied and Join2 to Join8.
type Term[I any] interface {
	// access records the term's reads and writes.
	access(acc *Access) error
	// matcher returns the archetype filter without borrowing anything.
	matcher(w *World) func(*archetype) bool
	// bind borrows the term's columns for one query.
	bind(w *World) (binding[I], error)
}

// binding is a Term with its column borrows held.
type binding[I any] interface {
	matches(a *archetype) bool
	// cursor starts a row walk over a, which must match.
	cursor(a *archetype) cursor[I]
	release()
}

// cursor walks the rows of one archetype.
type cursor[I any] interface {
	next() (I, bool)
}

func matchAll(*archetype) bool { return true }

// rowCounter yields nothing but keeps row parity with sibling terms.
type rowCounter struct {
	rows int
	i    int
}

func (c *rowCounter) step() bool {
	if c.i >= c.rows {
		return false
	}
	c.i++
	return true
}

// ---------------------------------------------------------------------------
// Entities

type entitiesTerm struct{}

// Entities yields the entity of each row. It borrows nothing and matches every
// archetype.
func Entities() Term[Entity] {
	return entitiesTerm{}
}

func (entitiesTerm) access(*Access) error { return nil }

func (entitiesTerm) matcher(*World) func(*archetype) bool { return matchAll }

func (t entitiesTerm) bind(*World) (binding[Entity], error) { return t, nil }

func (entitiesTerm) matches(*archetype) bool { return true }

func (entitiesTerm) cursor(a *archetype) cursor[Entity] {
	return &entityCursor{entities: a.entities}
}

func (entitiesTerm) release() {}

type entityCursor struct {
	entities []Entity
	i        int
}

func (c *entityCursor) next() (Entity, bool) {
	if c.i >= len(c.entities) {
		return Entity{}, false
	}
	e := c.entities[c.i]
	c.i++
	return e, true
}

// ---------------------------------------------------------------------------
// Static columns

type columnTerm[T any] struct {
	handle Handle[T]
	write  bool
}

// Read yields a pointer to the component of each row, borrowing the column
// family shared. It matches archetypes that hold the component.
func Read[T any](h Handle[T]) Term[*T] {
	return columnTerm[T]{handle: h}
}

// Write is Read with an exclusive borrow. It is the only live view of the
// column family for as long as the query is held.
func Write[T any](h Handle[T]) Term[*T] {
	return columnTerm[T]{handle: h, write: true}
}

func (t columnTerm[T]) access(acc *Access) error {
	if t.write {
		return acc.InsertWrite(t.handle.id)
	}
	return acc.InsertRead(t.handle.id)
}

func (t columnTerm[T]) matcher(w *World) func(*archetype) bool {
	w.assertWorld(t.handle.world)
	id := t.handle.id
	return func(a *archetype) bool { return a.has(id) }
}

func (t columnTerm[T]) bind(w *World) (binding[*T], error) {
	cols := t.handle.columns(w)
	if err := borrowColumns(cols, t.handle.id, t.write); err != nil {
		return nil, err
	}
	return &columnBinding[T]{cols: cols, id: t.handle.id, write: t.write}, nil
}

type columnBinding[T any] struct {
	cols  *staticColumns[T]
	id    EcsTypeID
	write bool
}

func (b *columnBinding[T]) matches(a *archetype) bool { return a.has(b.id) }

func (b *columnBinding[T]) cursor(a *archetype) cursor[*T] {
	return &sliceCursor[T]{items: b.cols.cols[a.columnIndices[b.id]]}
}

func (b *columnBinding[T]) release() { b.cols.guard().release(b.write) }

type sliceCursor[T any] struct {
	items []T
	i     int
}

func (c *sliceCursor[T]) next() (*T, bool) {
	if c.i >= len(c.items) {
		return nil, false
	}
	p := &c.items[c.i]
	c.i++
	return p, true
}

// ---------------------------------------------------------------------------
// Dynamic columns

type bytesTerm struct {
	handle DynHandle
	write  bool
}

// ReadBytes yields the raw bytes of a dynamic component per row, borrowing the
// column family shared.
func ReadBytes(h DynHandle) Term[[]byte] {
	return bytesTerm{handle: h}
}

// WriteBytes is ReadBytes with an exclusive borrow; writes through the yielded
// slices update the components.
func WriteBytes(h DynHandle) Term[[]byte] {
	return bytesTerm{handle: h, write: true}
}

func (t bytesTerm) access(acc *Access) error {
	if t.write {
		return acc.InsertWrite(t.handle.id)
	}
	return acc.InsertRead(t.handle.id)
}

func (t bytesTerm) matcher(w *World) func(*archetype) bool {
	w.assertWorld(t.handle.world)
	id := t.handle.id
	return func(a *archetype) bool { return a.has(id) }
}

func (t bytesTerm) bind(w *World) (binding[[]byte], error) {
	cols := t.handle.columns(w)
	if err := borrowColumns(cols, t.handle.id, t.write); err != nil {
		return nil, err
	}
	return &bytesBinding{cols: cols, id: t.handle.id, write: t.write}, nil
}

type bytesBinding struct {
	cols  *dynamicColumns
	id    EcsTypeID
	write bool
}

func (b *bytesBinding) matches(a *archetype) bool { return a.has(b.id) }

func (b *bytesBinding) cursor(a *archetype) cursor[[]byte] {
	vec := b.cols.cols[a.columnIndices[b.id]]
	return &vecCursor{vec: vec, n: vec.Len()}
}

func (b *bytesBinding) release() { b.cols.guard().release(b.write) }

type vecCursor struct {
	vec alignvec.Vec
	n   int
	i   int
}

func (c *vecCursor) next() ([]byte, bool) {
	if c.i >= c.n {
		return nil, false
	}
	b := c.vec.Get(c.i)
	c.i++
	return b, true
}

// ---------------------------------------------------------------------------
// Maybe

// Optional is what a Maybe term yields: Value is meaningful only when Ok.
type Optional[T any] struct {
	Value T
	Ok    bool
}

type maybeTerm[I any] struct {
	inner Term[I]
}

// Maybe matches every archetype. Rows of archetypes the inner term matches
// yield its item with Ok set; other rows yield an empty Optional, so sibling
// terms stay row-aligned either way. The inner term's borrows are still taken.
func Maybe[I any](inner Term[I]) Term[Optional[I]] {
	return maybeTerm[I]{inner: inner}
}

func (t maybeTerm[I]) access(acc *Access) error { return t.inner.access(acc) }

func (t maybeTerm[I]) matcher(w *World) func(*archetype) bool {
	t.inner.matcher(w)
	return matchAll
}

func (t maybeTerm[I]) bind(w *World) (binding[Optional[I]], error) {
	inner, err := t.inner.bind(w)
	if err != nil {
		return nil, err
	}
	return &maybeBinding[I]{inner: inner}, nil
}

type maybeBinding[I any] struct {
	inner binding[I]
}

func (b *maybeBinding[I]) matches(*archetype) bool { return true }

func (b *maybeBinding[I]) cursor(a *archetype) cursor[Optional[I]] {
	if b.inner.matches(a) {
		return &someCursor[I]{inner: b.inner.cursor(a)}
	}
	return &noneCursor[I]{rows: rowCounter{rows: len(a.entities)}}
}

func (b *maybeBinding[I]) release() { b.inner.release() }

type someCursor[I any] struct {
	inner cursor[I]
}

func (c *someCursor[I]) next() (Optional[I], bool) {
	v, ok := c.inner.next()
	if !ok {
		return Optional[I]{}, false
	}
	return Optional[I]{Value: v, Ok: true}, true
}

type noneCursor[I any] struct {
	rows rowCounter
}

func (c *noneCursor[I]) next() (Optional[I], bool) {
	return Optional[I]{}, c.rows.step()
}

// ---------------------------------------------------------------------------
// Unsatisfied

type unsatisfiedTerm[I any] struct {
	inner Term[I]
}

// Unsatisfied matches exactly the archetypes the inner term does not match and
// yields an empty struct per row. It borrows nothing and adds nothing to the
// query's access set.
func Unsatisfied[I any](inner Term[I]) Term[struct{}] {
	return unsatisfiedTerm[I]{inner: inner}
}

func (t unsatisfiedTerm[I]) access(*Access) error { return nil }

func (t unsatisfiedTerm[I]) matcher(w *World) func(*archetype) bool {
	inner := t.inner.matcher(w)
	return func(a *archetype) bool { return !inner(a) }
}

func (t unsatisfiedTerm[I]) bind(w *World) (binding[struct{}], error) {
	return unsatisfiedBinding{match: t.matcher(w)}, nil
}

type unsatisfiedBinding struct {
	match func(*archetype) bool
}

func (b unsatisfiedBinding) matches(a *archetype) bool { return b.match(a) }

func (b unsatisfiedBinding) cursor(a *archetype) cursor[struct{}] {
	return &unitCursor{rows: rowCounter{rows: len(a.entities)}}
}

func (b unsatisfiedBinding) release() {}

type unitCursor struct {
	rows rowCounter
}

func (c *unitCursor) next() (struct{}, bool) {
	return struct{}{}, c.rows.step()
}
