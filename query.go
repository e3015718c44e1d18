package hako

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// queryCache remembers which archetypes a term matches. Archetypes are only
// ever appended, so a refresh tests just the ones created since the last.
type queryCache struct {
	match    func(*archetype) bool
	matching *roaring.Bitmap
	scanned  int
}

func newQueryCache(match func(*archetype) bool) *queryCache {
	return &queryCache{match: match, matching: roaring.New()}
}

func (c *queryCache) refresh(t *archetypeTable) {
	for i := c.scanned; i < len(t.archetypes); i++ {
		if c.match(t.archetypes[i]) {
			c.matching.Add(uint32(i))
		}
	}
	c.scanned = len(t.archetypes)
}

// Query is a live, borrowed view over every row whose archetype matches a
// Term. While any Query of a World is held, spawning, despawning, inserting
// and removing on that World panic. Call Release when done.
//
//	q, err := hako.NewQuery(w, hako.Join2(hako.Read(pos), hako.Write(vel)))
//	if err != nil {
//		return err
//	}
//	defer q.Release()
//	for q.Next() {
//		t := q.Get()
//		t.V2.X += t.V1.X
//	}
type Query[I any] struct {
	world    *World
	binding  binding[I]
	cache    *queryCache
	access   Access
	it       roaring.IntPeekable
	cur      cursor[I]
	item     I
	released bool
}

// NewQuery checks the term's access set, borrows its columns and returns a
// Query positioned before the first row. It fails with ErrAccessConflict if
// the term borrows a component both mutably and otherwise, and with
// ErrBorrowConflict if a column is held elsewhere in an incompatible mode.
func NewQuery[I any](w *World, term Term[I]) (*Query[I], error) {
	var acc Access
	if err := term.access(&acc); err != nil {
		return nil, err
	}
	return openQuery(w, term, acc, newQueryCache(term.matcher(w)))
}

// openQuery borrows term and registers the query as live. cache may be
// carried over from an earlier query of the same term.
func openQuery[I any](w *World, term Term[I], acc Access, cache *queryCache) (*Query[I], error) {
	b, err := term.bind(w)
	if err != nil {
		return nil, err
	}
	w.liveQueries.Add(1)
	cache.refresh(&w.archetypes)
	q := &Query[I]{world: w, binding: b, cache: cache, access: acc}
	q.Reset()
	return q, nil
}

func (q *Query[I]) assertLive() {
	if q.released {
		panic("ecs: query used after release")
	}
}

// Next advances to the next row, skipping empty archetypes, and reports
// whether there is one. Archetypes are visited in creation order and rows in
// storage order.
func (q *Query[I]) Next() bool {
	q.assertLive()
	for {
		if q.cur != nil {
			if v, ok := q.cur.next(); ok {
				q.item = v
				return true
			}
			q.cur = nil
		}
		if !q.it.HasNext() {
			var zero I
			q.item = zero
			return false
		}
		a := q.world.archetypes.archetypes[q.it.Next()]
		if len(a.entities) == 0 {
			continue
		}
		q.cur = q.binding.cursor(a)
	}
}

// Get returns the item of the current row.
func (q *Query[I]) Get() I {
	return q.item
}

// Reset rewinds the query to before the first row.
func (q *Query[I]) Reset() {
	q.assertLive()
	q.it = q.cache.matching.Iterator()
	q.cur = nil
}

// All rewinds the query and yields every item.
func (q *Query[I]) All() iter.Seq[I] {
	return func(yield func(I) bool) {
		q.Reset()
		for q.Next() {
			if !yield(q.item) {
				return
			}
		}
	}
}

// Collect rewinds the query and returns every item.
func (q *Query[I]) Collect() []I {
	out := make([]I, 0, q.Count())
	for v := range q.All() {
		out = append(out, v)
	}
	return out
}

// Count returns the number of rows the query yields. It does not move the
// query.
func (q *Query[I]) Count() int {
	q.assertLive()
	n := 0
	it := q.cache.matching.Iterator()
	for it.HasNext() {
		n += len(q.world.archetypes.archetypes[it.Next()].entities)
	}
	return n
}

// Access returns the query's access set.
func (q *Query[I]) Access() Access {
	return q.access.Clone()
}

// Release returns the query's borrows. It is safe to call more than once.
func (q *Query[I]) Release() {
	if q.released {
		return
	}
	q.released = true
	q.binding.release()
	q.world.liveQueries.Add(-1)
	q.cur = nil
}
