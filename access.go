package hako

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/rotisserie/eris"
)

// Access is the set of component types a query or system reads and the set
// it writes. A valid Access never holds an id in both sets, and two Accesses
// can run side by side only when neither writes what the other touches.
//
// The zero Access is empty and ready to use.
type Access struct {
	read  *roaring.Bitmap
	write *roaring.Bitmap
}

// NewAccess returns an empty Access.
func NewAccess() Access {
	return Access{read: roaring.New(), write: roaring.New()}
}

var emptyBitmap = roaring.New()

func orEmpty(b *roaring.Bitmap) *roaring.Bitmap {
	if b == nil {
		return emptyBitmap
	}
	return b
}

func (a *Access) lazyInit() {
	if a.read == nil {
		a.read = roaring.New()
	}
	if a.write == nil {
		a.write = roaring.New()
	}
}

// InsertRead records a shared borrow of id. It fails if id is already
// written.
func (a *Access) InsertRead(id EcsTypeID) error {
	a.lazyInit()
	if a.write.Contains(uint32(id)) {
		return eris.Wrapf(ErrAccessConflict, "type %d is read and written", id)
	}
	a.read.Add(uint32(id))
	return nil
}

// InsertWrite records an exclusive borrow of id. It fails if id is already
// read or written.
func (a *Access) InsertWrite(id EcsTypeID) error {
	a.lazyInit()
	if a.write.Contains(uint32(id)) {
		return eris.Wrapf(ErrAccessConflict, "type %d is written twice", id)
	}
	if a.read.Contains(uint32(id)) {
		return eris.Wrapf(ErrAccessConflict, "type %d is read and written", id)
	}
	a.write.Add(uint32(id))
	return nil
}

// conflictSet returns the ids that keep a and o from holding at the same
// time: written by both, or written by one and read by the other.
func (a Access) conflictSet(o Access) *roaring.Bitmap {
	aw, ar := orEmpty(a.write), orEmpty(a.read)
	ow, or := orEmpty(o.write), orEmpty(o.read)
	out := roaring.And(aw, ow)
	out.Or(roaring.And(aw, or))
	out.Or(roaring.And(ar, ow))
	return out
}

// Conflicts reports whether a and o cannot be held at the same time.
func (a Access) Conflicts(o Access) bool {
	aw, ar := orEmpty(a.write), orEmpty(a.read)
	ow, or := orEmpty(o.write), orEmpty(o.read)
	return aw.Intersects(ow) || aw.Intersects(or) || ar.Intersects(ow)
}

// JoinWith merges o into a. If the two conflict, a is left unchanged and the
// error lists the conflicting ids.
func (a *Access) JoinWith(o Access) error {
	if conflict := a.conflictSet(o); !conflict.IsEmpty() {
		return eris.Wrapf(ErrAccessConflict, "types %s", formatIDs(conflict))
	}
	a.lazyInit()
	a.read.Or(orEmpty(o.read))
	a.write.Or(orEmpty(o.write))
	return nil
}

// JoinAccesses merges all of accs into one Access, failing on the first
// conflict.
func JoinAccesses(accs ...Access) (Access, error) {
	out := NewAccess()
	for _, acc := range accs {
		if err := out.JoinWith(acc); err != nil {
			return Access{}, err
		}
	}
	return out, nil
}

// Reads returns the ids borrowed shared, ascending.
func (a Access) Reads() []EcsTypeID {
	return toIDs(orEmpty(a.read))
}

// Writes returns the ids borrowed exclusively, ascending.
func (a Access) Writes() []EcsTypeID {
	return toIDs(orEmpty(a.write))
}

// IsEmpty reports whether a borrows nothing.
func (a Access) IsEmpty() bool {
	return orEmpty(a.read).IsEmpty() && orEmpty(a.write).IsEmpty()
}

// Clone returns an Access that shares no storage with a.
func (a Access) Clone() Access {
	return Access{read: orEmpty(a.read).Clone(), write: orEmpty(a.write).Clone()}
}

func (a Access) String() string {
	return fmt.Sprintf("read%s write%s", formatIDs(orEmpty(a.read)), formatIDs(orEmpty(a.write)))
}

func toIDs(b *roaring.Bitmap) []EcsTypeID {
	ids := make([]EcsTypeID, 0, b.GetCardinality())
	it := b.Iterator()
	for it.HasNext() {
		ids = append(ids, EcsTypeID(it.Next()))
	}
	return ids
}

func formatIDs(b *roaring.Bitmap) string {
	var sb strings.Builder
	sb.WriteByte('[')
	it := b.Iterator()
	for first := true; it.HasNext(); first = false {
		if !first {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", it.Next())
	}
	sb.WriteByte(']')
	return sb.String()
}
