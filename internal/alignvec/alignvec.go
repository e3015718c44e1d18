// Package alignvec implements growable byte buffers whose elements honour a
// layout declared at runtime: a size plus a power-of-two alignment.
//
// The alignment is resolved once, in New, to one of a closed set of backing
// kinds. Alignments up to the machine word use a slice of the matching unsigned
// integer type as the chunk element, so the Go allocator provides the alignment
// for free; larger alignments use a byte buffer whose base is padded to the
// boundary. An element occupies stride/chunk consecutive chunks, and every move
// or drop works on that chunk range.
package alignvec

import (
	"bytes"
	"fmt"
	"slices"
	"unsafe"

	"github.com/rotisserie/eris"
)

// MaxAlign is the largest alignment a Layout may declare.
const MaxAlign = 1 << 29

// ErrInvalidLayout is returned by Layout.Validate.
var ErrInvalidLayout = eris.New("invalid layout")

// Layout describes the memory shape of one element.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// Validate reports whether the layout can back a Vec.
func (l Layout) Validate() error {
	if l.Align == 0 || l.Align&(l.Align-1) != 0 {
		return eris.Wrapf(ErrInvalidLayout, "alignment %d is not a power of two", l.Align)
	}
	if l.Align > MaxAlign {
		return eris.Wrapf(ErrInvalidLayout, "alignment %d exceeds %d", l.Align, MaxAlign)
	}
	if uint64(l.Size) > 1<<40 {
		return eris.Wrapf(ErrInvalidLayout, "size %d is too large", l.Size)
	}
	return nil
}

// Stride is the size rounded up to the alignment: the distance between two
// consecutive elements.
func (l Layout) Stride() uintptr {
	return (l.Size + l.Align - 1) &^ (l.Align - 1)
}

func (l Layout) String() string {
	return fmt.Sprintf("{size:%d,align:%d}", l.Size, l.Align)
}

// Vec is a growable sequence of elements sharing one Layout. Slices returned by
// Get alias the buffer and are invalidated by the next Push or removal.
type Vec interface {
	Layout() Layout
	Len() int
	// Push appends a copy of b, which must be exactly Layout().Size bytes long.
	Push(b []byte)
	Get(i int) []byte
	// SwapRemove removes element i by moving the last element into its place and
	// returns a copy of the removed bytes.
	SwapRemove(i int) []byte
	// SwapRemoveTo is SwapRemove, appending the removed element to dst instead
	// of returning it. dst must have the same layout.
	SwapRemoveTo(dst Vec, i int)
	SwapRemoveDrop(i int)
}

// New returns an empty Vec for l. It panics if l is invalid.
func New(l Layout) Vec {
	if err := l.Validate(); err != nil {
		panic(eris.ToString(err, false))
	}
	if l.Size == 0 {
		return &zeroVec{layout: l}
	}
	switch l.Align {
	case 1:
		return newChunkVec[uint8](l)
	case 2:
		return newChunkVec[uint16](l)
	case 4:
		return newChunkVec[uint32](l)
	case 8:
		if unsafe.Alignof(uint64(0)) == 8 {
			return newChunkVec[uint64](l)
		}
	}
	return newOverAlignedVec(l)
}

func checkPush(l Layout, b []byte) {
	if uintptr(len(b)) != l.Size {
		panic(fmt.Sprintf("alignvec: pushed %d bytes into a vec of layout %s", len(b), l))
	}
}

func checkSameLayout(src, dst Vec) {
	if src.Layout() != dst.Layout() {
		panic(fmt.Sprintf("alignvec: moving between layouts %s and %s", src.Layout(), dst.Layout()))
	}
}

// chunk is the element type of a word-aligned backing slice.
type chunk interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

type chunkVec[C chunk] struct {
	data   []C
	per    int // chunks per element
	layout Layout
}

func newChunkVec[C chunk](l Layout) *chunkVec[C] {
	var c C
	return &chunkVec[C]{layout: l, per: int(l.Stride() / unsafe.Sizeof(c))}
}

func chunkBytes[C chunk](s []C) []byte {
	if len(s) == 0 {
		return nil
	}
	var c C
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(c)))
}

func (v *chunkVec[C]) Layout() Layout { return v.layout }

func (v *chunkVec[C]) Len() int { return len(v.data) / v.per }

func (v *chunkVec[C]) element(i int) []C {
	return v.data[i*v.per : (i+1)*v.per]
}

func (v *chunkVec[C]) Push(b []byte) {
	checkPush(v.layout, b)
	n := len(v.data)
	v.data = slices.Grow(v.data, v.per)[:n+v.per]
	dst := chunkBytes(v.data[n:])
	clear(dst)
	copy(dst, b)
}

func (v *chunkVec[C]) Get(i int) []byte {
	size := int(v.layout.Size)
	return chunkBytes(v.element(i))[:size:size]
}

func (v *chunkVec[C]) SwapRemove(i int) []byte {
	out := bytes.Clone(v.Get(i))
	v.SwapRemoveDrop(i)
	return out
}

func (v *chunkVec[C]) SwapRemoveTo(dst Vec, i int) {
	checkSameLayout(v, dst)
	dst.Push(v.Get(i))
	v.SwapRemoveDrop(i)
}

func (v *chunkVec[C]) SwapRemoveDrop(i int) {
	last := v.Len() - 1
	if i < 0 || i > last {
		panic(fmt.Sprintf("alignvec: index %d out of range [0,%d)", i, last+1))
	}
	if i != last {
		copy(v.element(i), v.element(last))
	}
	clear(v.element(last))
	v.data = v.data[:last*v.per]
}

// overAlignedVec backs alignments above the machine word. buf is allocated with
// align-1 spare bytes and elements start at buf[off], the first aligned address.
// Only the first Size bytes of a stride are ever written, and every byte past
// the last element is zero.
type overAlignedVec struct {
	buf    []byte
	off    int
	n      int
	stride int
	layout Layout
}

func newOverAlignedVec(l Layout) *overAlignedVec {
	return &overAlignedVec{layout: l, stride: int(l.Stride())}
}

func alignOffset(b []byte, align uintptr) int {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	return int((align - addr%align) % align)
}

func (v *overAlignedVec) capacity() int {
	if v.buf == nil {
		return 0
	}
	return (len(v.buf) - v.off) / v.stride
}

func (v *overAlignedVec) grow(elems int) {
	nb := make([]byte, elems*v.stride+int(v.layout.Align)-1)
	off := alignOffset(nb, v.layout.Align)
	for i := range v.n {
		copy(nb[off+i*v.stride:], v.cell(i))
	}
	v.buf, v.off = nb, off
}

// largeStride is the stride from which a vec starts with room for a single
// element instead of four.
const largeStride = 64 << 10

func (v *overAlignedVec) firstGrowth() int {
	if v.stride >= largeStride {
		return 1
	}
	return 4
}

// cell returns the Size bytes of element i.
func (v *overAlignedVec) cell(i int) []byte {
	at := v.off + i*v.stride
	size := int(v.layout.Size)
	return v.buf[at : at+size : at+size]
}

func (v *overAlignedVec) Layout() Layout { return v.layout }

func (v *overAlignedVec) Len() int { return v.n }

func (v *overAlignedVec) Push(b []byte) {
	checkPush(v.layout, b)
	if v.n == v.capacity() {
		v.grow(max(2*v.n, v.firstGrowth()))
	}
	copy(v.cell(v.n), b)
	v.n++
}

func (v *overAlignedVec) Get(i int) []byte {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("alignvec: index %d out of range [0,%d)", i, v.n))
	}
	return v.cell(i)
}

func (v *overAlignedVec) SwapRemove(i int) []byte {
	out := bytes.Clone(v.Get(i))
	v.SwapRemoveDrop(i)
	return out
}

func (v *overAlignedVec) SwapRemoveTo(dst Vec, i int) {
	checkSameLayout(v, dst)
	dst.Push(v.Get(i))
	v.SwapRemoveDrop(i)
}

func (v *overAlignedVec) SwapRemoveDrop(i int) {
	last := v.n - 1
	if i < 0 || i > last {
		panic(fmt.Sprintf("alignvec: index %d out of range [0,%d)", i, v.n))
	}
	if i != last {
		copy(v.cell(i), v.cell(last))
	}
	clear(v.cell(last))
	v.n--
}

// zeroVec holds zero-size elements, so only the count is tracked.
type zeroVec struct {
	n      int
	layout Layout
}

func (v *zeroVec) Layout() Layout { return v.layout }

func (v *zeroVec) Len() int { return v.n }

func (v *zeroVec) Push(b []byte) {
	checkPush(v.layout, b)
	v.n++
}

func (v *zeroVec) Get(i int) []byte {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("alignvec: index %d out of range [0,%d)", i, v.n))
	}
	return []byte{}
}

func (v *zeroVec) SwapRemove(i int) []byte {
	v.SwapRemoveDrop(i)
	return []byte{}
}

func (v *zeroVec) SwapRemoveTo(dst Vec, i int) {
	checkSameLayout(v, dst)
	v.SwapRemoveDrop(i)
	dst.Push(nil)
}

func (v *zeroVec) SwapRemoveDrop(i int) {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("alignvec: index %d out of range [0,%d)", i, v.n))
	}
	v.n--
}
