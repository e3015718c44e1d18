package alignvec

import (
	"testing"
	"unsafe"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pattern(size int, seed byte) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = seed + byte(i)
	}
	return b
}

func TestLayoutValidate(t *testing.T) {
	valid := []Layout{
		{Size: 0, Align: 1},
		{Size: 4, Align: 4},
		{Size: 3, Align: 2},
		{Size: 64, Align: 64},
		{Size: 0, Align: MaxAlign},
	}
	for _, l := range valid {
		assert.NoError(t, l.Validate(), "layout %s", l)
	}

	invalid := []Layout{
		{Size: 4, Align: 0},
		{Size: 4, Align: 3},
		{Size: 4, Align: 12},
		{Size: 4, Align: MaxAlign << 1},
	}
	for _, l := range invalid {
		err := l.Validate()
		require.Error(t, err, "layout %s", l)
		assert.True(t, eris.Is(err, ErrInvalidLayout))
	}
}

func TestLayoutStride(t *testing.T) {
	assert.Equal(t, uintptr(4), Layout{Size: 3, Align: 2}.Stride())
	assert.Equal(t, uintptr(12), Layout{Size: 12, Align: 4}.Stride())
	assert.Equal(t, uintptr(16), Layout{Size: 9, Align: 16}.Stride())
	assert.Equal(t, uintptr(0), Layout{Size: 0, Align: 64}.Stride())
}

func TestNewPicksBackingByAlignment(t *testing.T) {
	assert.IsType(t, &chunkVec[uint8]{}, New(Layout{Size: 3, Align: 1}))
	assert.IsType(t, &chunkVec[uint16]{}, New(Layout{Size: 4, Align: 2}))
	assert.IsType(t, &chunkVec[uint32]{}, New(Layout{Size: 12, Align: 4}))
	assert.IsType(t, &overAlignedVec{}, New(Layout{Size: 16, Align: 16}))
	assert.IsType(t, &zeroVec{}, New(Layout{Size: 0, Align: 4096}))

	v := New(Layout{Size: 12, Align: 4}).(*chunkVec[uint32])
	assert.Equal(t, 3, v.per, "a 12 byte element spans three 4 byte chunks")

	assert.Panics(t, func() { New(Layout{Size: 1, Align: 3}) })
}

func TestPushGetRoundTrip(t *testing.T) {
	layouts := []Layout{
		{Size: 1, Align: 1},
		{Size: 3, Align: 2},
		{Size: 4, Align: 4},
		{Size: 12, Align: 4},
		{Size: 8, Align: 8},
		{Size: 24, Align: 8},
		{Size: 16, Align: 16},
		{Size: 40, Align: 32},
		{Size: 100, Align: 4096},
	}
	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			v := New(l)
			for i := range 9 {
				v.Push(pattern(int(l.Size), byte(i*10)))
			}
			require.Equal(t, 9, v.Len())
			for i := range 9 {
				got := v.Get(i)
				assert.Equal(t, pattern(int(l.Size), byte(i*10)), got)
				addr := uintptr(unsafe.Pointer(unsafe.SliceData(got)))
				assert.Zero(t, addr%l.Align, "element %d is misaligned", i)
			}
		})
	}
}

func TestSwapRemove(t *testing.T) {
	for _, l := range []Layout{{Size: 4, Align: 4}, {Size: 20, Align: 64}} {
		t.Run(l.String(), func(t *testing.T) {
			v := New(l)
			v.Push(pattern(int(l.Size), 1))
			v.Push(pattern(int(l.Size), 2))
			v.Push(pattern(int(l.Size), 3))

			removed := v.SwapRemove(0)
			assert.Equal(t, pattern(int(l.Size), 1), removed)
			require.Equal(t, 2, v.Len())
			assert.Equal(t, pattern(int(l.Size), 3), v.Get(0), "last element takes the removed slot")
			assert.Equal(t, pattern(int(l.Size), 2), v.Get(1))

			v.SwapRemoveDrop(1)
			require.Equal(t, 1, v.Len())
			assert.Equal(t, pattern(int(l.Size), 3), v.Get(0))

			assert.Panics(t, func() { v.SwapRemoveDrop(5) })
		})
	}
}

func TestSwapRemoveTo(t *testing.T) {
	l := Layout{Size: 6, Align: 2}
	src, dst := New(l), New(l)
	src.Push(pattern(6, 10))
	src.Push(pattern(6, 20))
	dst.Push(pattern(6, 30))

	src.SwapRemoveTo(dst, 0)

	require.Equal(t, 1, src.Len())
	require.Equal(t, 2, dst.Len())
	assert.Equal(t, pattern(6, 20), src.Get(0))
	assert.Equal(t, pattern(6, 10), dst.Get(1))

	other := New(Layout{Size: 6, Align: 1})
	assert.Panics(t, func() { src.SwapRemoveTo(other, 0) })
}

func TestOverAlignedGrowthKeepsData(t *testing.T) {
	l := Layout{Size: 48, Align: 128}
	v := New(l)
	for i := range 100 {
		v.Push(pattern(48, byte(i)))
	}
	for i := range 100 {
		got := v.Get(i)
		assert.Equal(t, pattern(48, byte(i)), got)
		assert.Zero(t, uintptr(unsafe.Pointer(unsafe.SliceData(got)))%128)
	}
}

func TestOverAlignedLargeStride(t *testing.T) {
	for _, align := range []uintptr{1 << 16, 1 << 20, MaxAlign} {
		l := Layout{Size: 4, Align: align}
		v := New(l).(*overAlignedVec)
		v.Push([]byte{1, 2, 3, 4})

		got := v.Get(0)
		assert.Equal(t, []byte{1, 2, 3, 4}, got)
		assert.Zero(t, uintptr(unsafe.Pointer(unsafe.SliceData(got)))%align)
		assert.Less(t, len(v.buf), 2*int(align), "first push reserves one element plus padding")

		if align == MaxAlign {
			continue
		}
		v.Push([]byte{5, 6, 7, 8})
		assert.Equal(t, []byte{1, 2, 3, 4}, v.Get(0))
		assert.Equal(t, []byte{5, 6, 7, 8}, v.Get(1))
		assert.Equal(t, []byte{1, 2, 3, 4}, v.SwapRemove(0))
		assert.Equal(t, []byte{5, 6, 7, 8}, v.Get(0))
	}
}

func TestZeroSized(t *testing.T) {
	l := Layout{Size: 0, Align: 1 << 20}
	v := New(l)
	v.Push(nil)
	v.Push([]byte{})
	assert.Equal(t, 2, v.Len())
	assert.NotNil(t, v.Get(1))
	assert.Empty(t, v.Get(1))

	dst := New(l)
	v.SwapRemoveTo(dst, 0)
	assert.Equal(t, 1, v.Len())
	assert.Equal(t, 1, dst.Len())

	assert.Panics(t, func() { v.Push([]byte{1}) })
}

func TestPushWrongLength(t *testing.T) {
	v := New(Layout{Size: 4, Align: 4})
	assert.Panics(t, func() { v.Push([]byte{1, 2, 3}) })
}
