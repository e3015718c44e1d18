package hako

import "github.com/edwinsyarief/hako/internal/alignvec"

// columns is the type-erased view of one column family: every column of one
// component type, one per archetype that holds it. The archetype table moves
// rows through this interface without knowing the element type.
type columns interface {
	// pushEmptyColumn adds a column for a new archetype and returns its slot.
	pushEmptyColumn() int
	// swapRemoveTo moves the cell at row of oldCol to the end of newCol,
	// filling the hole with oldCol's last cell.
	swapRemoveTo(oldCol, newCol, row int)
	// swapRemoveDrop discards the cell at row of col the same way.
	swapRemoveDrop(col, row int)
	columnLen(col int) int
	guard() *borrowGuard
	name() string
}

// staticColumns stores a Go type directly, one slice per archetype.
type staticColumns[T any] struct {
	cols     [][]T
	borrow   borrowGuard
	typeName string
}

func (c *staticColumns[T]) pushEmptyColumn() int {
	c.cols = append(c.cols, nil)
	return len(c.cols) - 1
}

// swapRemove removes and returns the cell at row of col.
func (c *staticColumns[T]) swapRemove(col, row int) T {
	s := c.cols[col]
	v := s[row]
	last := len(s) - 1
	s[row] = s[last]
	var zero T
	s[last] = zero
	c.cols[col] = s[:last]
	return v
}

func (c *staticColumns[T]) swapRemoveTo(oldCol, newCol, row int) {
	v := c.swapRemove(oldCol, row)
	c.cols[newCol] = append(c.cols[newCol], v)
}

func (c *staticColumns[T]) swapRemoveDrop(col, row int) {
	c.swapRemove(col, row)
}

func (c *staticColumns[T]) columnLen(col int) int { return len(c.cols[col]) }

func (c *staticColumns[T]) guard() *borrowGuard { return &c.borrow }

func (c *staticColumns[T]) name() string { return c.typeName }

// dynamicColumns stores raw bytes of one runtime Layout, one alignvec.Vec per
// archetype.
type dynamicColumns struct {
	cols   []alignvec.Vec
	borrow borrowGuard
	layout Layout
}

func (c *dynamicColumns) pushEmptyColumn() int {
	c.cols = append(c.cols, alignvec.New(c.layout))
	return len(c.cols) - 1
}

func (c *dynamicColumns) swapRemoveTo(oldCol, newCol, row int) {
	c.cols[oldCol].SwapRemoveTo(c.cols[newCol], row)
}

func (c *dynamicColumns) swapRemoveDrop(col, row int) {
	c.cols[col].SwapRemoveDrop(row)
}

func (c *dynamicColumns) columnLen(col int) int { return c.cols[col].Len() }

func (c *dynamicColumns) guard() *borrowGuard { return &c.borrow }

func (c *dynamicColumns) name() string { return "dyn" + c.layout.String() }
