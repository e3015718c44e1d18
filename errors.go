package hako

import (
	"github.com/rotisserie/eris"

	"github.com/edwinsyarief/hako/internal/alignvec"
)

var (
	// ErrBorrowConflict is returned when a query or system asks for a column
	// family that is already borrowed in an incompatible mode.
	ErrBorrowConflict = eris.New("component column is already borrowed")

	// ErrAccessConflict is returned when a query or system shape would borrow
	// the same component mutably twice, or mutably and immutably at once.
	ErrAccessConflict = eris.New("conflicting component access")

	// ErrInvalidLayout is returned for dynamic layouts whose alignment is not a
	// power of two in [1, MaxAlign].
	ErrInvalidLayout = alignvec.ErrInvalidLayout

	// ErrForeignSystem is returned when a scheduler is given a system composed
	// against another World.
	ErrForeignSystem = eris.New("system belongs to another world")
)

// borrowColumns takes a shared or exclusive borrow of c's guard.
func borrowColumns(c columns, id EcsTypeID, write bool) error {
	if !c.guard().acquire(write) {
		return borrowConflict(c, id, write)
	}
	return nil
}

func borrowConflict(c columns, id EcsTypeID, write bool) error {
	mode := "shared"
	if write {
		mode = "exclusive"
	}
	return eris.Wrapf(ErrBorrowConflict, "%s borrow of %s (type %d)", mode, c.name(), id)
}
