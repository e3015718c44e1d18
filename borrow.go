package hako

import "sync/atomic"

const writerHeld = -1

// borrowGuard is the runtime single-writer/many-readers flag of one column
// family. state is the number of live readers, or writerHeld.
type borrowGuard struct {
	state atomic.Int32
}

func (g *borrowGuard) tryRead() bool {
	for {
		s := g.state.Load()
		if s == writerHeld {
			return false
		}
		if g.state.CompareAndSwap(s, s+1) {
			return true
		}
	}
}

func (g *borrowGuard) tryWrite() bool {
	return g.state.CompareAndSwap(0, writerHeld)
}

// acquire takes a shared or an exclusive borrow, reporting false on conflict.
func (g *borrowGuard) acquire(write bool) bool {
	if write {
		return g.tryWrite()
	}
	return g.tryRead()
}

func (g *borrowGuard) release(write bool) {
	if write {
		g.state.Store(0)
		return
	}
	g.state.Add(-1)
}

// exclusive reports whether a writer holds the guard.
func (g *borrowGuard) exclusive() bool {
	return g.state.Load() == writerHeld
}
