package hako

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAllocator() *entityAllocator {
	a := &entityAllocator{}
	a.init(4)
	return a
}

func placeNowhere(rows *int) func(Entity) int {
	return func(Entity) int {
		*rows++
		return *rows - 1
	}
}

// go test -run ^TestEntityAllocator$ . -count 1
func TestEntityAllocator(t *testing.T) {
	t.Run("fresh ids are dense", func(t *testing.T) {
		a := newTestAllocator()
		rows := 0
		for i := range 5 {
			e := a.spawn(0, placeNowhere(&rows))
			assert.Equal(t, Entity{ID: uint32(i), Version: 1}, e)
		}
		assert.Equal(t, 5, a.live)
	})

	t.Run("despawn bumps version and recycles", func(t *testing.T) {
		a := newTestAllocator()
		rows := 0
		e := a.spawn(0, placeNowhere(&rows))
		var removed []entityMeta
		require.True(t, a.despawn(e, func(m entityMeta) { removed = append(removed, m) }))
		assert.Equal(t, []entityMeta{{archetype: 0, row: 0}}, removed)
		assert.False(t, a.isAlive(e))
		assert.False(t, a.despawn(e, func(entityMeta) { t.Fatal("remove called for a dead entity") }))

		again := a.spawn(3, placeNowhere(&rows))
		assert.Equal(t, Entity{ID: e.ID, Version: 2}, again)
		meta, ok := a.meta(again)
		require.True(t, ok)
		assert.Equal(t, 3, meta.archetype)
	})

	t.Run("unknown ids are dead", func(t *testing.T) {
		a := newTestAllocator()
		assert.False(t, a.isAlive(Entity{ID: 42, Version: 1}))
		assert.Nil(t, a.metaMut(Entity{ID: 42, Version: 1}))
	})

	t.Run("version wraps past zero", func(t *testing.T) {
		a := newTestAllocator()
		rows := 0
		e := a.spawn(0, placeNowhere(&rows))
		a.slots[e.ID].version = math.MaxUint32
		e.Version = math.MaxUint32
		require.True(t, a.despawn(e, func(entityMeta) {}))
		assert.Equal(t, uint32(1), a.slots[e.ID].version)
	})
}

// go test -run ^TestEntityReservation$ . -count 1
func TestEntityReservation(t *testing.T) {
	a := newTestAllocator()

	const n = 64
	var wg sync.WaitGroup
	ids := make([]Entity, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = a.reserve()
		}()
	}
	wg.Wait()

	seen := make(map[uint32]bool)
	for _, e := range ids {
		assert.False(t, seen[e.ID], "id %d handed out twice", e.ID)
		seen[e.ID] = true
		assert.False(t, a.isAlive(e))
	}

	var placed []Entity
	a.fixReserved(func(e Entity) int {
		placed = append(placed, e)
		return len(placed) - 1
	})
	assert.Len(t, placed, n)
	for _, e := range ids {
		assert.True(t, a.isAlive(e))
	}
	assert.Equal(t, n, a.live)
}

// go test -run ^TestEntityExhaustion$ . -count 1
func TestEntityExhaustion(t *testing.T) {
	a := newTestAllocator()
	a.next.Store(math.MaxUint32)
	assert.PanicsWithValue(t, "ecs: too many entities spawned", func() { a.reserve() })
}
