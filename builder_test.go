package hako

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -run ^TestEntityBuilder$ . -count 1
func TestEntityBuilder(t *testing.T) {
	w, h := setupWorld(t)
	dh, err := NewDynamicHandle(w, Layout{Size: 2, Align: 2})
	require.NoError(t, err)

	var created int
	Subscribe(w.Events(), func(ArchetypeCreated) { created++ })

	b := NewBuilder(w)
	With(b, h.pos, Position{X: 1})
	With(b, h.vel, Velocity{DX: 2})
	With(b, h.pos, Position{X: 3}) // replaces the first value
	WithBytes(b, dh, []byte{4, 5})

	e := b.Spawn()
	assert.Equal(t, 1, created, "the final archetype is created directly")
	assert.Equal(t, Position{X: 3}, *h.pos.Get(w, e))
	assert.Equal(t, Velocity{DX: 2}, *h.vel.Get(w, e))
	assert.Equal(t, []byte{4, 5}, dh.Get(w, e))

	more := b.SpawnN(10)
	require.Len(t, more, 10)
	for _, m := range more {
		assert.Equal(t, Position{X: 3}, *h.pos.Get(w, m))
		idx, _ := w.ArchetypeIndex(m)
		eIdx, _ := w.ArchetypeIndex(e)
		assert.Equal(t, eIdx, idx)
	}
	assert.Equal(t, 1, created)
	checkInvariants(t, w)
}

// go test -run ^TestEntityBuilderReuse$ . -count 1
func TestEntityBuilderReuse(t *testing.T) {
	w, h := setupWorld(t)
	free := w.Spawn()
	w.Despawn(free)
	r := w.ReserveEntity()

	b := NewBuilder(w)
	With(b, h.health, Health{HP: 10})
	e := b.Spawn()
	assert.Equal(t, free.ID, e.ID, "freed ids are recycled")
	assert.True(t, w.IsAlive(r), "reserved ids are fixed first")

	h.health.Get(w, e).HP = 0
	other := b.Spawn()
	assert.Equal(t, Health{HP: 10}, *h.health.Get(w, other), "values are copied per entity")
	checkInvariants(t, w)
}

// go test -run ^TestEntityBuilderEmpty$ . -count 1
func TestEntityBuilderEmpty(t *testing.T) {
	w := NewWorld()
	e := NewBuilder(w).Spawn()
	idx, ok := w.ArchetypeIndex(e)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}
