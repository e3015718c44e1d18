package hako

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// modelEntity is the map-backed reference for one live entity.
type modelEntity struct {
	pos    *Position
	health *Health
	raw    []byte
}

type modelWorld struct {
	w      *World
	h      testHandles
	dyn    DynHandle
	live   map[Entity]*modelEntity
	dead   []Entity
	order  []Entity
	random *rand.Rand
}

func newModelWorld(t *testing.T, seed uint64) *modelWorld {
	w, h := setupWorld(t)
	dyn, err := NewDynamicHandle(w, Layout{Size: 3, Align: 1})
	require.NoError(t, err)
	return &modelWorld{
		w:      w,
		h:      h,
		dyn:    dyn,
		live:   make(map[Entity]*modelEntity),
		random: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (m *modelWorld) pick() (Entity, *modelEntity, bool) {
	if len(m.order) == 0 {
		return Entity{}, nil, false
	}
	i := m.random.IntN(len(m.order))
	e := m.order[i]
	return e, m.live[e], true
}

func (m *modelWorld) forget(e Entity) {
	delete(m.live, e)
	for i, o := range m.order {
		if o == e {
			m.order[i] = m.order[len(m.order)-1]
			m.order = m.order[:len(m.order)-1]
			break
		}
	}
	m.dead = append(m.dead, e)
}

func (m *modelWorld) step(t *testing.T) {
	w, h := m.w, m.h
	switch op := m.random.IntN(10); op {
	case 0, 1:
		e := w.Spawn()
		require.NotContains(t, m.live, e)
		m.live[e] = &modelEntity{}
		m.order = append(m.order, e)
	case 2:
		if e, _, ok := m.pick(); ok {
			require.True(t, w.Despawn(e))
			m.forget(e)
		}
	case 3:
		if e, me, ok := m.pick(); ok {
			v := Position{X: m.random.Float32(), Y: m.random.Float32()}
			old, had := h.pos.Insert(w, e, v)
			require.Equal(t, me.pos != nil, had)
			if had {
				require.Equal(t, *me.pos, old)
			}
			me.pos = &v
		}
	case 4:
		if e, me, ok := m.pick(); ok {
			old, had := h.pos.Remove(w, e)
			require.Equal(t, me.pos != nil, had)
			if had {
				require.Equal(t, *me.pos, old)
			}
			me.pos = nil
		}
	case 5:
		if e, me, ok := m.pick(); ok {
			v := Health{HP: m.random.IntN(100)}
			h.health.Insert(w, e, v)
			me.health = &v
		}
	case 6:
		if e, me, ok := m.pick(); ok {
			_, had := h.health.Remove(w, e)
			require.Equal(t, me.health != nil, had)
			me.health = nil
		}
	case 7:
		if e, me, ok := m.pick(); ok {
			raw := []byte{byte(m.random.Uint32()), byte(m.random.Uint32()), byte(m.random.Uint32())}
			m.dyn.Insert(w, e, raw)
			me.raw = raw
		}
	case 8:
		if e, me, ok := m.pick(); ok {
			old, had := m.dyn.Remove(w, e)
			require.Equal(t, me.raw != nil, had)
			if had {
				require.Equal(t, me.raw, old)
			}
			me.raw = nil
		}
	case 9:
		// Deferred path: a reserved spawn plus commands against a random entity,
		// some of which may already be dead.
		cmd := NewCommandBuffer(w)
		spawned := cmd.Spawn()
		QueueInsert(cmd, h.health, spawned, Health{HP: 1})
		if len(m.dead) > 0 {
			QueueInsert(cmd, h.pos, m.dead[m.random.IntN(len(m.dead))], Position{})
		}
		cmd.Apply()
		m.live[spawned] = &modelEntity{health: &Health{HP: 1}}
		m.order = append(m.order, spawned)
	}
}

func (m *modelWorld) verify(t *testing.T) {
	w, h := m.w, m.h
	checkInvariants(t, w)
	require.Equal(t, len(m.live), w.Len())
	withPos := 0
	for e, me := range m.live {
		require.True(t, w.IsAlive(e))
		if me.pos == nil {
			require.Nil(t, h.pos.Get(w, e))
		} else {
			withPos++
			require.Equal(t, *me.pos, *h.pos.Get(w, e))
		}
		if me.health == nil {
			require.False(t, h.health.Has(w, e))
		} else {
			require.Equal(t, *me.health, *h.health.Get(w, e))
		}
		if me.raw == nil {
			require.Nil(t, m.dyn.Get(w, e))
		} else {
			require.Equal(t, me.raw, m.dyn.Get(w, e))
		}
	}
	for _, e := range m.dead {
		require.False(t, w.IsAlive(e))
	}

	q, err := NewQuery(w, Join3(Entities(), Read(h.pos), Maybe(ReadBytes(m.dyn))))
	require.NoError(t, err)
	defer q.Release()
	rows := 0
	for row := range q.All() {
		me := m.live[row.V1]
		require.NotNil(t, me)
		require.Equal(t, *me.pos, *row.V2)
		require.Equal(t, me.raw != nil, row.V3.Ok)
		rows++
	}
	require.Equal(t, withPos, rows)
}

// go test -run ^TestModel$ . -count 1
func TestModel(t *testing.T) {
	for _, seed := range []uint64{1, 7, 42, 1234} {
		m := newModelWorld(t, seed)
		for i := range 2000 {
			m.step(t)
			if i%50 == 0 {
				m.verify(t)
			}
		}
		m.verify(t)
		assert.LessOrEqual(t, m.w.NumArchetypes(), 8, "three components make at most eight archetypes")
	}
}
