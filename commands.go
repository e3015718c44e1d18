package hako

import (
	"bytes"

	"github.com/rs/zerolog"
)

// command replays one deferred operation and reports whether it took effect.
type command struct {
	op  string
	e   Entity
	run func(w *World) bool
}

// CommandBuffer records structural operations so they can be issued while
// queries are live and replayed later with Apply. Entities spawned through
// the buffer are reserved at once, so their identities can be used in later
// commands before Apply runs.
//
// A CommandBuffer is not safe for concurrent use. Declared as a field of a
// system's state it is applied after the system's stage.
type CommandBuffer struct {
	world    *World
	commands []command
}

// NewCommandBuffer returns an empty buffer for w.
func NewCommandBuffer(w *World) *CommandBuffer {
	return &CommandBuffer{world: w}
}

func (c *CommandBuffer) push(op string, e Entity, run func(w *World) bool) {
	if c.world == nil {
		panic("ecs: command buffer has no world")
	}
	c.commands = append(c.commands, command{op: op, e: e, run: run})
}

// Spawn reserves an entity. It becomes alive, with no components, when the
// buffer is applied or at the World's next structural operation, whichever
// comes first.
func (c *CommandBuffer) Spawn() Entity {
	if c.world == nil {
		panic("ecs: command buffer has no world")
	}
	return c.world.ReserveEntity()
}

// Despawn queues the removal of e.
func (c *CommandBuffer) Despawn(e Entity) {
	c.push("despawn", e, func(w *World) bool {
		return w.Despawn(e)
	})
}

// QueueInsert queues h.Insert(e, v).
func QueueInsert[T any](c *CommandBuffer, h Handle[T], e Entity, v T) {
	c.push("insert", e, func(w *World) bool {
		if !w.IsAlive(e) {
			return false
		}
		h.Insert(w, e, v)
		return true
	})
}

// QueueRemove queues h.Remove(e).
func QueueRemove[T any](c *CommandBuffer, h Handle[T], e Entity) {
	c.push("remove", e, func(w *World) bool {
		if !w.IsAlive(e) {
			return false
		}
		h.Remove(w, e)
		return true
	})
}

// QueueInsertBytes queues h.Insert(e, data). data is copied, and its length is
// checked now rather than at Apply.
func QueueInsertBytes(c *CommandBuffer, h DynHandle, e Entity, data []byte) {
	h.checkLen(data)
	data = bytes.Clone(data)
	if data == nil {
		data = []byte{}
	}
	c.push("insert", e, func(w *World) bool {
		if !w.IsAlive(e) {
			return false
		}
		h.Insert(w, e, data)
		return true
	})
}

// QueueRemoveBytes queues h.Remove(e).
func QueueRemoveBytes(c *CommandBuffer, h DynHandle, e Entity) {
	c.push("remove", e, func(w *World) bool {
		if !w.IsAlive(e) {
			return false
		}
		h.Remove(w, e)
		return true
	})
}

// Len returns the number of queued commands.
func (c *CommandBuffer) Len() int {
	return len(c.commands)
}

// Discard drops every queued command. Entities already reserved by Spawn
// still become alive.
func (c *CommandBuffer) Discard() {
	clear(c.commands)
	c.commands = c.commands[:0]
}

// Apply makes reserved entities alive and replays the queued commands in
// order. A command whose entity is dead by the time it runs is skipped. Apply
// panics if a query of the World is live.
func (c *CommandBuffer) Apply() {
	if c.world == nil {
		return
	}
	w := c.world
	w.assertNoLiveQueries("apply commands")
	w.flushReserved()

	applied := 0
	for _, cmd := range c.commands {
		if !cmd.run(w) {
			w.logger.Debug().
				Str("op", cmd.op).
				Uint32("entity_id", cmd.e.ID).
				Uint32("entity_version", cmd.e.Version).
				Msg("skipped command on dead entity")
			continue
		}
		applied++
	}
	if len(c.commands) > 0 {
		logCommandsApplied(&w.logger, applied, len(c.commands))
	}
	c.Discard()
}

func logCommandsApplied(logger *zerolog.Logger, applied, queued int) {
	logger.Trace().
		Int("applied", applied).
		Int("skipped", queued-applied).
		Msg("command buffer applied")
}

func (c *CommandBuffer) initParam(w *World) (Access, error) {
	if c.world == nil {
		c.world = w
	} else if c.world != w {
		w.assertWorld(c.world.id)
	}
	return NewAccess(), nil
}

func (c *CommandBuffer) acquire() error { return nil }

func (c *CommandBuffer) release() {}

func (c *CommandBuffer) finish() error {
	c.Apply()
	return nil
}
