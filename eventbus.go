package hako

import (
	"reflect"
	"slices"
)

// MaxEventTypes is the number of distinct event types one EventBus can carry.
const MaxEventTypes = 256

// ArchetypeCreated is published by a World when a new component set is first
// used. Types is ascending.
type ArchetypeCreated struct {
	Types []EcsTypeID
	Index int
}

// EntityDespawned is published by a World after an entity and its components
// have been removed.
type EntityDespawned struct {
	Entity Entity
}

// Subscription identifies one handler registered with Subscribe.
type Subscription struct {
	id    uint64
	event uint8
}

type subscriber struct {
	fn any
	id uint64
}

// EventBus delivers typed events to handlers synchronously, in subscription
// order. It is not safe for concurrent use.
type EventBus struct {
	eventTypeMap    map[reflect.Type]uint8
	handlers        [MaxEventTypes][]subscriber
	lastID          uint64
	nextEventTypeID int
}

// Subscribe registers handler for events of type T.
func Subscribe[T any](bus *EventBus, handler func(T)) Subscription {
	id := bus.eventTypeID(reflect.TypeFor[T]())
	bus.lastID++
	bus.handlers[id] = append(bus.handlers[id], subscriber{fn: handler, id: bus.lastID})
	return Subscription{id: bus.lastID, event: id}
}

// Unsubscribe removes the handler registered under sub. It reports false if
// it was already removed.
func (bus *EventBus) Unsubscribe(sub Subscription) bool {
	hs := bus.handlers[sub.event]
	i := slices.IndexFunc(hs, func(s subscriber) bool { return s.id == sub.id })
	if i < 0 {
		return false
	}
	bus.handlers[sub.event] = slices.Delete(hs, i, i+1)
	return true
}

// Publish calls every handler subscribed to T with event. It does not
// allocate.
func Publish[T any](bus *EventBus, event T) {
	id, ok := bus.eventTypeMap[reflect.TypeFor[T]()]
	if !ok {
		return
	}
	for _, h := range bus.handlers[id] {
		h.fn.(func(T))(event)
	}
}

func (bus *EventBus) eventTypeID(t reflect.Type) uint8 {
	if bus.eventTypeMap == nil {
		bus.eventTypeMap = make(map[reflect.Type]uint8)
	}
	if id, ok := bus.eventTypeMap[t]; ok {
		return id
	}
	if bus.nextEventTypeID >= MaxEventTypes {
		panic("ecs: too many event types")
	}
	id := uint8(bus.nextEventTypeID)
	bus.nextEventTypeID++
	bus.eventTypeMap[t] = id
	return id
}
