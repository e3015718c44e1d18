package hako

import "fmt"

// componentRegistry owns every column family of a World, indexed by
// EcsTypeID. Handles are tokens into it; nothing else reaches the columns.
type componentRegistry struct {
	families []columns
}

// register stores c under the next free EcsTypeID.
func (r *componentRegistry) register(c columns) EcsTypeID {
	if len(r.families) >= MaxComponentTypes {
		panic("ecs: too many component types")
	}
	r.families = append(r.families, c)
	return EcsTypeID(len(r.families) - 1)
}

func (r *componentRegistry) get(id EcsTypeID) columns {
	if int(id) >= len(r.families) {
		panic(fmt.Sprintf("ecs: unknown component type %d", id))
	}
	return r.families[id]
}

func (r *componentRegistry) len() int {
	return len(r.families)
}

// name returns the display name of id for logs and stats.
func (r *componentRegistry) name(id EcsTypeID) string {
	return r.get(id).name()
}
