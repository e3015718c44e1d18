package hako

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// ErrResourceExists is returned when a second resource of one type is added.
var ErrResourceExists = eris.New("resource of the same type already exists")

// Resources holds at most one value per type, outside of any archetype. Ids
// of removed resources are reused.
type Resources struct {
	items   []any
	types   map[reflect.Type]int
	freeIDs []int
}

// Add stores res and returns its id. res is usually a pointer, which is what
// GetResource expects.
func (r *Resources) Add(res any) (int, error) {
	if res == nil {
		return -1, eris.New("cannot add nil resource")
	}
	t := reflect.TypeOf(res)
	if r.types == nil {
		r.types = make(map[reflect.Type]int)
	}
	if _, ok := r.types[t]; ok {
		return -1, eris.Wrapf(ErrResourceExists, "%s", t)
	}
	var id int
	if n := len(r.freeIDs); n > 0 {
		id = r.freeIDs[n-1]
		r.freeIDs = r.freeIDs[:n-1]
		r.items[id] = res
	} else {
		r.items = append(r.items, res)
		id = len(r.items) - 1
	}
	r.types[t] = id
	return id, nil
}

// Has reports whether id holds a resource.
func (r *Resources) Has(id int) bool {
	return id >= 0 && id < len(r.items) && r.items[id] != nil
}

// Get returns the resource stored under id, or nil.
func (r *Resources) Get(id int) any {
	if !r.Has(id) {
		return nil
	}
	return r.items[id]
}

// Remove deletes the resource stored under id, if any.
func (r *Resources) Remove(id int) {
	if !r.Has(id) {
		return
	}
	delete(r.types, reflect.TypeOf(r.items[id]))
	r.items[id] = nil
	r.freeIDs = append(r.freeIDs, id)
}

// Len returns the number of stored resources.
func (r *Resources) Len() int {
	return len(r.types)
}

// Clear removes every resource.
func (r *Resources) Clear() {
	clear(r.items)
	r.items = r.items[:0]
	clear(r.types)
	r.freeIDs = r.freeIDs[:0]
}

// AddResource stores res under type *T.
func AddResource[T any](r *Resources, res *T) (int, error) {
	if res == nil {
		return -1, eris.Errorf("cannot add nil %s resource", reflect.TypeFor[T]())
	}
	return r.Add(res)
}

// HasResource reports whether a *T resource is stored, and its id.
func HasResource[T any](r *Resources) (bool, int) {
	if id, ok := r.types[reflect.TypeFor[*T]()]; ok {
		return true, id
	}
	return false, -1
}

// GetResource returns the *T resource and its id, or nil and -1.
func GetResource[T any](r *Resources) (*T, int) {
	id, ok := r.types[reflect.TypeFor[*T]()]
	if !ok {
		return nil, -1
	}
	return r.items[id].(*T), id
}

// RemoveResource deletes the *T resource, reporting whether there was one.
func RemoveResource[T any](r *Resources) bool {
	ok, id := HasResource[T](r)
	if ok {
		r.Remove(id)
	}
	return ok
}
