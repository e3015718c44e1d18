package hako

import (
	"iter"
	"reflect"

	"github.com/rotisserie/eris"
)

// SystemParam is a field of a system's state that the system borrows from the
// World on every run. It is implemented by QueryParam and CommandBuffer.
type SystemParam interface {
	// initParam binds the parameter to w and returns what it borrows.
	initParam(w *World) (Access, error)
	// acquire takes the parameter's borrows for one run.
	acquire() error
	release()
	// finish runs after the system's stage has completed.
	finish() error
}

var systemParamType = reflect.TypeFor[SystemParam]()

// QueryParam is a query declared as a field of a system's state. It is opened
// before every run of its system and released right after; the archetype
// match cache survives between runs.
type QueryParam[I any] struct {
	term   Term[I]
	world  *World
	access Access
	cache  *queryCache
	query  *Query[I]
}

// NewQueryParam declares a query parameter over term.
func NewQueryParam[I any](term Term[I]) QueryParam[I] {
	return QueryParam[I]{term: term}
}

func (p *QueryParam[I]) initParam(w *World) (Access, error) {
	if p.term == nil {
		return Access{}, eris.New("query parameter has no term")
	}
	var acc Access
	if err := p.term.access(&acc); err != nil {
		return Access{}, err
	}
	p.world = w
	p.access = acc
	p.cache = newQueryCache(p.term.matcher(w))
	return acc, nil
}

func (p *QueryParam[I]) acquire() error {
	q, err := openQuery(p.world, p.term, p.access, p.cache)
	if err != nil {
		return err
	}
	p.query = q
	return nil
}

func (p *QueryParam[I]) release() {
	if p.query != nil {
		p.query.Release()
		p.query = nil
	}
}

func (p *QueryParam[I]) finish() error { return nil }

// Query returns the query opened for the current run. It panics outside a run
// of the owning system.
func (p *QueryParam[I]) Query() *Query[I] {
	if p.query == nil {
		panic("ecs: query parameter used outside its system")
	}
	return p.query
}

// Iter yields every item of the current run's query.
func (p *QueryParam[I]) Iter() iter.Seq[I] {
	return p.Query().All()
}

// System is a named function over a state struct whose SystemParam fields are
// borrowed from the World for the duration of each run.
type System struct {
	world  *World
	run    func() error
	name   string
	params []SystemParam
	access Access
}

// NewSystem composes a system. Every exported field of *state that is a
// SystemParam, or a non-nil pointer to one, becomes a parameter. The
// parameters' access sets are joined once here; overlapping writes, or a
// write overlapping a read, fail with ErrAccessConflict.
func NewSystem[S any](w *World, name string, state *S, run func(*S) error) (*System, error) {
	if state == nil {
		return nil, eris.Errorf("system %q: nil state", name)
	}
	v := reflect.ValueOf(state).Elem()
	if v.Kind() != reflect.Struct {
		return nil, eris.Errorf("system %q: state must be a struct, got %s", name, v.Type())
	}

	s := &System{
		world:  w,
		name:   name,
		access: NewAccess(),
		run:    func() error { return run(state) },
	}
	typ := v.Type()
	for i := range v.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		param, ok := systemParam(v.Field(i))
		if !ok {
			continue
		}
		acc, err := param.initParam(w)
		if err != nil {
			return nil, eris.Wrapf(err, "system %q: parameter %s", name, field.Name)
		}
		if err := s.access.JoinWith(acc); err != nil {
			return nil, eris.Wrapf(err, "system %q: parameter %s", name, field.Name)
		}
		s.params = append(s.params, param)
	}
	return s, nil
}

func systemParam(fv reflect.Value) (SystemParam, bool) {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() || !fv.Type().Implements(systemParamType) {
			return nil, false
		}
		return fv.Interface().(SystemParam), true
	}
	if fv.CanAddr() && fv.Addr().Type().Implements(systemParamType) {
		return fv.Addr().Interface().(SystemParam), true
	}
	return nil, false
}

// Name returns the system's name.
func (s *System) Name() string {
	return s.name
}

// Access returns the union of the parameters' access sets.
func (s *System) Access() Access {
	return s.access.Clone()
}

// Run executes the system once and then finishes its parameters, applying
// any queued commands.
func (s *System) Run() error {
	if err := s.execute(); err != nil {
		return err
	}
	return s.finish()
}

// execute acquires every parameter, calls the system and releases them.
func (s *System) execute() error {
	for i, p := range s.params {
		if err := p.acquire(); err != nil {
			for j := i - 1; j >= 0; j-- {
				s.params[j].release()
			}
			s.world.logger.Warn().
				Err(err).
				Str("system", s.name).
				Msg("system could not borrow its parameters")
			return eris.Wrapf(err, "system %q", s.name)
		}
	}
	defer func() {
		for j := len(s.params) - 1; j >= 0; j-- {
			s.params[j].release()
		}
	}()
	if err := s.run(); err != nil {
		return eris.Wrapf(err, "system %q", s.name)
	}
	return nil
}

func (s *System) finish() error {
	for _, p := range s.params {
		if err := p.finish(); err != nil {
			return eris.Wrapf(err, "system %q", s.name)
		}
	}
	return nil
}
