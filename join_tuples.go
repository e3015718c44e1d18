package hako

// Tuple2 to Tuple8 are the items yielded by Join2 to Join8, one field per
// joined term in argument order.
type Tuple2[A, B any] struct {
	V1 A
	V2 B
}

type Tuple3[A, B, C any] struct {
	V1 A
	V2 B
	V3 C
}

type Tuple4[A, B, C, D any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
}

type Tuple5[A, B, C, D, E any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
	V5 E
}

type Tuple6[A, B, C, D, E, F any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
	V5 E
	V6 F
}

type Tuple7[A, B, C, D, E, F, G any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
	V5 E
	V6 F
	V7 G
}

type Tuple8[A, B, C, D, E, F, G, H any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
	V5 E
	V6 F
	V7 G
	V8 H
}

// ---------------------------------------------------------------------------
// pair

type pairTerm[A, B any] struct {
	a Term[A]
	b Term[B]
}

// Join2 matches the archetypes both terms match and yields their items side
// by side. Both terms record into one access set, so a join that writes a
// component it also reads or writes elsewhere is rejected when composed.
func Join2[A, B any](a Term[A], b Term[B]) Term[Tuple2[A, B]] {
	return pairTerm[A, B]{a: a, b: b}
}

func (t pairTerm[A, B]) access(acc *Access) error {
	if err := t.a.access(acc); err != nil {
		return err
	}
	return t.b.access(acc)
}

func (t pairTerm[A, B]) matcher(w *World) func(*archetype) bool {
	ma, mb := t.a.matcher(w), t.b.matcher(w)
	return func(arch *archetype) bool { return ma(arch) && mb(arch) }
}

func (t pairTerm[A, B]) bind(w *World) (binding[Tuple2[A, B]], error) {
	ba, err := t.a.bind(w)
	if err != nil {
		return nil, err
	}
	bb, err := t.b.bind(w)
	if err != nil {
		ba.release()
		return nil, err
	}
	return &pairBinding[A, B]{a: ba, b: bb}, nil
}

type pairBinding[A, B any] struct {
	a binding[A]
	b binding[B]
}

func (p *pairBinding[A, B]) matches(arch *archetype) bool {
	return p.a.matches(arch) && p.b.matches(arch)
}

func (p *pairBinding[A, B]) cursor(arch *archetype) cursor[Tuple2[A, B]] {
	return &pairCursor[A, B]{a: p.a.cursor(arch), b: p.b.cursor(arch)}
}

func (p *pairBinding[A, B]) release() {
	p.b.release()
	p.a.release()
}

type pairCursor[A, B any] struct {
	a cursor[A]
	b cursor[B]
}

func (c *pairCursor[A, B]) next() (Tuple2[A, B], bool) {
	va, ok := c.a.next()
	if !ok {
		return Tuple2[A, B]{}, false
	}
	vb, ok := c.b.next()
	if !ok {
		return Tuple2[A, B]{}, false
	}
	return Tuple2[A, B]{V1: va, V2: vb}, true
}

// ---------------------------------------------------------------------------
// map

// mapTerm reshapes the items of inner without touching access or matching.
type mapTerm[S, I any] struct {
	inner Term[S]
	f     func(S) I
}

func (t mapTerm[S, I]) access(acc *Access) error { return t.inner.access(acc) }

func (t mapTerm[S, I]) matcher(w *World) func(*archetype) bool { return t.inner.matcher(w) }

func (t mapTerm[S, I]) bind(w *World) (binding[I], error) {
	inner, err := t.inner.bind(w)
	if err != nil {
		return nil, err
	}
	return &mapBinding[S, I]{inner: inner, f: t.f}, nil
}

type mapBinding[S, I any] struct {
	inner binding[S]
	f     func(S) I
}

func (b *mapBinding[S, I]) matches(a *archetype) bool { return b.inner.matches(a) }

func (b *mapBinding[S, I]) cursor(a *archetype) cursor[I] {
	return &mapCursor[S, I]{inner: b.inner.cursor(a), f: b.f}
}

func (b *mapBinding[S, I]) release() { b.inner.release() }

type mapCursor[S, I any] struct {
	inner cursor[S]
	f     func(S) I
}

func (c *mapCursor[S, I]) next() (I, bool) {
	v, ok := c.inner.next()
	if !ok {
		var zero I
		return zero, false
	}
	return c.f(v), true
}

// ---------------------------------------------------------------------------
// Join3 .. Join8

// Join3 is Join2 over three terms.
func Join3[A, B, C any](a Term[A], b Term[B], c Term[C]) Term[Tuple3[A, B, C]] {
	return mapTerm[Tuple2[Tuple2[A, B], C], Tuple3[A, B, C]]{
		inner: Join2(Join2(a, b), c),
		f: func(t Tuple2[Tuple2[A, B], C]) Tuple3[A, B, C] {
			return Tuple3[A, B, C]{t.V1.V1, t.V1.V2, t.V2}
		},
	}
}

// Join4 is Join2 over four terms.
func Join4[A, B, C, D any](a Term[A], b Term[B], c Term[C], d Term[D]) Term[Tuple4[A, B, C, D]] {
	return mapTerm[Tuple2[Tuple3[A, B, C], D], Tuple4[A, B, C, D]]{
		inner: Join2(Join3(a, b, c), d),
		f: func(t Tuple2[Tuple3[A, B, C], D]) Tuple4[A, B, C, D] {
			return Tuple4[A, B, C, D]{t.V1.V1, t.V1.V2, t.V1.V3, t.V2}
		},
	}
}

// Join5 is Join2 over five terms.
func Join5[A, B, C, D, E any](a Term[A], b Term[B], c Term[C], d Term[D], e Term[E]) Term[Tuple5[A, B, C, D, E]] {
	return mapTerm[Tuple2[Tuple4[A, B, C, D], E], Tuple5[A, B, C, D, E]]{
		inner: Join2(Join4(a, b, c, d), e),
		f: func(t Tuple2[Tuple4[A, B, C, D], E]) Tuple5[A, B, C, D, E] {
			return Tuple5[A, B, C, D, E]{t.V1.V1, t.V1.V2, t.V1.V3, t.V1.V4, t.V2}
		},
	}
}

// Join6 is Join2 over six terms.
func Join6[A, B, C, D, E, F any](a Term[A], b Term[B], c Term[C], d Term[D], e Term[E], f Term[F]) Term[Tuple6[A, B, C, D, E, F]] {
	return mapTerm[Tuple2[Tuple5[A, B, C, D, E], F], Tuple6[A, B, C, D, E, F]]{
		inner: Join2(Join5(a, b, c, d, e), f),
		f: func(t Tuple2[Tuple5[A, B, C, D, E], F]) Tuple6[A, B, C, D, E, F] {
			return Tuple6[A, B, C, D, E, F]{t.V1.V1, t.V1.V2, t.V1.V3, t.V1.V4, t.V1.V5, t.V2}
		},
	}
}

// Join7 is Join2 over seven terms.
func Join7[A, B, C, D, E, F, G any](a Term[A], b Term[B], c Term[C], d Term[D], e Term[E], f Term[F], g Term[G]) Term[Tuple7[A, B, C, D, E, F, G]] {
	return mapTerm[Tuple2[Tuple6[A, B, C, D, E, F], G], Tuple7[A, B, C, D, E, F, G]]{
		inner: Join2(Join6(a, b, c, d, e, f), g),
		f: func(t Tuple2[Tuple6[A, B, C, D, E, F], G]) Tuple7[A, B, C, D, E, F, G] {
			return Tuple7[A, B, C, D, E, F, G]{t.V1.V1, t.V1.V2, t.V1.V3, t.V1.V4, t.V1.V5, t.V1.V6, t.V2}
		},
	}
}

// Join8 is Join2 over eight terms.
func Join8[A, B, C, D, E, F, G, H any](a Term[A], b Term[B], c Term[C], d Term[D], e Term[E], f Term[F], g Term[G], h Term[H]) Term[Tuple8[A, B, C, D, E, F, G, H]] {
	return mapTerm[Tuple2[Tuple7[A, B, C, D, E, F, G], H], Tuple8[A, B, C, D, E, F, G, H]]{
		inner: Join2(Join7(a, b, c, d, e, f, g), h),
		f: func(t Tuple2[Tuple7[A, B, C, D, E, F, G], H]) Tuple8[A, B, C, D, E, F, G, H] {
			return Tuple8[A, B, C, D, E, F, G, H]{t.V1.V1, t.V1.V2, t.V1.V3, t.V1.V4, t.V1.V5, t.V1.V6, t.V1.V7, t.V2}
		},
	}
}
