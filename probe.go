package triage

import "context"

// Probe is a secondary, declarative dispatch surface for code that has
// already caught a failure by a coarse category match and wants to recover
// payload detail without owning the full handler list.
//
// Declare the probe before risking the failure, so it is in scope to query
// afterwards:
//
//	probe := triage.NewProbe(ctx)
//	err := risky(ctx)
//	if errors.Is(err, ErrIO) {
//		msg, err := triage.Unwrap(triage.Match(probe,
//			triage.Try2(func(name FileName, errno Errno) string { ... }),
//			triage.Try1(func(errno Errno) string { ... }),
//			triage.Try0(func() string { return "I/O error" }),
//		))
//		...
//	}
type Probe struct {
	scope *Scope
}

// NewProbe binds a probe to the scope in ctx.
func NewProbe(ctx context.Context) *Probe {
	return &Probe{scope: ScopeFrom(ctx)}
}

func (p *Probe) store() *Store {
	if p == nil || p.scope == nil {
		return nil
	}
	ep := p.scope.inspectable()
	if ep == nil {
		return nil
	}
	return ep.store
}

// Attempt is one payload-type-subset attempt in a Match call: the payload
// types it needs bound, and the function to run with them.
type Attempt[T any] struct {
	needs func(*Store) bool
	run   func(*Store) T
}

// Try0 always matches; use it last as a generic fallback.
func Try0[T any](fn func() T) Attempt[T] {
	return Attempt[T]{
		needs: func(*Store) bool { return true },
		run:   func(*Store) T { return fn() },
	}
}

// Try1 matches when the store holds a P1, and binds it.
func Try1[P1, T any](fn func(P1) T) Attempt[T] {
	return Attempt[T]{
		needs: func(s *Store) bool { return Contains[P1](s) },
		run: func(s *Store) T {
			p1, _ := Get[P1](s)
			return fn(p1)
		},
	}
}

// Try2 matches when the store holds both a P1 and a P2, and binds them.
func Try2[P1, P2, T any](fn func(P1, P2) T) Attempt[T] {
	return Attempt[T]{
		needs: func(s *Store) bool { return Contains[P1](s) && Contains[P2](s) },
		run: func(s *Store) T {
			p1, _ := Get[P1](s)
			p2, _ := Get[P2](s)
			return fn(p1, p2)
		},
	}
}

// Try3 matches when the store holds a P1, a P2 and a P3, and binds them.
func Try3[P1, P2, P3, T any](fn func(P1, P2, P3) T) Attempt[T] {
	return Attempt[T]{
		needs: func(s *Store) bool {
			return Contains[P1](s) && Contains[P2](s) && Contains[P3](s)
		},
		run: func(s *Store) T {
			p1, _ := Get[P1](s)
			p2, _ := Get[P2](s)
			p3, _ := Get[P3](s)
			return fn(p1, p2, p3)
		},
	}
}

// Match tries attempts strictly in declaration order against the probe's
// episode store. The first attempt whose required payload types are all
// present runs with the bound values and its result is returned. If no
// attempt can be satisfied, ok is false.
func Match[T any](p *Probe, attempts ...Attempt[T]) (val T, ok bool) {
	var zero T

	st := p.store()
	for _, a := range attempts {
		if !a.needs(st) {
			continue
		}
		return a.run(st), true
	}
	return zero, false
}

// Unwrap converts a failed Match into ErrNoMatch and passes a successful one
// through, so the two outcomes stay distinguishable from the original failure.
func Unwrap[T any](val T, ok bool) (T, error) {
	if !ok {
		var zero T
		return zero, ErrNoMatch
	}
	return val, nil
}
