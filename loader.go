package triage

import (
	"context"
	"reflect"
	"strconv"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	"github.com/luno/triage/internal/metrics"
)

// Loader is a scoped guard holding payloads that should accompany a failure
// if, and only if, one actually propagates out of the guarded scope.
//
// Construct it at the top of a function and release it on every exit path by
// deferring Release on the named error return:
//
//	func transfer(ctx context.Context, acc string) (err error) {
//		defer triage.OnError(ctx, Account(acc)).Release(&err)
//		...
//	}
//
// On a failure exit (non-nil *err, or a panic unwinding the scope) the
// pending payloads are committed into the current episode's store, beginning
// the episode if the failure originated here. On a normal exit they are
// discarded, and lazy payloads are never evaluated.
type Loader struct {
	scope    *Scope
	pending  []pendingPayload
	depth    int
	released bool
}

type pendingPayload struct {
	typ  reflect.Type
	val  any
	eval func() any
}

type lazyPayload struct {
	typ  reflect.Type
	eval func() any
}

// Lazy defers production of a payload of type P until the guarded scope is
// known to be exiting via failure. Use it to capture transient state, such as
// a volatile OS error code, exactly at the point the scope is left rather
// than at handling time. The factory is never invoked on a normal exit.
func Lazy[P any](fn func() P) any {
	return lazyPayload{
		typ:  typeOf[P](),
		eval: func() any { return fn() },
	}
}

// OnError records payloads as pending against the scope in ctx. Each payload
// is either a value, stored under its dynamic type, or a Lazy factory. With
// no scope in ctx the loader is inert.
//
// Loaders nest strictly last-in first-out within one scope and must not cross
// goroutine boundaries.
func OnError(ctx context.Context, payloads ...any) *Loader {
	scope := ScopeFrom(ctx)

	l := &Loader{
		scope: scope,
	}
	if scope == nil {
		return l
	}

	for _, p := range payloads {
		if lp, ok := p.(lazyPayload); ok {
			l.pending = append(l.pending, pendingPayload{typ: lp.typ, eval: lp.eval})
			continue
		}

		t := reflect.TypeOf(p)
		if t == nil {
			continue
		}
		l.pending = append(l.pending, pendingPayload{typ: t, val: p})
	}

	l.depth = scope.loaderDepth
	scope.loaderDepth++

	return l
}

// Release ends the guard. It must be deferred directly so that it can observe
// a panic unwinding the scope:
//
//	defer l.Release(&err)
//
// A panic commits the pending payloads and resumes unwinding with the
// original panic value. Otherwise errp decides: a non-nil *errp marks the
// exit as a failure exit and commits, anything else discards. Callers using
// failure-carrying return values rather than panics therefore mark the exit
// as failure simply by returning the error.
func (l *Loader) Release(errp *error) {
	if l == nil || l.released || l.scope == nil {
		if r := recover(); r != nil {
			panic(r)
		}
		return
	}
	l.released = true
	l.unnest()

	if r := recover(); r != nil {
		l.commit()
		panic(r)
	}

	if errp != nil && *errp != nil {
		l.commit()
		return
	}

	l.pending = nil
	metrics.LoaderDiscards.Inc()
}

// unnest pops this loader off the scope's nesting bookkeeping, reporting
// out-of-order releases without corrupting the depth counter further.
func (l *Loader) unnest() {
	s := l.scope
	if s.loaderDepth != l.depth+1 {
		s.errorLog(context.Background(), errors.Wrap(ErrLoaderOrder, "", j.MKV{
			"expected_depth": strconv.Itoa(l.depth + 1),
			"scope_depth":    strconv.Itoa(s.loaderDepth),
		}))
	}
	s.loaderDepth = l.depth
}

func (l *Loader) commit() {
	ep := l.scope.Begin()
	for _, p := range l.pending {
		v := p.val
		if p.eval != nil {
			v = p.eval()
		}
		ep.store.put(p.typ, v)
	}
	metrics.LoaderCommits.Add(float64(len(l.pending)))
	l.pending = nil
}
