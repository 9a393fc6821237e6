package triage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/luno/triage/internal/metrics"
)

// Dispatch runs compute and, if it fails, routes the failure to the first
// handler in handlers whose category predicate and payload requirements are
// satisfied by the failure and its episode's store.
//
// A scope is installed into ctx if one is not already present, so nested
// Dispatch calls within one computation share a single scope and therefore a
// single episode per originating failure.
//
// On success the computed value is returned and any episode left active by
// the computation is ended. On failure the first satisfied handler's return
// value becomes the result and the episode ends, unless the handler itself
// returns an error, which propagates with the episode still active (a
// rethrow). If no handler is satisfied the failure propagates to the caller
// unchanged, again with the episode still active so that an outer dispatch
// observes the same episode.
//
// Compute may fail either by returning a non-nil error or by panicking; both
// styles are dispatched identically. A panic value that no handler consumes
// resumes panicking with the original value.
func Dispatch[T any](ctx context.Context, compute func(context.Context) (T, error), handlers ...Handler[T]) (T, error) {
	var zero T

	scope := ScopeFrom(ctx)
	if scope == nil {
		scope = NewScope()
		ctx = context.WithValue(ctx, scopeKey{}, scope)
	}

	res, fail := protect(ctx, compute)
	if fail == nil {
		scope.End()
		return res, nil
	}

	ep := scope.Begin()
	for i, h := range handlers {
		if !h.satisfiedBy(fail.err, ep.store) {
			continue
		}

		metrics.DispatchMatched.Inc()
		scope.debugLog(ctx, "dispatch matched", MKV{
			"episode_id": strconv.FormatInt(ep.ID, 10),
			"handler":    strconv.Itoa(i),
		})

		out, herr := h.fn(ctx, fail.err, ep.store)
		if herr != nil {
			return zero, herr
		}
		scope.End()
		return out, nil
	}

	metrics.DispatchUnmatched.Inc()
	scope.debugLog(ctx, "dispatch unmatched", MKV{
		"episode_id": strconv.FormatInt(ep.ID, 10),
	})

	if fail.panicked {
		panic(fail.panicValue)
	}
	return zero, fail.err
}

// failure normalises the two ways a computation can signal one: an explicit
// error return, or a panic unwinding the stack. Unmatched panics must resume
// with their original value, so it is retained alongside the error view.
type failure struct {
	err        error
	panicked   bool
	panicValue any
}

// panicError adapts a non-error panic value so it can be matched by catch-all
// handlers and described in logs and dumps.
type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

func protect[T any](ctx context.Context, compute func(context.Context) (T, error)) (res T, f *failure) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		err, ok := r.(error)
		if !ok {
			err = panicError{value: r}
		}
		f = &failure{err: err, panicked: true, panicValue: r}
	}()

	res, err := compute(ctx)
	if err != nil {
		return res, &failure{err: err}
	}
	return res, nil
}
