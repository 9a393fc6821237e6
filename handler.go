package triage

import (
	"context"
	"errors"
	"reflect"
)

// Handler describes one candidate in an ordered dispatch list: a category
// predicate over the failure's error chain, a set of payload requirements
// against the episode's store, and the function to invoke when both are
// satisfied. Handlers are evaluated strictly in the order given to Dispatch;
// the first fully satisfied handler wins, so more specific handlers must be
// listed before more general ones.
type Handler[T any] struct {
	category func(error) bool
	reqs     []Require
	fn       func(ctx context.Context, err error, info *Store) (T, error)
}

// On matches failures whose error chain contains a value of type E, in the
// sense of errors.As. The matched value is passed to fn along with the
// episode's payload store. Additional payload requirements narrow the match.
func On[E error, T any](fn func(ctx context.Context, e E, info *Store) (T, error), reqs ...Require) Handler[T] {
	return Handler[T]{
		category: func(err error) bool {
			var target E
			return errors.As(err, &target)
		},
		reqs: reqs,
		fn: func(ctx context.Context, err error, info *Store) (T, error) {
			var target E
			errors.As(err, &target)
			return fn(ctx, target, info)
		},
	}
}

// OnIs matches failures whose error chain contains sentinel, in the sense of
// errors.Is. The original failure is passed to fn unchanged.
func OnIs[T any](sentinel error, fn func(ctx context.Context, err error, info *Store) (T, error), reqs ...Require) Handler[T] {
	return Handler[T]{
		category: func(err error) bool {
			return errors.Is(err, sentinel)
		},
		reqs: reqs,
		fn:   fn,
	}
}

// OnAny matches failures of any category, narrowing only by the given payload
// requirements. With no requirements it behaves as a catch-all.
func OnAny[T any](fn func(ctx context.Context, err error, info *Store) (T, error), reqs ...Require) Handler[T] {
	return Handler[T]{
		reqs: reqs,
		fn:   fn,
	}
}

// Fallback is a catch-all with no requirements at all. List it last to
// guarantee total coverage of a dispatch.
func Fallback[T any](fn func(ctx context.Context, err error) (T, error)) Handler[T] {
	return Handler[T]{
		fn: func(ctx context.Context, err error, _ *Store) (T, error) {
			return fn(ctx, err)
		},
	}
}

func (h Handler[T]) satisfiedBy(err error, info *Store) bool {
	if h.category != nil && !h.category(err) {
		return false
	}
	for _, r := range h.reqs {
		if !r.satisfiedBy(info) {
			return false
		}
	}
	return true
}

// Require is a single payload requirement a handler declares against the
// episode's store.
type Require interface {
	satisfiedBy(*Store) bool
}

type typeReq struct {
	typ reflect.Type
}

func (r typeReq) satisfiedBy(s *Store) bool {
	if s == nil {
		return false
	}
	_, ok := s.value(r.typ)
	return ok
}

// Has requires that the store holds a value of payload type P.
func Has[P any]() Require {
	return typeReq{typ: typeOf[P]()}
}

type literalReq struct {
	typ  reflect.Type
	want any
}

func (r literalReq) satisfiedBy(s *Store) bool {
	if s == nil {
		return false
	}
	v, ok := s.value(r.typ)
	return ok && v == r.want
}

// Eq requires that the store holds a value of payload type P equal to want.
func Eq[P comparable](want P) Require {
	return literalReq{typ: typeOf[P](), want: want}
}
