package triage

import (
	"context"

	"github.com/luno/triage/internal/callsite"
)

// SourceLocation is the payload type describing where a failure was raised.
// Raise and Throw attach it automatically; Attach does not.
type SourceLocation struct {
	File     string
	Line     int
	Function string
}

// Raise originates a failure, or joins the one already propagating in the
// scope: the active episode is reused if present, else a new one begins. The
// given payloads and a SourceLocation for the raise site are written to the
// episode's store immediately. A nil err raises ErrRaised, for failures that
// are defined entirely by their payloads.
//
// The returned error is err itself, unchanged, so sentinel and type matching
// on it behave exactly as they would without the raise.
func Raise(ctx context.Context, err error, payloads ...any) error {
	return raise(ctx, err, 1, payloads)
}

// Attach is Raise without the source location capture.
func Attach(ctx context.Context, err error, payloads ...any) error {
	return attach(ctx, err, payloads)
}

// Throw raises the failure and propagates it by panicking, for call chains
// that are not plumbed with error returns. Dispatch recovers it and routes it
// like any other failure.
func Throw(ctx context.Context, err error, payloads ...any) {
	panic(raise(ctx, err, 1, payloads))
}

func raise(ctx context.Context, err error, skip int, payloads []any) error {
	err = attach(ctx, err, payloads)

	scope := ScopeFrom(ctx)
	if scope == nil {
		return err
	}

	frame, ok := callsite.Capture(skip + 1)
	if ok {
		Put(scope.Begin().store, SourceLocation{
			File:     frame.File,
			Line:     frame.Line,
			Function: frame.Function,
		})
	}
	return err
}

func attach(ctx context.Context, err error, payloads []any) error {
	if err == nil {
		err = ErrRaised
	}

	scope := ScopeFrom(ctx)
	if scope == nil {
		return err
	}

	ep := scope.Begin()
	for _, p := range payloads {
		if lp, ok := p.(lazyPayload); ok {
			ep.store.put(lp.typ, lp.eval())
			continue
		}
		ep.store.putAny(p)
	}
	return err
}
