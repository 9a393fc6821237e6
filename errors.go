package triage

import (
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

var (
	// ErrRaised is the failure used when a payload-only raise has no
	// caller-supplied error to carry the payloads.
	ErrRaised = errors.New("raised failure", j.C("ERR_8c3f5a1d92e47b06"))

	// ErrNoMatch is returned by Unwrap when every attempt given to Match
	// failed to find its required payload types. It is distinct from the
	// original failure so that callers can tell "handled but payload absent"
	// apart from the failure itself.
	ErrNoMatch = errors.New("no payload combination matched", j.C("ERR_41d7c09ab53e28f1"))

	// ErrLoaderOrder indicates that loaders were released out of last-in
	// first-out order within one scope. This is a precondition violation at
	// the call site; the release still completes without touching any other
	// scope's state.
	ErrLoaderOrder = errors.New("loader released out of order", j.C("ERR_f26b84de107c39a5"))
)
