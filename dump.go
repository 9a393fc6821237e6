package triage

import (
	"context"
	"fmt"
	"strings"
)

// Dump renders a human-readable enumeration of the payload types and values
// attached to the scope's active (or just-ended) episode. It is intended as a
// fallback report for failures that no handler matched, mirroring everything
// a handler could have required.
func Dump(ctx context.Context) string {
	return DumpScope(ScopeFrom(ctx))
}

// DumpScope is Dump for an explicitly held scope.
func DumpScope(s *Scope) string {
	if s == nil {
		return "no scope\n"
	}

	ep := s.inspectable()
	if ep == nil {
		return "no episode\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "episode %d (uid %s, started %s): %d payload(s)\n",
		ep.ID, ep.UID, ep.StartedAt.Format("15:04:05.000"), ep.store.Len())

	for _, t := range ep.store.order {
		v, ok := ep.store.value(t)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %s: %+v\n", t.String(), v)
	}
	return b.String()
}
