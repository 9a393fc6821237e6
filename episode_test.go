package triage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luno/triage"
)

func TestScopeFromReturnsInstalledScope(t *testing.T) {
	ctx := context.Background()
	require.Nil(t, triage.ScopeFrom(ctx))

	ctx = triage.WithScope(ctx)
	require.NotNil(t, triage.ScopeFrom(ctx))
}

func TestWithScopeInstallsFreshScope(t *testing.T) {
	outer := triage.WithScope(context.Background())
	inner := triage.WithScope(outer)

	require.NotSame(t, triage.ScopeFrom(outer), triage.ScopeFrom(inner))

	// A failure in the inner scope is invisible to the outer one.
	_ = triage.Raise(inner, errSentinel)
	require.NotNil(t, triage.ScopeFrom(inner).Current())
	require.Nil(t, triage.ScopeFrom(outer).Current())
}

func TestScopeSurvivesDerivedContexts(t *testing.T) {
	ctx := triage.WithScope(context.Background())
	derived, cancel := context.WithCancel(ctx)
	defer cancel()

	require.Same(t, triage.ScopeFrom(ctx), triage.ScopeFrom(derived))
}
