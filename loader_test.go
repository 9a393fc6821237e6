package triage_test

import (
	"context"
	"testing"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/jtest"
	"github.com/stretchr/testify/require"

	"github.com/luno/triage"
)

type location string

type attempt int

func TestLoaderCommitsOnFailureExit(t *testing.T) {
	ctx := triage.WithScope(context.Background())

	risky := func(ctx context.Context) (err error) {
		defer triage.OnError(ctx, location("warehouse"), attempt(3)).Release(&err)
		return triage.Raise(ctx, errSentinel)
	}
	jtest.Require(t, errSentinel, risky(ctx))

	st := triage.ScopeFrom(ctx).Current().Store()
	loc, ok := triage.Get[location](st)
	require.True(t, ok)
	require.Equal(t, location("warehouse"), loc)
	n, ok := triage.Get[attempt](st)
	require.True(t, ok)
	require.Equal(t, attempt(3), n)
}

func TestLoaderDiscardsOnNormalExit(t *testing.T) {
	ctx := triage.WithScope(context.Background())

	calm := func(ctx context.Context) (err error) {
		defer triage.OnError(ctx, location("warehouse")).Release(&err)
		return nil
	}
	jtest.RequireNil(t, calm(ctx))

	// No failure propagated, so no episode was ever begun.
	require.Nil(t, triage.ScopeFrom(ctx).Current())
}

func TestLazyPayloadEvaluatedOnlyOnFailure(t *testing.T) {
	ctx := triage.WithScope(context.Background())

	var evaluated int
	run := func(ctx context.Context, fail bool) (err error) {
		defer triage.OnError(ctx, triage.Lazy(func() attempt {
			evaluated++
			return attempt(evaluated)
		})).Release(&err)

		if fail {
			return triage.Raise(ctx, errSentinel)
		}
		return nil
	}

	jtest.RequireNil(t, run(ctx, false))
	require.Zero(t, evaluated)

	jtest.Require(t, errSentinel, run(ctx, true))
	require.Equal(t, 1, evaluated)

	n, ok := triage.Get[attempt](triage.ScopeFrom(ctx).Current().Store())
	require.True(t, ok)
	require.Equal(t, attempt(1), n)
}

func TestLazyPayloadCapturesStateAtScopeExit(t *testing.T) {
	ctx := triage.WithScope(context.Background())

	var transient string
	run := func(ctx context.Context) (err error) {
		defer triage.OnError(ctx, triage.Lazy(func() location {
			return location(transient)
		})).Release(&err)

		transient = "before"
		err = triage.Raise(ctx, errSentinel)
		transient = "at exit"
		return err
	}
	jtest.Require(t, errSentinel, run(ctx))

	loc, ok := triage.Get[location](triage.ScopeFrom(ctx).Current().Store())
	require.True(t, ok)
	require.Equal(t, location("at exit"), loc)
}

func TestLoaderCommitsOnPanicExit(t *testing.T) {
	ctx := triage.WithScope(context.Background())

	risky := func(ctx context.Context) (err error) {
		defer triage.OnError(ctx, location("cellar")).Release(&err)
		panic(errSentinel)
	}

	require.PanicsWithValue(t, errSentinel, func() {
		_ = risky(ctx)
	})

	loc, ok := triage.Get[location](triage.ScopeFrom(ctx).Current().Store())
	require.True(t, ok)
	require.Equal(t, location("cellar"), loc)
}

func TestLoaderBeginsEpisodeForOriginatingFailure(t *testing.T) {
	ctx := triage.WithScope(context.Background())
	require.Nil(t, triage.ScopeFrom(ctx).Current())

	risky := func(ctx context.Context) (err error) {
		defer triage.OnError(ctx, location("origin")).Release(&err)
		// A plain error, never raised explicitly.
		return errors.New("plain failure")
	}
	require.Error(t, risky(ctx))

	ep := triage.ScopeFrom(ctx).Current()
	require.NotNil(t, ep)
	require.True(t, triage.Contains[location](ep.Store()))
}

func TestLoaderNestingOverwritesInnerFirst(t *testing.T) {
	ctx := triage.WithScope(context.Background())

	inner := func(ctx context.Context) (err error) {
		defer triage.OnError(ctx, location("inner")).Release(&err)
		return triage.Raise(ctx, errSentinel)
	}
	outer := func(ctx context.Context) (err error) {
		defer triage.OnError(ctx, location("outer")).Release(&err)
		return inner(ctx)
	}
	jtest.Require(t, errSentinel, outer(ctx))

	// Loaders unwind inner first, so the outer value is the current one.
	loc, ok := triage.Get[location](triage.ScopeFrom(ctx).Current().Store())
	require.True(t, ok)
	require.Equal(t, location("outer"), loc)
}

func TestLoaderInertWithoutScope(t *testing.T) {
	run := func(ctx context.Context) (err error) {
		defer triage.OnError(ctx, location("nowhere")).Release(&err)
		return errors.New("failure without a scope")
	}
	require.Error(t, run(context.Background()))
}

type recordingLogger struct {
	errs []error
}

func (l *recordingLogger) Debug(ctx context.Context, msg string, meta map[string]string) {}

func (l *recordingLogger) Error(ctx context.Context, err error) {
	l.errs = append(l.errs, err)
}

func TestLoaderOutOfOrderReleaseIsReported(t *testing.T) {
	logger := &recordingLogger{}
	ctx := triage.WithScope(context.Background(), triage.WithLogger(logger))

	var err error
	first := triage.OnError(ctx, location("first"))
	second := triage.OnError(ctx, location("second"))

	first.Release(&err)
	second.Release(&err)

	require.NotEmpty(t, logger.errs)
	require.True(t, errors.Is(logger.errs[0], triage.ErrLoaderOrder))
}
