package triage

import (
	"context"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/luno/triage/internal/logger"
	"github.com/luno/triage/internal/metrics"
)

// episodeIDs allocates process-wide monotonic episode identifiers. Identifiers
// are never reused, and strictly increase across distinct originating
// failures regardless of which scope they originate in.
var episodeIDs atomic.Int64

// Episode is the lifetime of one originating failure. It owns the payload
// store that loaders commit into while the failure unwinds, and it keeps its
// identity across rethrows and nested dispatch attempts.
type Episode struct {
	// ID is the process-monotonic identity of the episode.
	ID int64
	// UID correlates the episode across process boundaries, e.g. when a
	// diagnostic dump is shipped elsewhere.
	UID string
	// StartedAt is the time the originating failure first began the episode.
	StartedAt time.Time

	store *Store
}

// Store returns the episode's payload store.
func (e *Episode) Store() *Store {
	return e.store
}

// Scope tracks the active episode for one execution context. A scope must be
// owned by a single goroutine (or a chain of synchronous calls within one);
// concurrent contexts each carry their own scope and never observe another
// scope's episode or store. Isolation, not locking, is the concurrency model.
type Scope struct {
	clock  clock.PassiveClock
	logger Logger
	debug  bool

	active      *Episode
	lastEnded   *Episode
	loaderDepth int
}

// ScopeOption configures a scope at construction.
type ScopeOption func(*Scope)

// WithClock replaces the clock used to timestamp episodes. Useful with a fake
// clock in tests.
func WithClock(c clock.PassiveClock) ScopeOption {
	return func(s *Scope) {
		s.clock = c
	}
}

// WithLogger sets the logger used for debug output and misuse reports.
func WithLogger(l Logger) ScopeOption {
	return func(s *Scope) {
		s.logger = l
	}
}

// WithDebugMode enables debug logging of episode begin/end, loader commits
// and dispatch decisions.
func WithDebugMode() ScopeOption {
	return func(s *Scope) {
		s.debug = true
	}
}

// NewScope returns an empty scope with no active episode. Misuse reports and
// debug output default to a JSON slog logger on stderr.
func NewScope(opts ...ScopeOption) *Scope {
	s := &Scope{
		clock:  clock.RealClock{},
		logger: logger.New(os.Stderr),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type scopeKey struct{}

// WithScope installs a new scope into ctx. The returned context, and contexts
// derived from it, identify one execution context for episode tracking.
func WithScope(ctx context.Context, opts ...ScopeOption) context.Context {
	return context.WithValue(ctx, scopeKey{}, NewScope(opts...))
}

// ScopeFrom returns the scope installed in ctx, or nil when there is none.
func ScopeFrom(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

// Current returns the active episode, or nil when no failure is in flight.
func (s *Scope) Current() *Episode {
	return s.active
}

// Begin returns the active episode, allocating and activating a new one with
// a fresh identity only when none is active. A failure raised while another
// is already propagating (e.g. a rethrow) therefore joins the existing
// episode rather than starting a new one.
func (s *Scope) Begin() *Episode {
	if s.active != nil {
		return s.active
	}

	s.active = &Episode{
		ID:        episodeIDs.Add(1),
		UID:       uuid.New().String(),
		StartedAt: s.clock.Now(),
		store:     newStore(),
	}
	s.lastEnded = nil

	metrics.EpisodesBegun.Inc()
	metrics.EpisodesActive.Inc()
	s.debugLog(context.Background(), "episode begun", MKV{
		"episode_id": strconv.FormatInt(s.active.ID, 10),
	})

	return s.active
}

// End deactivates the current episode once its failure has been consumed,
// either by a successful dispatch or by a successful return from the
// protected computation. The just-ended episode remains readable via dumps
// and probes until the next episode begins. End is a no-op when no episode
// is active.
func (s *Scope) End() {
	if s.active == nil {
		return
	}

	metrics.EpisodesActive.Dec()
	s.debugLog(context.Background(), "episode ended", MKV{
		"episode_id": strconv.FormatInt(s.active.ID, 10),
	})

	s.lastEnded = s.active
	s.active = nil
}

// inspectable returns the episode whose store may still be examined: the
// active one if a failure is in flight, else the one that most recently ended.
func (s *Scope) inspectable() *Episode {
	if s.active != nil {
		return s.active
	}
	return s.lastEnded
}

func (s *Scope) debugLog(ctx context.Context, msg string, meta MKV) {
	if !s.debug || s.logger == nil {
		return
	}
	s.logger.Debug(ctx, msg, meta)
}

func (s *Scope) errorLog(ctx context.Context, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Error(ctx, err)
}
