package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// EpisodesBegun is the number of failure episodes originated.
	EpisodesBegun = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "triage_episodes_begun_total",
		Help: "Number of failure episodes originated",
	})

	// EpisodesActive is the number of episodes currently propagating.
	EpisodesActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "triage_episodes_active",
		Help: "Number of failure episodes currently active",
	})

	// LoaderCommits is the number of payloads committed into episode stores
	// by loaders on failure exits.
	LoaderCommits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "triage_loader_committed_payloads_total",
		Help: "Number of payloads committed to episode stores on failure exits",
	})

	// LoaderDiscards is the number of loader scopes that exited normally and
	// discarded their pending payloads.
	LoaderDiscards = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "triage_loader_discards_total",
		Help: "Number of loader scopes discarded on normal exits",
	})

	// DispatchMatched is the number of dispatches resolved by a handler.
	DispatchMatched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "triage_dispatch_matched_total",
		Help: "Number of dispatches resolved by a satisfied handler",
	})

	// DispatchUnmatched is the number of dispatches where no handler was
	// satisfied and the failure propagated to the caller.
	DispatchUnmatched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "triage_dispatch_unmatched_total",
		Help: "Number of dispatches with no satisfied handler",
	})
)

func init() {
	prometheus.MustRegister(
		EpisodesBegun,
		EpisodesActive,
		LoaderCommits,
		LoaderDiscards,
		DispatchMatched,
		DispatchUnmatched,
	)
}
