package txn

import (
	"github.com/prometheus/client_golang/prometheus"
)

// These counters are the entirety of this runtime's metrics surface:
// they count commits, aborts, and validation failures at the points the
// engine already visits, nothing more — no profiling, no latency
// histograms.
var (
	commitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stm",
		Name:      "commits_total",
		Help:      "Transactions that committed, read-only or not.",
	})
	abortsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stm",
		Name:      "aborts_total",
		Help:      "Transactions that rolled back due to a detected conflict.",
	})
	validationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stm",
		Name:      "validation_failures_total",
		Help:      "Commit-time validation failures (a subset of aborts_total).",
	})
)

// Registerer is the narrow slice of *prometheus.Registry this package
// needs, so callers (cmd/stmbench) can pass either the global default
// registerer or a private one built for tests without this package
// importing the concrete registry type.
type Registerer interface {
	Register(prometheus.Collector) error
}

// RegisterMetrics registers this package's counters with reg. Safe to
// call more than once against the same registry only the first time;
// callers that might double-register (e.g. repeated test setup) should
// use a fresh prometheus.NewRegistry() per call site.
func RegisterMetrics(reg Registerer) error {
	for _, c := range []prometheus.Collector{commitsTotal, abortsTotal, validationFailuresTotal} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
