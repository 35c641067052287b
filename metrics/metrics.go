// Package metrics exports solver statistics as Prometheus metrics.
package metrics

import (
	"github.com/brunokim/backchain/solver"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements solver.Observer.
type Collector struct {
	queries        *prometheus.CounterVec
	unifications   prometheus.Counter
	ruleExpansions prometheus.Counter
	proofDepth     prometheus.Histogram
}

var _ solver.Observer = (*Collector)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backchain_queries_total",
			Help: "Queries answered, by outcome.",
		}, []string{"outcome"}),
		unifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backchain_unifications_total",
			Help: "Literal unifications attempted against facts and rule heads.",
		}),
		ruleExpansions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backchain_rule_expansions_total",
			Help: "Rules whose head unified with a goal.",
		}),
		proofDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "backchain_proof_depth",
			Help:    "Deepest goal reached by each query.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	reg.MustRegister(c.queries, c.unifications, c.ruleExpansions, c.proofDepth)
	return c
}

// ObserveQuery records the statistics of a finished query.
func (c *Collector) ObserveQuery(stats solver.Stats, outcome solver.Outcome) {
	c.queries.WithLabelValues(string(outcome)).Inc()
	c.unifications.Add(float64(stats.Unifications))
	c.ruleExpansions.Add(float64(stats.RuleExpansions))
	c.proofDepth.Observe(float64(stats.MaxDepth))
}
