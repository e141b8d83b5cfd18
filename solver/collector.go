package solver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports Stats as Prometheus metrics.
//
// The stats are read through a function when the registry is scraped, so the
// collector can report a single solver or the sum over a pool of workers.
// The function must be safe to call concurrently with the solvers.
type Collector struct {
	stats func() Stats

	problems    *prometheus.Desc
	violated    *prometheus.Desc
	shortcuts   *prometheus.Desc
	cacheHits   *prometheus.Desc
	lpDecisions *prometheus.Desc
	points      *prometheus.Desc
	solverTime  *prometheus.Desc
}

func NewCollector(namespace string, stats func() Stats) *Collector {
	name := func(n string) string {
		return prometheus.BuildFQName(namespace, "solver", n)
	}
	return &Collector{
		stats:       stats,
		problems:    prometheus.NewDesc(name("problems_total"), "Comparison problems decided.", nil, nil),
		violated:    prometheus.NewDesc(name("violated_total"), "Comparison problems found violated.", nil, nil),
		shortcuts:   prometheus.NewDesc(name("shortcuts_total"), "Problems decided by a shortcut.", []string{"shortcut"}, nil),
		cacheHits:   prometheus.NewDesc(name("cache_hits_total"), "Problems answered from a cache.", []string{"tier"}, nil),
		lpDecisions: prometheus.NewDesc(name("lp_decisions_total"), "Problems decided by linear programming.", nil, nil),
		points:      prometheus.NewDesc(name("extreme_points_total"), "Extreme points checked by linear programming.", nil, nil),
		solverTime:  prometheus.NewDesc(name("lp_seconds_total"), "Time spent in the linear programming solver.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.problems
	ch <- c.violated
	ch <- c.shortcuts
	ch <- c.cacheHits
	ch <- c.lpDecisions
	ch <- c.points
	ch <- c.solverTime
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	counter := func(desc *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, v, labels...)
	}
	counter(c.problems, float64(s.Problems))
	counter(c.violated, float64(s.Violated))
	counter(c.shortcuts, float64(s.ZeroActions), "zero_actions")
	counter(c.shortcuts, float64(s.UnsimulableShortcuts), "unsimulable_class")
	counter(c.shortcuts, float64(s.ExactActionShortcuts), "exact_action")
	counter(c.cacheHits, float64(s.PreCacheHits), "pre_normalization")
	counter(c.cacheHits, float64(s.PostCacheHits), "post_normalization")
	counter(c.lpDecisions, float64(s.LPDecisions))
	counter(c.points, float64(s.ExtremePoints))
	counter(c.solverTime, s.SolverTime.Seconds())
}
