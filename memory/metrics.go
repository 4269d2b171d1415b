package memory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics reports pattern memory activity to Prometheus. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	matches    *prometheus.CounterVec
	learns     prometheus.Counter
	evictions  prometheus.Counter
	entries    prometheus.Gauge
	similarity prometheus.Histogram
}

// NewMetrics registers the memory metrics with reg. Returns nil if reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	return &Metrics{
		matches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "nanoedge",
			Name:      "memory_matches_total",
			Help:      "Pattern memory lookups by outcome",
		}, []string{"outcome"}),
		learns: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "nanoedge",
			Name:      "memory_learns_total",
			Help:      "Patterns bundled into the memory",
		}),
		evictions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "nanoedge",
			Name:      "memory_evictions_total",
			Help:      "Labels evicted because the memory was at capacity",
		}),
		entries: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "nanoedge",
			Name:      "memory_entries",
			Help:      "Number of labels currently held",
		}),
		similarity: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "nanoedge",
			Name:      "memory_hit_similarity",
			Help:      "Similarity of matched patterns, in bits",
			Buckets:   prometheus.LinearBuckets(64, 8, 9),
		}),
	}
}

func (m *Metrics) hit(similarity int) {
	if m == nil {
		return
	}
	m.matches.WithLabelValues("hit").Inc()
	m.similarity.Observe(float64(similarity))
}

func (m *Metrics) miss() {
	if m == nil {
		return
	}
	m.matches.WithLabelValues("miss").Inc()
}

func (m *Metrics) learn() {
	if m == nil {
		return
	}
	m.learns.Inc()
}

func (m *Metrics) evict() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

func (m *Metrics) setEntries(n int) {
	if m == nil {
		return
	}
	m.entries.Set(float64(n))
}
