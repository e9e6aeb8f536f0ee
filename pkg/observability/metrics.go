package observability

import (
	"strings"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records evaluator activity as Prometheus collectors.
type Metrics struct {
	evaluations *prometheus.CounterVec
	skips       *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	slices      prometheus.Histogram
	dirtied     prometheus.Counter
	dirtyPasses prometheus.Counter
	retyped     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loom",
			Name:      "node_evaluations_total",
			Help:      "Total number of node evaluations",
		}, []string{"node_type"}),
		skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loom",
			Name:      "node_skips_total",
			Help:      "Evaluations skipped because of dirty inputs, unresolved kinds or panics",
		}, []string{"node_type", "reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "loom",
			Name:      "node_evaluation_duration_seconds",
			Help:      "Duration of node evaluations",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"node_type"}),
		slices: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "loom",
			Name:      "node_evaluation_slices",
			Help:      "Slices computed per node evaluation",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		dirtied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loom",
			Name:      "attributes_dirtied_total",
			Help:      "Attributes flipped from clean to dirty",
		}),
		dirtyPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loom",
			Name:      "dirtying_passes_total",
			Help:      "Outermost dirtying operations",
		}),
		retyped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loom",
			Name:      "specialization_changes_total",
			Help:      "Attributes retyped by specialization resolution",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.Collectors()...)
	}
	return m
}

// Collectors lists every collector of m.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.evaluations, m.skips, m.duration, m.slices, m.dirtied, m.dirtyPasses, m.retyped}
}

// Hooks returns lifecycle hooks feeding m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEvaluated: func(e *domain.NodeEvent) {
			m.evaluations.WithLabelValues(e.NodeType).Inc()
			m.duration.WithLabelValues(e.NodeType).Observe(e.Duration.Seconds())
			m.slices.Observe(float64(e.Slices))
		},
		OnNodeSkipped: func(e *domain.NodeEvent) {
			m.skips.WithLabelValues(e.NodeType, skipReason(e.Reason)).Inc()
		},
		OnDirtyingDone: func(e *domain.DirtyEvent) {
			m.dirtyPasses.Inc()
			m.dirtied.Add(float64(e.Dirtied))
		},
		OnSpecializationChanged: func(e *domain.SpecializationEvent) {
			m.retyped.WithLabelValues(e.To).Inc()
		},
	}
}

// skipReason drops the attribute name so label cardinality stays bounded.
func skipReason(reason string) string {
	for _, prefix := range []string{"dirty input", "unresolved", "panic"} {
		if strings.HasPrefix(reason, prefix) {
			return prefix
		}
	}
	return "other"
}
