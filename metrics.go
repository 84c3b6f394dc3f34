package oc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// lookupStrategy names the step of the lookup order that produced an entry.
type lookupStrategy string

const (
	strategyConstant   lookupStrategy = "constant"
	strategyAlias      lookupStrategy = "alias"
	strategyRegistry   lookupStrategy = "registry"
	strategyProvider   lookupStrategy = "provider"
	strategyNamespace  lookupStrategy = "namespace"
	strategyConvention lookupStrategy = "convention"
)

// metrics is nil when the container was built without WithMetrics; every
// method is safe on a nil receiver.
type metrics struct {
	resolutions *prometheus.CounterVec
	failures    prometheus.Counter
	created     prometheus.Counter
}

// newMetrics registers the container counters with reg. The container ID is
// a constant label so several containers can share one registry.
func newMetrics(reg prometheus.Registerer, containerID string) *metrics {
	if reg == nil {
		return nil
	}

	labels := prometheus.Labels{"container": containerID}
	factory := promauto.With(reg)

	return &metrics{
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "oc_resolutions_total",
			Help:        "Key lookups that found an entry, by lookup strategy.",
			ConstLabels: labels,
		}, []string{"strategy"}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Name:        "oc_resolution_failures_total",
			Help:        "Get and Create calls that returned an error.",
			ConstLabels: labels,
		}),
		created: factory.NewCounter(prometheus.CounterOpts{
			Name:        "oc_instances_created_total",
			Help:        "Instances built by invoking a constructor.",
			ConstLabels: labels,
		}),
	}
}

func (m *metrics) resolved(strategy lookupStrategy) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(string(strategy)).Inc()
}

func (m *metrics) failed() {
	if m == nil {
		return
	}
	m.failures.Inc()
}

func (m *metrics) instanceCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}
