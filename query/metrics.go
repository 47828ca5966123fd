package query

import (
	"strings"

	"github.com/goliatone/go-hostel-admin/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the query layer collectors. A nil *Metrics records nothing.
type Metrics struct {
	fetches       *prometheus.CounterVec
	hits          *prometheus.CounterVec
	retries       *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	entries       prometheus.Gauge
}

// NewMetrics creates and registers the query collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostel_admin",
			Subsystem: "query",
			Name:      "fetches_total",
			Help:      "Network fetches by resource and outcome.",
		}, []string{"resource", "outcome"}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostel_admin",
			Subsystem: "query",
			Name:      "cache_hits_total",
			Help:      "Reads served from a fresh entry.",
		}, []string{"resource"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostel_admin",
			Subsystem: "query",
			Name:      "retries_total",
			Help:      "Automatic read retries.",
		}, []string{"resource"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostel_admin",
			Subsystem: "query",
			Name:      "invalidations_total",
			Help:      "Entries marked stale or removed.",
		}, []string{"resource", "kind"}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hostel_admin",
			Subsystem: "query",
			Name:      "entries",
			Help:      "Live cache entries.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.fetches, m.hits, m.retries, m.invalidations, m.entries)
	}
	return m
}

func (m *Metrics) fetch(key, outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(resourceOf(key), outcome).Inc()
}

func (m *Metrics) hit(key string) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(resourceOf(key)).Inc()
}

func (m *Metrics) retry(key string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(resourceOf(key)).Inc()
}

func (m *Metrics) invalidated(key, kind string) {
	if m == nil {
		return
	}
	m.invalidations.WithLabelValues(resourceOf(key), kind).Inc()
}

func (m *Metrics) setEntries(n int) {
	if m == nil {
		return
	}
	m.entries.Set(float64(n))
}

func resourceOf(key string) string {
	resource, _, _ := strings.Cut(key, cache.KeySeparator)
	return resource
}
