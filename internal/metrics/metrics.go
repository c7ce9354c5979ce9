// Package metrics exposes refresh and cache counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"grocery_feed/internal/domain"
)

const namespace = "grocery_feed"

type Metrics struct {
	refreshes       prometheus.Counter
	refreshDuration prometheus.Histogram
	catalogProducts prometheus.Gauge
	replaced        prometheus.Counter
	priceEvents     prometheus.Counter
	sourceProducts  *prometheus.GaugeVec
	sourceFailures  *prometheus.CounterVec
	diagnostics     *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Catalog refreshes run.",
		}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Wall time of a full catalog refresh.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		catalogProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_products",
			Help:      "Products in the current merged catalog.",
		}),
		replaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_replaced_total",
			Help:      "Merge decisions where a later record beat the current winner.",
		}),
		priceEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_events_total",
			Help:      "Price change events published.",
		}),
		sourceProducts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_products",
			Help:      "Products returned by the last fetch of each source.",
		}, []string{"source"}),
		sourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Source fetches that returned no data because of an error.",
		}, []string{"source"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_diagnostics_total",
			Help:      "Per-record problems absorbed by source adapters.",
		}, []string{"source", "kind"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Catalog cache lookups by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.refreshes,
		m.refreshDuration,
		m.catalogProducts,
		m.replaced,
		m.priceEvents,
		m.sourceProducts,
		m.sourceFailures,
		m.diagnostics,
		m.cacheLookups,
	)
	return m
}

func (m *Metrics) ObserveSource(res domain.FetchResult) {
	src := string(res.Source)
	m.sourceProducts.WithLabelValues(src).Set(float64(len(res.Products)))
	if res.Err != nil {
		m.sourceFailures.WithLabelValues(src).Inc()
	}
	for kind, n := range res.DiagnosticCounts() {
		m.diagnostics.WithLabelValues(src, string(kind)).Add(float64(n))
	}
}

func (m *Metrics) ObserveRefresh(stats *domain.RefreshStats) {
	m.refreshes.Inc()
	m.refreshDuration.Observe(stats.Duration.Seconds())
	m.catalogProducts.Set(float64(stats.Merged))
	m.replaced.Add(float64(stats.Replaced))
	m.priceEvents.Add(float64(stats.PriceEvents))
}

func (m *Metrics) CacheHit() {
	m.cacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	m.cacheLookups.WithLabelValues("miss").Inc()
}
