package units

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus instrumentation for a Catalog. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	conversions   *prometheus.CounterVec // by outcome: ok, inconvertible, missing_data, error
	matchQueries  *prometheus.CounterVec // by mode
	matchDuration *prometheus.HistogramVec
	searches      *prometheus.CounterVec // by kind: unit, quantity_kind
	catalogUnits  prometheus.Gauge
}

// NewMetrics creates the catalog metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dimkit",
			Name:      "conversions_total",
			Help:      "Total number of unit conversions by outcome",
		}, []string{"outcome"}),

		matchQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dimkit",
			Name:      "match_queries_total",
			Help:      "Total number of unit matching queries by search mode",
		}, []string{"mode"}),

		matchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dimkit",
			Name:      "match_duration_seconds",
			Help:      "Unit matching query duration in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}, []string{"mode"}),

		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dimkit",
			Name:      "search_queries_total",
			Help:      "Total number of label index queries by entity kind",
		}, []string{"kind"}),

		catalogUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dimkit",
			Name:      "catalog_units",
			Help:      "Number of units in the published catalog generation",
		}),
	}
	for _, c := range []prometheus.Collector{m.conversions, m.matchQueries, m.matchDuration, m.searches, m.catalogUnits} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) conversion(err error) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(conversionOutcome(err)).Inc()
}

func conversionOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInconvertibleQuantities), errors.Is(err, ErrIncompatibleDimensions):
		return "inconvertible"
	case errors.Is(err, ErrMissingConversionData):
		return "missing_data"
	}
	return "error"
}

func (m *Metrics) matched(mode SearchMode, start time.Time) {
	if m == nil {
		return
	}
	m.matchQueries.WithLabelValues(mode.String()).Inc()
	m.matchDuration.WithLabelValues(mode.String()).Observe(time.Since(start).Seconds())
}

func (m *Metrics) searched(kind string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(kind).Inc()
}

func (m *Metrics) catalogSize(n int) {
	if m == nil {
		return
	}
	m.catalogUnits.Set(float64(n))
}
