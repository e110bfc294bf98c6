// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	SEOLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_seo_lookups_total",
			Help: "Keyword-data provider lookups by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	SEOLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_seo_lookup_duration_seconds",
			Help:    "Duration of keyword-data provider lookups in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"kind"},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_submissions_total",
			Help: "Scored questionnaire submissions by band and branch",
		},
		[]string{"band", "branch"},
	)

	SinkDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_sink_deliveries_total",
			Help: "CRM/ESP deliveries by sink and outcome",
		},
		[]string{"sink", "outcome"},
	)

	SinksInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_sink_dispatches_in_flight",
			Help: "Background sink dispatches not yet finished",
		},
	)

	TokenVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_token_verifications_total",
			Help: "Result token verifications by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)
)

// Outcome maps an error to an outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// ObserveLookup records one provider lookup started at start.
func ObserveLookup(kind string, start time.Time, err error) {
	SEOLookups.WithLabelValues(kind, Outcome(err)).Inc()
	SEOLookupDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
