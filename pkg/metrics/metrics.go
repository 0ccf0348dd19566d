// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	fetchInFlight        prometheus.Gauge
	fetchRequestsTotal   *prometheus.CounterVec
	fetchDurationSeconds *prometheus.HistogramVec
	harvestRecordsTotal  prometheus.Counter
	harvestFailuresTotal *prometheus.CounterVec

	once sync.Once
)

// Init initializes the collectors. It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchInFlight = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "harvester_fetch_in_flight",
			Help: "Number of detail page fetches currently in flight.",
		})

		fetchRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_fetch_requests_total",
				Help: "Total number of page fetches, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "harvester_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by outcome.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"outcome"},
		)

		harvestRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "harvester_records_total",
			Help: "Total number of recipes extracted.",
		})

		harvestFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_failures_total",
				Help: "Total number of catalog URLs that produced no recipe, labeled by stage.",
			},
			[]string{"stage"},
		)
	})
}

// FetchStarted marks one more fetch in flight.
func FetchStarted() {
	Init()
	fetchInFlight.Inc()
}

// FetchFinished marks a fetch as done and records its outcome and latency.
func FetchFinished(outcome string, d time.Duration) {
	Init()
	fetchInFlight.Dec()
	fetchRequestsTotal.WithLabelValues(outcome).Inc()
	fetchDurationSeconds.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordsExtracted adds n successfully extracted recipes.
func RecordsExtracted(n int) {
	Init()
	harvestRecordsTotal.Add(float64(n))
}

// FailureRecorded counts one failed catalog URL for the given stage.
func FailureRecorded(stage string) {
	Init()
	harvestFailuresTotal.WithLabelValues(stage).Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}
