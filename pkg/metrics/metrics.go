package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// FetchesTotal counts page fetches by kind (listing, boxscore) and
	// outcome (success, failure, skipped, cached).
	FetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_fetches_total",
			Help: "Total number of page fetches.",
		},
		[]string{"kind", "status"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collector_fetch_duration_seconds",
			Help:    "Duration of page fetches including retries.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		},
		[]string{"kind"},
	)

	FetchRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_fetch_retries_total",
			Help: "Total number of fetch attempts that were retried.",
		},
	)

	DocumentsParsedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractor_documents_total",
			Help: "Total number of box-score documents processed.",
		},
		[]string{"status"},
	)

	PredictionsWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainer_predictions_written_total",
			Help: "Total number of prediction rows persisted.",
		},
		[]string{"status"},
	)

	ModelScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trainer_model_score",
			Help: "Evaluation scores of the last trained model.",
		},
		[]string{"metric"},
	)
)

var registerOnce sync.Once

// Init registers every collector with the default registry. It is safe to
// call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			FetchesTotal,
			FetchDuration,
			FetchRetriesTotal,
			DocumentsParsedTotal,
			PredictionsWrittenTotal,
			ModelScore,
		)
	})
}
