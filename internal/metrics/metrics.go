// Package metrics holds the Prometheus collectors for ranking, training and
// the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Training outcomes
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeCancelled = "cancelled"
)

var (
	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aptmatch_rank_duration_seconds",
			Help:    "Time spent filtering, scoring and sorting a feed",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	ListingsRanked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aptmatch_listings_ranked_total",
			Help: "Total number of listings scored",
		},
	)

	ListingsFiltered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aptmatch_listings_filtered_total",
			Help: "Total number of listings excluded by hard filters",
		},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aptmatch_training_runs_total",
			Help: "Total number of model training runs by outcome",
		},
		[]string{"outcome"},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aptmatch_training_duration_seconds",
			Help:    "Duration of model training runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	ModelAccuracy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aptmatch_model_accuracy",
			Help: "Training accuracy of the most recently trained model",
		},
	)

	SwipesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aptmatch_swipes_recorded_total",
			Help: "Total number of swipes recorded",
		},
		[]string{"liked"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aptmatch_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status_code"},
	)
)

// RecordRank records one ranking pass
func RecordRank(duration time.Duration, scored, filtered int) {
	RankDuration.Observe(duration.Seconds())
	ListingsRanked.Add(float64(scored))
	ListingsFiltered.Add(float64(filtered))
}

// RecordTraining records a finished training run
func RecordTraining(outcome string, duration time.Duration, accuracy float64) {
	TrainingRuns.WithLabelValues(outcome).Inc()
	TrainingDuration.Observe(duration.Seconds())
	if outcome == OutcomeSuccess {
		ModelAccuracy.Set(accuracy)
	}
}

// RecordSwipe counts a recorded swipe
func RecordSwipe(liked bool) {
	SwipesRecorded.WithLabelValues(strconv.FormatBool(liked)).Inc()
}

// RecordHTTPRequest counts an HTTP API request
func RecordHTTPRequest(method, route string, status int) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
