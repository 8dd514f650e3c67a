package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IngestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f1picks_ingestions_total",
			Help: "Result ingestions by outcome",
		},
		[]string{"outcome"},
	)

	PredictionsScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "f1picks_predictions_scored_total",
			Help: "Predictions scored by ingestion",
		},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "f1picks_ingest_duration_seconds",
			Help:    "Time taken to ingest one race result",
			Buckets: prometheus.DefBuckets,
		},
	)

	PredictionPoints = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "f1picks_prediction_points",
			Help:    "Distribution of prediction scores",
			Buckets: prometheus.LinearBuckets(-100, 20, 12),
		},
	)

	LeaderboardCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f1picks_leaderboard_cache_total",
			Help: "Leaderboard cache lookups by result",
		},
		[]string{"result"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "f1picks_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)

// Outcome labels for IngestionsTotal.
const (
	OutcomeOK           = "ok"
	OutcomePrecondition = "precondition"
	OutcomeError        = "error"
)

// RequestDuration records APIRequestDuration for every request, labelled by
// route pattern rather than raw path.
func RequestDuration() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			APIRequestDuration.WithLabelValues(
				c.Path(),
				c.Request().Method,
				strconv.Itoa(status),
			).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
