// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collabnexus_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StoreOperationLatency records entity store latency by driver, operation and entity.
	StoreOperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "collabnexus_store_operation_latency_seconds",
		Help:    "Entity store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"driver", "operation", "entity"})

	// XPAwarded counts experience points handed out.
	XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collabnexus_xp_awarded_total",
		Help: "Total experience points awarded to users",
	})

	// LevelUps counts awards that moved a user into a higher level.
	LevelUps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collabnexus_level_ups_total",
		Help: "Total number of XP awards that raised a user's level",
	})

	// TaskCompletions counts task transitions into completed, by whether XP was awarded.
	TaskCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collabnexus_task_completions_total",
		Help: "Total number of tasks that transitioned into completed",
	}, []string{"awarded"})

	// TeammateMatchResults records how many candidates each match request returned.
	TeammateMatchResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "collabnexus_teammate_match_results",
		Help:    "Number of teammates returned per match request",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 10},
	})
)

// StoreMetrics records latency for one store driver.
type StoreMetrics struct {
	driver string
}

// NewStoreMetrics returns a StoreMetrics labelled with driver.
func NewStoreMetrics(driver string) *StoreMetrics {
	return &StoreMetrics{driver: driver}
}

// ObserveQuery records the latency of a store operation.
func (m *StoreMetrics) ObserveQuery(operation, entity string, start time.Time) {
	StoreOperationLatency.WithLabelValues(m.driver, operation, entity).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records latency when called (e.g. defer).
func (m *StoreMetrics) TrackQuery(operation, entity string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, entity, start)
	}
}
