package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records cart synchronization round trips against the platform.
type SyncMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	stale    *prometheus.CounterVec
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_sync_duration_seconds",
		Help:    "Duration of cart sync round trips in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_success",
		Help: "Successful cart sync round trips.",
	}, []string{"op"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_failure",
		Help: "Failed cart sync round trips.",
	}, []string{"op"})
	stale := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_stale_discarded",
		Help: "Sync responses discarded for arriving out of order.",
	}, []string{"op"})
	reg.MustRegister(duration, success, failure, stale)
	return &SyncMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		stale:    stale,
	}
}

// ObserveDuration records the duration for the named sync operation.
func (s *SyncMetrics) ObserveDuration(op string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named sync operation.
func (s *SyncMetrics) IncSuccess(op string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncFailure increments the failure counter for the named sync operation.
func (s *SyncMetrics) IncFailure(op string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncStale counts a response discarded by the ordering guard.
func (s *SyncMetrics) IncStale(op string) {
	if s == nil || s.stale == nil {
		return
	}
	s.stale.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(op string) string {
	op = strings.TrimSpace(strings.ToLower(op))
	if op == "" {
		return "unknown"
	}
	return strings.ReplaceAll(op, " ", "_")
}
