package ecs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors bundles the Prometheus collectors the kernel exposes: pool
// hit/miss/peak gauges/counters and per-stage duration histograms. The core
// never scrapes these itself (per spec.md §1, metrics transport is an
// external concern) — it only updates them; an external `cmd/simulate
// serve` wires a promhttp.Handler over whatever registry these are
// registered against. Grounded on the domain stack's prometheus/client_golang
// usage in cuemby-warren and r3e-network-service_layer, replacing the
// teacher's hand-rolled percentile MetricsCollector
// (internal/core/ecs/metrics.go), which has no seat once a real metrics
// client is in the dependency stack.
type Collectors struct {
	PoolHits   *prometheus.CounterVec
	PoolMisses *prometheus.CounterVec
	PoolPeak   *prometheus.GaugeVec

	StageDuration *prometheus.HistogramVec
	StepDuration  prometheus.Histogram

	ForceRejected *prometheus.CounterVec
	ForceClamped  *prometheus.CounterVec
}

// NewCollectors constructs the collector set without registering it
// anywhere; call Register to attach it to a prometheus.Registerer.
func NewCollectors(namespace string) *Collectors {
	return &Collectors{
		PoolHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pool", Name: "hits_total",
			Help: "Buffer pool acquisitions satisfied from the free list.",
		}, []string{"pool"}),
		PoolMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pool", Name: "misses_total",
			Help: "Buffer pool acquisitions that allocated a new buffer.",
		}, []string{"pool"}),
		PoolPeak: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pool", Name: "peak_in_use",
			Help: "High-water mark of buffers concurrently checked out of the pool.",
		}, []string{"pool"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "stage_duration_seconds",
			Help:    "Wall-clock time spent in each scheduler stage.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"stage"}),
		StepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "step_duration_seconds",
			Help:    "Wall-clock time spent advancing the simulation by one step.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 14),
		}),
		ForceRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "force", Name: "rejected_total",
			Help: "Force contributions rejected for being non-finite.",
		}, []string{"provider"}),
		ForceClamped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "force", Name: "clamped_total",
			Help: "Accumulated forces clamped to max_force_magnitude.",
		}, []string{"provider"}),
	}
}

// Register attaches every collector to reg. A collector that is already
// registered against reg is skipped, so registering the same set twice is
// not an error; any other registration failure is returned rather than
// panicking.
func (c *Collectors) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		c.PoolHits, c.PoolMisses, c.PoolPeak,
		c.StageDuration, c.StepDuration,
		c.ForceRejected, c.ForceClamped,
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}
