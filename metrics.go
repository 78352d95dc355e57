package qecc

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for scenario metrics.
const (
	OutcomePassed  = "passed"
	OutcomeFailed  = "failed"
	OutcomeFatal   = "fatal"
	OutcomeInvalid = "invalid"
	OutcomeSkipped = "skipped"
)

/*
Metrics tracks pool throughput and scenario outcomes. The plain fields are
for in-process inspection; the same numbers are mirrored into a private
Prometheus registry so a caller can gather or expose them.
*/
type Metrics struct {
	mu                 sync.RWMutex
	WorkerCount        int
	JobQueueSize       int
	TotalJobTime       time.Duration
	JobCount           int64
	FailedJobs         int64
	SchedulingFailures int64
	AverageJobLatency  time.Duration
	P95JobLatency      time.Duration
	P99JobLatency      time.Duration
	JobSuccessRate     float64
	Outcomes           map[string]int64

	latencies  []time.Duration
	windowSize int

	registry       *prometheus.Registry
	jobsTotal      *prometheus.CounterVec
	jobDuration    prometheus.Histogram
	scenariosTotal *prometheus.CounterVec
	queueDepth     prometheus.Gauge
	workers        prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Outcomes:   make(map[string]int64),
		latencies:  make([]time.Duration, 0, 1000),
		windowSize: 1000,
		registry:   prometheus.NewRegistry(),
		jobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "qecc",
				Name:      "jobs_total",
				Help:      "Jobs executed by the pool, by result",
			},
			[]string{"result"},
		),
		jobDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "qecc",
				Name:      "job_duration_seconds",
				Help:      "Wall time from scheduling to completion",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
		scenariosTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "qecc",
				Name:      "scenarios_total",
				Help:      "Evaluated scenarios, by outcome",
			},
			[]string{"outcome"},
		),
		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "qecc",
				Name:      "job_queue_depth",
				Help:      "Jobs waiting for a worker",
			},
		),
		workers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "qecc",
				Name:      "workers",
				Help:      "Running workers",
			},
		),
	}

	m.registry.MustRegister(m.jobsTotal, m.jobDuration, m.scenariosTotal, m.queueDepth, m.workers)

	return m
}

// Registry exposes the Prometheus registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) recordJobExecution(startTime time.Time, success bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalJobTime += duration
	m.JobCount++
	if !success {
		m.FailedJobs++
	}
	m.JobSuccessRate = float64(m.JobCount-m.FailedJobs) / float64(m.JobCount)
	m.updateLatencyPercentiles(duration)

	result := "success"
	if !success {
		result = "error"
	}
	m.jobsTotal.WithLabelValues(result).Inc()
	m.jobDuration.Observe(duration.Seconds())
}

func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageJobLatency = (m.AverageJobLatency*time.Duration(m.JobCount-1) + duration) / time.Duration(m.JobCount)

	m.latencies = append(m.latencies, duration)
	if len(m.latencies) > m.windowSize {
		m.latencies = m.latencies[1:]
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	p95Index := min(int(float64(len(sorted))*0.95), len(sorted)-1)
	p99Index := min(int(float64(len(sorted))*0.99), len(sorted)-1)

	m.P95JobLatency = sorted[p95Index]
	m.P99JobLatency = sorted[p99Index]
}

// RecordOutcome counts one scenario under the given outcome label.
func (m *Metrics) RecordOutcome(outcome string) {
	m.mu.Lock()
	m.Outcomes[outcome]++
	m.mu.Unlock()

	m.scenariosTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) recordSchedulingFailure() {
	m.mu.Lock()
	m.SchedulingFailures++
	m.mu.Unlock()
}

func (m *Metrics) setQueue(size, workers int) {
	m.mu.Lock()
	m.JobQueueSize = size
	m.WorkerCount = workers
	m.mu.Unlock()

	m.queueDepth.Set(float64(size))
	m.workers.Set(float64(workers))
}

// Outcome returns how many scenarios were recorded under outcome.
func (m *Metrics) Outcome(outcome string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Outcomes[outcome]
}

// ExportMetrics returns a snapshot for logging.
func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := map[string]interface{}{
		"worker_count": m.WorkerCount,
		"queue_size":   m.JobQueueSize,
		"job_count":    m.JobCount,
		"success_rate": m.JobSuccessRate,
		"avg_latency":  m.AverageJobLatency.Microseconds(),
		"p95_latency":  m.P95JobLatency.Microseconds(),
		"p99_latency":  m.P99JobLatency.Microseconds(),
	}
	for outcome, n := range m.Outcomes {
		out["scenarios_"+outcome] = n
	}
	return out
}
