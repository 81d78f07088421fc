package qthought

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

/*
EnsembleMetrics collects run statistics while an ensemble executes. Workers
report into it concurrently.
*/
type EnsembleMetrics struct {
	mu sync.RWMutex

	Workers      int
	RunCount     int64
	FailedRuns   int64
	Inconsistent int64
	TotalRunTime time.Duration

	AverageRunLatency time.Duration
	P95RunLatency     time.Duration
	P99RunLatency     time.Duration

	latencies  []float64
	windowSize int
}

func NewEnsembleMetrics(workers int) *EnsembleMetrics {
	return &EnsembleMetrics{
		Workers:    workers,
		latencies:  make([]float64, 0, 1000),
		windowSize: 1000,
	}
}

func (m *EnsembleMetrics) recordRun(start time.Time, failed, inconsistent bool) {
	duration := time.Since(start)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.RunCount++
	m.TotalRunTime += duration
	if failed {
		m.FailedRuns++
	}
	if inconsistent {
		m.Inconsistent++
	}

	m.updateLatencyPercentiles(duration)
}

// updateLatencyPercentiles keeps a sliding window of the last windowSize runs.
func (m *EnsembleMetrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageRunLatency = m.TotalRunTime / time.Duration(m.RunCount)

	m.latencies = append(m.latencies, float64(duration))
	if len(m.latencies) > m.windowSize {
		m.latencies = m.latencies[1:]
	}

	sorted := make([]float64, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Float64s(sorted)

	m.P95RunLatency = time.Duration(stat.Quantile(0.95, stat.Empirical, sorted, nil))
	m.P99RunLatency = time.Duration(stat.Quantile(0.99, stat.Empirical, sorted, nil))
}

// SuccessRate is the fraction of runs that completed without error.
func (m *EnsembleMetrics) SuccessRate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.RunCount == 0 {
		return 0
	}
	return float64(m.RunCount-m.FailedRuns) / float64(m.RunCount)
}

func (m *EnsembleMetrics) Export() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	success := 0.0
	if m.RunCount > 0 {
		success = float64(m.RunCount-m.FailedRuns) / float64(m.RunCount)
	}

	return map[string]interface{}{
		"workers":      m.Workers,
		"runs":         m.RunCount,
		"failed":       m.FailedRuns,
		"inconsistent": m.Inconsistent,
		"success_rate": success,
		"avg_latency":  m.AverageRunLatency.Microseconds(),
		"p95_latency":  m.P95RunLatency.Microseconds(),
		"p99_latency":  m.P99RunLatency.Microseconds(),
	}
}
