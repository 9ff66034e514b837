// internal/utils/metrics.go
package utils

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector accumulates process-local counters and timing
// histograms. Values reset when the process restarts.
type MetricsCollector struct {
	counters   map[string]*counter
	histograms map[string]*histogram

	mu sync.RWMutex
}

type counter struct {
	value int64 // atomic
}

type histogram struct {
	mu    sync.Mutex
	count int64
	sum   int64
	min   int64
	max   int64
}

// HistogramSnapshot is the exported view of one histogram.
type HistogramSnapshot struct {
	Count int64   `json:"count"`
	AvgMs float64 `json:"avg_ms"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
}

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[string]int64             `json:"counters"`
	Histograms map[string]HistogramSnapshot `json:"histograms"`
	Uptime     string                       `json:"uptime"`
}

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
	startTime     = time.Now()
)

// GetMetricsCollector returns the process-wide collector.
func GetMetricsCollector() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = &MetricsCollector{
			counters:   make(map[string]*counter),
			histograms: make(map[string]*histogram),
		}
	})
	return globalMetrics
}

func (m *MetricsCollector) getCounter(name string) *counter {
	m.mu.RLock()
	c, exists := m.counters[name]
	m.mu.RUnlock()
	if exists {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, exists = m.counters[name]; !exists {
		c = &counter{}
		m.counters[name] = c
	}
	return c
}

// IncrementCounter adds one to the named counter.
func (m *MetricsCollector) IncrementCounter(name string) {
	atomic.AddInt64(&m.getCounter(name).value, 1)
}

// AddCounter adds an arbitrary value to the named counter.
func (m *MetricsCollector) AddCounter(name string, value int64) {
	atomic.AddInt64(&m.getCounter(name).value, value)
}

// GetCounter reads the named counter, zero if unknown.
func (m *MetricsCollector) GetCounter(name string) int64 {
	m.mu.RLock()
	c, exists := m.counters[name]
	m.mu.RUnlock()
	if !exists {
		return 0
	}
	return atomic.LoadInt64(&c.value)
}

func (m *MetricsCollector) getHistogram(name string) *histogram {
	m.mu.RLock()
	h, exists := m.histograms[name]
	m.mu.RUnlock()
	if exists {
		return h
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if h, exists = m.histograms[name]; !exists {
		h = &histogram{}
		m.histograms[name] = h
	}
	return h
}

// ObserveDuration records one timing sample in the named histogram.
func (m *MetricsCollector) ObserveDuration(name string, d time.Duration) {
	ms := d.Milliseconds()
	h := m.getHistogram(name)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 || ms < h.min {
		h.min = ms
	}
	if ms > h.max {
		h.max = ms
	}
	h.count++
	h.sum += ms
}

// Snapshot copies all current metric values.
func (m *MetricsCollector) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := MetricsSnapshot{
		Counters:   make(map[string]int64, len(m.counters)),
		Histograms: make(map[string]HistogramSnapshot, len(m.histograms)),
		Uptime:     time.Since(startTime).Round(time.Second).String(),
	}

	for name, c := range m.counters {
		snapshot.Counters[name] = atomic.LoadInt64(&c.value)
	}

	for name, h := range m.histograms {
		h.mu.Lock()
		hs := HistogramSnapshot{
			Count: h.count,
			MinMs: h.min,
			MaxMs: h.max,
		}
		if h.count > 0 {
			hs.AvgMs = float64(h.sum) / float64(h.count)
		}
		h.mu.Unlock()
		snapshot.Histograms[name] = hs
	}

	return snapshot
}
