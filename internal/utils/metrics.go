// internal/utils/metrics.go
package utils

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector collects in-process counters and histograms.
type MetricsCollector struct {
	counters   map[string]*Counter
	histograms map[string]*Histogram

	mu sync.RWMutex
}

// Counter metric, updated atomically
type Counter struct {
	name  string
	value int64
}

// Histogram tracks count, sum, min and max of observed values
type Histogram struct {
	name  string
	count int64
	sum   int64
	min   int64
	max   int64
	mu    sync.Mutex
}

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
)

// NewMetricsCollector returns an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:   make(map[string]*Counter),
		histograms: make(map[string]*Histogram),
	}
}

// GetMetricsCollector returns the global metrics collector
func GetMetricsCollector() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsCollector()
	})
	return globalMetrics
}

// IncrementCounter increments a counter metric
func (m *MetricsCollector) IncrementCounter(name string) {
	m.AddCounter(name, 1)
}

// AddCounter adds a value to a counter metric
func (m *MetricsCollector) AddCounter(name string, value int64) {
	m.mu.RLock()
	counter, exists := m.counters[name]
	m.mu.RUnlock()

	if !exists {
		m.mu.Lock()
		counter, exists = m.counters[name]
		if !exists {
			counter = &Counter{name: name}
			m.counters[name] = counter
		}
		m.mu.Unlock()
	}

	atomic.AddInt64(&counter.value, value)
}

// RecordHistogram records a value in a histogram
func (m *MetricsCollector) RecordHistogram(name string, value int64) {
	m.mu.RLock()
	histogram, exists := m.histograms[name]
	m.mu.RUnlock()

	if !exists {
		m.mu.Lock()
		histogram, exists = m.histograms[name]
		if !exists {
			histogram = &Histogram{
				name: name,
				min:  value,
				max:  value,
			}
			m.histograms[name] = histogram
		}
		m.mu.Unlock()
	}

	histogram.mu.Lock()
	defer histogram.mu.Unlock()

	histogram.count++
	histogram.sum += value

	if value < histogram.min {
		histogram.min = value
	}
	if value > histogram.max {
		histogram.max = value
	}
}

// GetMetrics returns a snapshot of all metrics
func (m *MetricsCollector) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for name, counter := range m.counters {
		counters[name] = atomic.LoadInt64(&counter.value)
	}

	histograms := make(map[string]map[string]int64, len(m.histograms))
	for name, histogram := range m.histograms {
		histogram.mu.Lock()
		histograms[name] = map[string]int64{
			"count": histogram.count,
			"sum":   histogram.sum,
			"min":   histogram.min,
			"max":   histogram.max,
		}
		histogram.mu.Unlock()
	}

	return map[string]interface{}{
		"counters":   counters,
		"histograms": histograms,
	}
}

// GetCounterValue gets the current value of a counter
func (m *MetricsCollector) GetCounterValue(name string) int64 {
	m.mu.RLock()
	counter, exists := m.counters[name]
	m.mu.RUnlock()

	if !exists {
		return 0
	}

	return atomic.LoadInt64(&counter.value)
}

// RequestMetrics records HTTP round trips on either side of the manuscript API.
type RequestMetrics struct {
	component string
	metrics   *MetricsCollector
	logger    *Logger
}

// NewRequestMetrics creates request metrics for a component ("client" or "server").
// A nil collector or logger falls back to the globals.
func NewRequestMetrics(component string, metrics *MetricsCollector, logger *Logger) *RequestMetrics {
	if metrics == nil {
		metrics = GetMetricsCollector()
	}
	if logger == nil {
		logger = GetLogger()
	}
	return &RequestMetrics{component: component, metrics: metrics, logger: logger}
}

// Collector exposes the backing collector.
func (rm *RequestMetrics) Collector() *MetricsCollector {
	return rm.metrics
}

// RecordRequest records one completed request. statusCode 0 means no response arrived.
func (rm *RequestMetrics) RecordRequest(endpoint, method string, statusCode int, duration time.Duration) {
	prefix := rm.component + "_requests"
	rm.metrics.IncrementCounter(prefix + "_total")
	rm.metrics.IncrementCounter(prefix + "_" + method + "_" + endpoint)
	rm.metrics.RecordHistogram(rm.component+"_response_time_ms", duration.Milliseconds())

	class := "none"
	if statusCode > 0 {
		class = strconv.Itoa(statusCode/100) + "xx"
	}
	rm.metrics.IncrementCounter(rm.component + "_responses_" + class)

	rm.logger.Debug("request completed", map[string]interface{}{
		"component": rm.component,
		"endpoint":  endpoint,
		"method":    method,
		"status":    statusCode,
		"duration":  duration.Milliseconds(),
	})
}

// RecordError records a failed operation by error code.
func (rm *RequestMetrics) RecordError(code, operation string) {
	rm.metrics.IncrementCounter(rm.component + "_errors_total")
	rm.metrics.IncrementCounter(rm.component + "_errors_" + code)
	rm.logger.Warn("request failed", map[string]interface{}{
		"component": rm.component,
		"code":      code,
		"operation": operation,
	})
}
