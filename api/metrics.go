package api

import (
	"sort"
	"sync"
	"time"
)

// maxSamples bounds the durations kept per route for percentiles
const maxSamples = 512

// RouteMetrics aggregates metrics for a specific route
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	P50Time     time.Duration `json:"p50Time"`
	P95Time     time.Duration `json:"p95Time"`
	LastRequest time.Time     `json:"lastRequest"`

	samples []time.Duration
}

// MetricsSummary is the payload of the admin metrics endpoint
type MetricsSummary struct {
	Since         time.Time       `json:"since"`
	TotalRequests int64           `json:"totalRequests"`
	TotalErrors   int64           `json:"totalErrors"`
	ErrorRate     float64         `json:"errorRate"`
	Routes        []*RouteMetrics `json:"routes"`
}

// MetricsCollector collects and aggregates request metrics per route template
type MetricsCollector struct {
	mu            sync.Mutex
	since         time.Time
	routes        map[string]*RouteMetrics
	totalRequests int64
	totalErrors   int64
}

// NewMetricsCollector returns an empty collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		since:  time.Now().UTC(),
		routes: make(map[string]*RouteMetrics),
	}
}

// Record adds one finished request
func (mc *MetricsCollector) Record(method, path string, status int, d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := method + " " + path
	m, ok := mc.routes[key]
	if !ok {
		m = &RouteMetrics{Method: method, Path: path, MinTime: d}
		mc.routes[key] = m
	}
	m.Count++
	m.TotalTime += d
	m.AvgTime = m.TotalTime / time.Duration(m.Count)
	if d < m.MinTime {
		m.MinTime = d
	}
	if d > m.MaxTime {
		m.MaxTime = d
	}
	m.LastRequest = time.Now().UTC()
	if len(m.samples) == maxSamples {
		m.samples = m.samples[1:]
	}
	m.samples = append(m.samples, d)

	mc.totalRequests++
	if status >= 500 {
		m.ErrorCount++
		mc.totalErrors++
	}
}

// Summary returns a snapshot of all routes, slowest average first
func (mc *MetricsCollector) Summary() MetricsSummary {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	s := MetricsSummary{
		Since:         mc.since,
		TotalRequests: mc.totalRequests,
		TotalErrors:   mc.totalErrors,
		Routes:        make([]*RouteMetrics, 0, len(mc.routes)),
	}
	if mc.totalRequests > 0 {
		s.ErrorRate = float64(mc.totalErrors) / float64(mc.totalRequests) * 100
	}
	for _, m := range mc.routes {
		cp := *m
		cp.samples = nil
		cp.P50Time, cp.P95Time = percentiles(m.samples)
		s.Routes = append(s.Routes, &cp)
	}
	sort.Slice(s.Routes, func(i, j int) bool {
		if s.Routes[i].AvgTime == s.Routes[j].AvgTime {
			return s.Routes[i].Method+s.Routes[i].Path < s.Routes[j].Method+s.Routes[j].Path
		}
		return s.Routes[i].AvgTime > s.Routes[j].AvgTime
	})
	return s
}

func percentiles(samples []time.Duration) (p50, p95 time.Duration) {
	if len(samples) == 0 {
		return 0, 0
	}
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := func(q float64) int {
		i := int(float64(len(sorted)) * q)
		if i >= len(sorted) {
			i = len(sorted) - 1
		}
		return i
	}
	return sorted[idx(0.50)], sorted[idx(0.95)]
}
