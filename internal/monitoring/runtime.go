package monitoring

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Counter reports a monotonically increasing value such as ticks or train steps
type Counter func() int

// RuntimeMonitor periodically samples goroutine count, heap size and the
// rate of registered counters.
type RuntimeMonitor struct {
	mu             sync.RWMutex
	baseline       int
	current        int
	peak           int
	heapBytes      uint64
	interval       time.Duration
	alertThreshold int
	lastAlert      time.Time
	alertCooldown  time.Duration
	counters       map[string]Counter
	lastCounts     map[string]int
	rates          map[string]float64
	lastSample     time.Time
	logger         zerolog.Logger
}

// NewRuntimeMonitor creates a monitor sampling every interval
func NewRuntimeMonitor(interval time.Duration, logger zerolog.Logger) *RuntimeMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	baseline := runtime.NumGoroutine()
	return &RuntimeMonitor{
		baseline:       baseline,
		current:        baseline,
		peak:           baseline,
		interval:       interval,
		alertThreshold: 1000,
		alertCooldown:  5 * time.Minute,
		counters:       make(map[string]Counter),
		lastCounts:     make(map[string]int),
		rates:          make(map[string]float64),
		lastSample:     time.Now(),
		logger:         logger.With().Str("component", "RuntimeMonitor").Logger(),
	}
}

// Track registers a counter whose per-second rate is reported on each sample
func (m *RuntimeMonitor) Track(name string, c Counter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] = c
	m.lastCounts[name] = c()
}

// Start samples until ctx is done
func (m *RuntimeMonitor) Start(ctx context.Context) {
	m.logger.Info().Int("baseline", m.baseline).Dur("interval", m.interval).Msg("Started runtime monitoring")
	go m.run(ctx)
}

func (m *RuntimeMonitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sample()
		case <-ctx.Done():
			return
		}
	}
}

// Sample takes one measurement and logs it
func (m *RuntimeMonitor) Sample() Metrics {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	current := runtime.NumGoroutine()
	now := time.Now()

	m.mu.Lock()
	m.current = current
	m.peak = max(m.peak, current)
	m.heapBytes = ms.HeapAlloc

	elapsed := now.Sub(m.lastSample).Seconds()
	for name, c := range m.counters {
		n := c()
		if elapsed > 0 {
			m.rates[name] = float64(n-m.lastCounts[name]) / elapsed
		}
		m.lastCounts[name] = n
	}
	m.lastSample = now

	shouldAlert := current > m.alertThreshold && now.Sub(m.lastAlert) > m.alertCooldown
	if shouldAlert {
		m.lastAlert = now
	}
	metrics := m.metricsLocked()
	m.mu.Unlock()

	ev := m.logger.Debug().
		Int("goroutines", metrics.Goroutines).
		Int("peak", metrics.Peak).
		Uint64("heap_bytes", metrics.HeapBytes)
	for name, r := range metrics.Rates {
		ev = ev.Float64(name+"_per_sec", r)
	}
	ev.Msg("Runtime metrics")

	if shouldAlert {
		m.logger.Warn().
			Int("goroutines", current).
			Int("threshold", m.alertThreshold).
			Msg("High goroutine count detected - possible leak")
	}
	return metrics
}

// Metrics contains the last sampled values
type Metrics struct {
	Goroutines int                `json:"goroutines"`
	Baseline   int                `json:"baseline"`
	Peak       int                `json:"peak"`
	HeapBytes  uint64             `json:"heap_bytes"`
	Rates      map[string]float64 `json:"rates"`
}

// GetMetrics returns the most recent sample
func (m *RuntimeMonitor) GetMetrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metricsLocked()
}

func (m *RuntimeMonitor) metricsLocked() Metrics {
	rates := make(map[string]float64, len(m.rates))
	for k, v := range m.rates {
		rates[k] = v
	}
	return Metrics{
		Goroutines: m.current,
		Baseline:   m.baseline,
		Peak:       m.peak,
		HeapBytes:  m.heapBytes,
		Rates:      rates,
	}
}
