// Package metrics provides in-memory per-backend attempt statistics.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/raphaelgruber/lessonplan/internal/generate"
)

// BackendMetrics holds aggregated attempt metrics for a single backend.
type BackendMetrics struct {
	Attempts  int64
	Successes int64
	Retryable int64
	Terminal  int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// BackendSnapshot provides computed stats from raw metrics.
type BackendSnapshot struct {
	Backend   string  `json:"backend"`
	Attempts  int64   `json:"attempts"`
	Successes int64   `json:"successes"`
	Retryable int64   `json:"retryable"`
	Terminal  int64   `json:"terminal"`
	AvgTimeMs float64 `json:"avg_time_ms"`
	MinTimeMs int64   `json:"min_time_ms"`
	MaxTimeMs int64   `json:"max_time_ms"`
}

// Snapshot represents the run statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64           `json:"uptime_seconds"`
	Backends      []BackendSnapshot `json:"backends"`
}

// Collector aggregates attempt statistics per backend.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	backends  map[string]*BackendMetrics
}

// Compile-time check that Collector can observe a Driver.
var _ generate.Recorder = (*Collector)(nil)

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		backends:  make(map[string]*BackendMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for a backend.
// Caller must hold write lock.
func (c *Collector) getOrCreate(backend string) *BackendMetrics {
	m, ok := c.backends[backend]
	if !ok {
		m = &BackendMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.backends[backend] = m
	}
	return m
}

// RecordAttempt records one attempt against backend.
func (c *Collector) RecordAttempt(backend string, kind generate.OutcomeKind, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(backend)
	m.Attempts++
	m.TotalTime += duration

	switch kind {
	case generate.KindSuccess:
		m.Successes++
	case generate.KindRetryable:
		m.Retryable++
	default:
		m.Terminal++
	}

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// snapshotBackend creates a snapshot for a backend, returning nil if no data.
func snapshotBackend(name string, m *BackendMetrics) *BackendSnapshot {
	if m == nil || m.Attempts == 0 {
		return nil
	}
	return &BackendSnapshot{
		Backend:   name,
		Attempts:  m.Attempts,
		Successes: m.Successes,
		Retryable: m.Retryable,
		Terminal:  m.Terminal,
		AvgTimeMs: float64(m.TotalTime.Milliseconds()) / float64(m.Attempts),
		MinTimeMs: m.MinTime.Milliseconds(),
		MaxTimeMs: m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot sorted by backend name.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Backends:      make([]BackendSnapshot, 0, len(c.backends)),
	}
	for name, m := range c.backends {
		if s := snapshotBackend(name, m); s != nil {
			snap.Backends = append(snap.Backends, *s)
		}
	}
	sort.Slice(snap.Backends, func(i, j int) bool {
		return snap.Backends[i].Backend < snap.Backends[j].Backend
	})
	return snap
}
