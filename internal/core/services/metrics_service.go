package services

import (
	"sync"
	"time"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"
)

// OperationStats aggregates counts for one layout operation kind.
type OperationStats struct {
	Total    int64     `json:"total"`
	Rejected int64     `json:"rejected"`
	LastAt   time.Time `json:"last_at"`
}

// MetricsService keeps in-memory counters for layout activity. It feeds the
// monitoring collector and the stats endpoint; it never influences layout
// decisions.
type MetricsService struct {
	mu sync.RWMutex

	operations map[string]*OperationStats
	intents    map[string]int64
	sink       ports.MetricsCollector
}

func NewMetricsService() *MetricsService {
	return &MetricsService{
		operations: make(map[string]*OperationStats),
		intents:    make(map[string]int64),
	}
}

// SetCollector forwards every recorded operation and intent to c.
func (m *MetricsService) SetCollector(c ports.MetricsCollector) {
	m.mu.Lock()
	m.sink = c
	m.mu.Unlock()
}

func (m *MetricsService) collector() ports.MetricsCollector {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sink
}

// RecordOperation counts one layout operation; a non-nil err counts as a
// rejected call (validation failure, state unchanged).
func (m *MetricsService) RecordOperation(op string, err error, duration time.Duration) {
	m.mu.Lock()
	stats, ok := m.operations[op]
	if !ok {
		stats = &OperationStats{}
		m.operations[op] = stats
	}
	stats.Total++
	if err != nil {
		stats.Rejected++
	}
	stats.LastAt = time.Now()
	m.mu.Unlock()

	if c := m.collector(); c != nil {
		c.RecordOperation(op, err != nil, duration)
	}
}

// RecordIntent counts one applied gesture intent.
func (m *MetricsService) RecordIntent(intentType domain.IntentType) {
	m.mu.Lock()
	m.intents[string(intentType)]++
	m.mu.Unlock()

	if c := m.collector(); c != nil {
		c.RecordIntent(intentType)
	}
}

// OperationStats returns a copy of the per-operation counters.
func (m *MetricsService) OperationStats() map[string]OperationStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]OperationStats, len(m.operations))
	for op, stats := range m.operations {
		out[op] = *stats
	}
	return out
}

// IntentStats returns a copy of the per-intent counters.
func (m *MetricsService) IntentStats() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]int64, len(m.intents))
	for k, v := range m.intents {
		out[k] = v
	}
	return out
}
