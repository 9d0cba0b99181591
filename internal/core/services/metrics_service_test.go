package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"streamgrid/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCollector records every monitoring call.
type fakeCollector struct {
	mu sync.Mutex

	sessionsCreated   int
	sessionsDestroyed []domain.SessionID
	inputConnected    int
	inputDisconnected int
	operations        []string
	rejected          int
	intents           []domain.IntentType
	snapshotsSaved    int
	gestureDurations  []time.Duration
	layoutUpdates     int
}

func (f *fakeCollector) RecordSessionCreated() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionsCreated++
}

func (f *fakeCollector) RecordSessionDestroyed(id domain.SessionID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionsDestroyed = append(f.sessionsDestroyed, id)
}

func (f *fakeCollector) RecordInputConnected() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputConnected++
}

func (f *fakeCollector) RecordInputDisconnected() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputDisconnected++
}

func (f *fakeCollector) RecordOperation(operation string, rejected bool, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operations = append(f.operations, operation)
	if rejected {
		f.rejected++
	}
}

func (f *fakeCollector) RecordIntent(intent domain.IntentType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intents = append(f.intents, intent)
}

func (f *fakeCollector) RecordSnapshotSaved() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshotsSaved++
}

func (f *fakeCollector) RecordGestureDuration(duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gestureDurations = append(f.gestureDurations, duration)
}

func (f *fakeCollector) UpdateSessionLayout(id domain.SessionID, state *domain.LayoutState, pip *domain.PiPState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.layoutUpdates++
}

func TestMetricsService_OperationStats(t *testing.T) {
	m := NewMetricsService()

	m.RecordOperation("add_stream", nil, time.Millisecond)
	m.RecordOperation("add_stream", errors.New("full"), time.Millisecond)
	m.RecordOperation("set_focus", nil, time.Millisecond)

	stats := m.OperationStats()
	require.Contains(t, stats, "add_stream")
	assert.Equal(t, int64(2), stats["add_stream"].Total)
	assert.Equal(t, int64(1), stats["add_stream"].Rejected)
	assert.Equal(t, int64(1), stats["set_focus"].Total)
	assert.False(t, stats["add_stream"].LastAt.IsZero())
}

func TestMetricsService_IntentStats(t *testing.T) {
	m := NewMetricsService()

	m.RecordIntent(domain.IntentFocus)
	m.RecordIntent(domain.IntentFocus)
	m.RecordIntent(domain.IntentDragEnd)

	stats := m.IntentStats()
	assert.Equal(t, int64(2), stats[string(domain.IntentFocus)])
	assert.Equal(t, int64(1), stats[string(domain.IntentDragEnd)])
}

func TestMetricsService_ForwardsToCollector(t *testing.T) {
	m := NewMetricsService()
	fc := &fakeCollector{}
	m.SetCollector(fc)

	m.RecordOperation("move_slot", nil, time.Millisecond)
	m.RecordOperation("move_slot", domain.ErrNotFound, time.Millisecond)
	m.RecordIntent(domain.IntentClearFocus)

	assert.Equal(t, []string{"move_slot", "move_slot"}, fc.operations)
	assert.Equal(t, 1, fc.rejected)
	assert.Equal(t, []domain.IntentType{domain.IntentClearFocus}, fc.intents)
}

func TestLayoutService_OperationsReachCollector(t *testing.T) {
	fc := &fakeCollector{}
	metrics := NewMetricsService()
	metrics.SetCollector(fc)
	svc := NewLayoutService(DefaultLayoutConfig(), &fakePlayback{}, metrics, nil)

	require.NoError(t, svc.AddStream("a"))
	assert.ErrorIs(t, svc.AddStream("a"), domain.ErrDuplicateStream)

	assert.Equal(t, []string{"add_stream", "add_stream"}, fc.operations)
	assert.Equal(t, 1, fc.rejected)
}

func TestLayoutService_IntentsReachCollector(t *testing.T) {
	fc := &fakeCollector{}
	metrics := NewMetricsService()
	metrics.SetCollector(fc)
	svc := NewLayoutService(DefaultLayoutConfig(), &fakePlayback{}, metrics, nil)

	require.NoError(t, svc.AddStream("a"))
	require.NoError(t, svc.ApplyIntent(domain.Intent{Type: domain.IntentFocus, StreamID: "a"}))

	// Previews never count.
	require.NoError(t, svc.ApplyIntent(domain.Intent{Type: domain.IntentDragMove, StreamID: "a"}))

	assert.Equal(t, []domain.IntentType{domain.IntentFocus}, fc.intents)
}
