package ports

import (
	"time"

	"streamgrid/internal/core/domain"
)

// LayoutService is the single writer for one session's LayoutState and
// PiPState. Every operation is synchronous, atomic and check-then-commit:
// a failed call leaves state untouched.
type LayoutService interface {
	// Structural mutations.
	SetContainerSize(size domain.Size, seq uint64) error
	SetTemplate(id domain.TemplateID) error
	AddStream(id domain.StreamID) error
	RemoveStream(id domain.StreamID) error
	MoveSlot(id domain.StreamID, origin domain.Point) error
	ResizeSlot(id domain.StreamID, size domain.Size) error
	BringToFront(id domain.StreamID) error
	SendToBack(id domain.StreamID) error
	AutoArrange(style domain.ArrangeStyle) error

	// Focus, audio and fullscreen.
	SetFocus(id domain.StreamID) error
	ClearFocus()
	SetAudioActive(id domain.StreamID) error
	MuteAll()
	ToggleFullscreen(id domain.StreamID) error
	ExitFullscreen()

	// Picture-in-picture.
	DetachToPiP(id domain.StreamID) (domain.PiPID, error)
	ReattachFromPiP(id domain.PiPID) error
	MovePiP(id domain.PiPID, pos domain.Point) error
	MinimizePiP(id domain.PiPID) error
	MaximizePiP(id domain.PiPID) error
	RestorePiP(id domain.PiPID) error

	// Gesture funnel: discrete intents from the translator.
	ApplyIntent(intent domain.Intent) error

	// Reads return deep copies; they never expose internal state.
	State() domain.LayoutState
	PiP() domain.PiPState

	// Persistence surface.
	Serialize(name string) domain.LayoutSnapshot
	Restore(snapshot *domain.LayoutSnapshot) error

	// Change notification: fn runs after every committed mutation with a
	// fresh state copy. The returned func unsubscribes.
	Subscribe(fn func(domain.LayoutState, domain.PiPState)) (unsubscribe func())
}

// GestureTranslator converts raw pointer events into discrete layout
// intents. One translator serves one input stream (one connection); it is
// not safe for concurrent use.
type GestureTranslator interface {
	Handle(ev domain.PointerEvent) []domain.Intent
	// Flush emits time-driven intents: the exactly-once drag-end fallback
	// after input loss and long-press detection. Call it periodically.
	Flush(now time.Time) []domain.Intent
}

// MetricsCollector receives layout activity for an external monitoring
// backend. Implementations must be safe for concurrent use; a nil collector
// disables export.
type MetricsCollector interface {
	RecordSessionCreated()
	RecordSessionDestroyed(id domain.SessionID)
	RecordInputConnected()
	RecordInputDisconnected()
	RecordOperation(operation string, rejected bool, duration time.Duration)
	RecordIntent(intent domain.IntentType)
	RecordSnapshotSaved()
	RecordGestureDuration(duration time.Duration)
	UpdateSessionLayout(id domain.SessionID, state *domain.LayoutState, pip *domain.PiPState)
}

// PlaybackEngine is the external player/audio collaborator. It receives
// audio routing changes and never mutates layout state.
type PlaybackEngine interface {
	AudioActivated(id domain.StreamID)
	AllMuted()
}
