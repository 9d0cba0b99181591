package services

import (
	"math"
	"time"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"
)

// GestureConfig carries the thresholds that turn noisy pointer input into
// decisive layout intents.
type GestureConfig struct {
	TapSlop           float64
	DoubleTapWindow   time.Duration
	LongPressDuration time.Duration
	DragCommitTimeout time.Duration
	MinPinchScale     float64
	MaxPinchScale     float64
}

// DefaultGestureConfig returns the thresholds used when no configuration is
// given.
func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		TapSlop:           10,
		DoubleTapWindow:   300 * time.Millisecond,
		LongPressDuration: 500 * time.Millisecond,
		DragCommitTimeout: 2 * time.Second,
		MinPinchScale:     0.5,
		MaxPinchScale:     2.0,
	}
}

type dragState struct {
	stream         domain.StreamID
	onSlot         bool
	origin         domain.Point
	last           domain.Point
	startedAt      time.Time
	lastEvent      time.Time
	dragging       bool
	longPressFired bool
}

type pinchState struct {
	stream    domain.StreamID
	scale     float64
	startedAt time.Time
	lastEvent time.Time
}

// gestureTranslator converts one connection's raw pointer events into
// discrete intents. Continuous previews are emitted while a gesture runs;
// the terminal intent is guaranteed exactly once per gesture, via a timeout
// fallback when the underlying pointer stream is lost.
type gestureTranslator struct {
	cfg       GestureConfig
	seq       uint64
	collector ports.MetricsCollector

	drag  *dragState
	pinch *pinchState

	lastTapAt     time.Time
	lastTapStream domain.StreamID
}

func NewGestureTranslator(cfg GestureConfig) ports.GestureTranslator {
	if cfg.MaxPinchScale <= cfg.MinPinchScale {
		cfg = DefaultGestureConfig()
	}
	return &gestureTranslator{cfg: cfg}
}

// NewGestureTranslatorWithCollector reports the duration of every completed
// drag and pinch to c.
func NewGestureTranslatorWithCollector(cfg GestureConfig, c ports.MetricsCollector) ports.GestureTranslator {
	tr := NewGestureTranslator(cfg).(*gestureTranslator)
	tr.collector = c
	return tr
}

func (t *gestureTranslator) observeGesture(startedAt, endedAt time.Time) {
	if t.collector != nil {
		t.collector.RecordGestureDuration(endedAt.Sub(startedAt))
	}
}

func (t *gestureTranslator) next(typ domain.IntentType, stream domain.StreamID) domain.Intent {
	t.seq++
	return domain.Intent{Type: typ, StreamID: stream, Seq: t.seq}
}

func (t *gestureTranslator) clampScale(scale float64) float64 {
	if scale < t.cfg.MinPinchScale {
		return t.cfg.MinPinchScale
	}
	if scale > t.cfg.MaxPinchScale {
		return t.cfg.MaxPinchScale
	}
	return scale
}

func (t *gestureTranslator) Handle(ev domain.PointerEvent) []domain.Intent {
	now := ev.At
	if now.IsZero() {
		now = time.Now()
	}

	switch ev.Type {
	case domain.PointerDown:
		var out []domain.Intent
		// A new touch while a drag is unresolved cancels the old gesture:
		// the preview is discarded, never committed.
		if t.drag != nil && t.drag.dragging {
			out = append(out, t.next(domain.IntentDragCancel, t.drag.stream))
		}
		t.drag = &dragState{
			stream:    ev.StreamID,
			onSlot:    ev.StreamID != "",
			origin:    ev.Position,
			last:      ev.Position,
			startedAt: now,
			lastEvent: now,
		}
		return out

	case domain.PointerMove:
		if t.drag == nil {
			return nil
		}
		t.drag.last = ev.Position
		t.drag.lastEvent = now
		if !t.drag.onSlot {
			return nil
		}
		dx := ev.Position.X - t.drag.origin.X
		dy := ev.Position.Y - t.drag.origin.Y
		if !t.drag.dragging && math.Hypot(dx, dy) > t.cfg.TapSlop {
			t.drag.dragging = true
		}
		if !t.drag.dragging {
			return nil
		}
		in := t.next(domain.IntentDragMove, t.drag.stream)
		in.Translation = domain.Point{X: dx, Y: dy}
		return []domain.Intent{in}

	case domain.PointerUp:
		if t.drag == nil {
			return nil
		}
		drag := t.drag
		t.drag = nil

		if drag.dragging {
			t.observeGesture(drag.startedAt, now)
			in := t.next(domain.IntentDragEnd, drag.stream)
			in.Translation = domain.Point{
				X: drag.last.X - drag.origin.X,
				Y: drag.last.Y - drag.origin.Y,
			}
			return []domain.Intent{in}
		}
		if drag.longPressFired {
			return nil
		}
		if drag.onSlot && now.Sub(drag.startedAt) >= t.cfg.LongPressDuration {
			return []domain.Intent{t.next(domain.IntentSelectionMode, drag.stream)}
		}
		if !drag.onSlot {
			// Same slop rule as slot taps: a pan across empty canvas is
			// not a tap and must not clear focus.
			dx := drag.last.X - drag.origin.X
			dy := drag.last.Y - drag.origin.Y
			if math.Hypot(dx, dy) > t.cfg.TapSlop {
				return nil
			}
			t.lastTapStream = ""
			return []domain.Intent{t.next(domain.IntentClearFocus, "")}
		}
		// Tap on a slot: second tap on the same slot inside the window
		// becomes a fullscreen toggle.
		if drag.stream == t.lastTapStream && now.Sub(t.lastTapAt) <= t.cfg.DoubleTapWindow {
			t.lastTapStream = ""
			return []domain.Intent{t.next(domain.IntentFullscreenToggle, drag.stream)}
		}
		t.lastTapStream = drag.stream
		t.lastTapAt = now
		return []domain.Intent{t.next(domain.IntentFocus, drag.stream)}

	case domain.PointerCancel:
		if t.drag == nil {
			return nil
		}
		drag := t.drag
		t.drag = nil
		if drag.dragging {
			return []domain.Intent{t.next(domain.IntentDragCancel, drag.stream)}
		}
		return nil

	case domain.PinchBegin:
		if ev.StreamID == "" {
			return nil
		}
		t.pinch = &pinchState{stream: ev.StreamID, scale: 1.0, startedAt: now, lastEvent: now}
		return nil

	case domain.PinchUpdate:
		if t.pinch == nil {
			return nil
		}
		t.pinch.scale = t.clampScale(ev.Scale)
		t.pinch.lastEvent = now
		in := t.next(domain.IntentResize, t.pinch.stream)
		in.Scale = t.pinch.scale
		return []domain.Intent{in}

	case domain.PinchEnd:
		if t.pinch == nil {
			return nil
		}
		pinch := t.pinch
		t.pinch = nil
		if ev.Scale != 0 {
			pinch.scale = t.clampScale(ev.Scale)
		}
		t.observeGesture(pinch.startedAt, now)
		in := t.next(domain.IntentResizeEnd, pinch.stream)
		in.Scale = pinch.scale
		return []domain.Intent{in}

	case domain.PinchCancel:
		if t.pinch == nil {
			return nil
		}
		pinch := t.pinch
		t.pinch = nil
		return []domain.Intent{t.next(domain.IntentResizeCancel, pinch.stream)}
	}

	return nil
}

// Flush emits time-driven intents. An interrupted drag commits its last
// known translation exactly once after the commit timeout; a held press
// past the long-press threshold enters selection mode.
func (t *gestureTranslator) Flush(now time.Time) []domain.Intent {
	var out []domain.Intent

	if t.drag != nil {
		if t.drag.dragging && now.Sub(t.drag.lastEvent) > t.cfg.DragCommitTimeout {
			drag := t.drag
			t.drag = nil
			t.observeGesture(drag.startedAt, drag.lastEvent)
			in := t.next(domain.IntentDragEnd, drag.stream)
			in.Translation = domain.Point{
				X: drag.last.X - drag.origin.X,
				Y: drag.last.Y - drag.origin.Y,
			}
			out = append(out, in)
		} else if !t.drag.dragging && t.drag.onSlot && !t.drag.longPressFired &&
			now.Sub(t.drag.startedAt) >= t.cfg.LongPressDuration {
			t.drag.longPressFired = true
			out = append(out, t.next(domain.IntentSelectionMode, t.drag.stream))
		}
	}

	if t.pinch != nil && now.Sub(t.pinch.lastEvent) > t.cfg.DragCommitTimeout {
		pinch := t.pinch
		t.pinch = nil
		t.observeGesture(pinch.startedAt, pinch.lastEvent)
		in := t.next(domain.IntentResizeEnd, pinch.stream)
		in.Scale = pinch.scale
		out = append(out, in)
	}

	return out
}
