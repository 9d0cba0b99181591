package domain

import "time"

// PointerEventType is a raw input event kind fed to the gesture translator.
type PointerEventType string

const (
	PointerDown   PointerEventType = "pointer_down"
	PointerMove   PointerEventType = "pointer_move"
	PointerUp     PointerEventType = "pointer_up"
	PointerCancel PointerEventType = "pointer_cancel"
	PinchBegin    PointerEventType = "pinch_begin"
	PinchUpdate   PointerEventType = "pinch_update"
	PinchEnd      PointerEventType = "pinch_end"
	PinchCancel   PointerEventType = "pinch_cancel"
)

// PointerEvent is one raw input sample. StreamID carries the hit target of
// the gesture; empty means the event landed on empty canvas.
type PointerEvent struct {
	Type     PointerEventType `json:"type"`
	StreamID StreamID         `json:"stream_id,omitempty"`
	Position Point            `json:"position"`
	Scale    float64          `json:"scale,omitempty"`
	At       time.Time        `json:"at,omitempty"`
}

// IntentType is a discrete layout intent produced by the gesture translator.
type IntentType string

const (
	IntentDragMove         IntentType = "drag_move"
	IntentDragEnd          IntentType = "drag_end"
	IntentDragCancel       IntentType = "drag_cancel"
	IntentResize           IntentType = "resize"
	IntentResizeEnd        IntentType = "resize_end"
	IntentResizeCancel     IntentType = "resize_cancel"
	IntentFocus            IntentType = "focus"
	IntentClearFocus       IntentType = "clear_focus"
	IntentFullscreenToggle IntentType = "fullscreen_toggle"
	IntentSelectionMode    IntentType = "selection_mode"
)

// Intent is a discrete layout action derived from raw pointer input.
// DragMove and Resize are preview-only: the layout service commits geometry
// exclusively on the matching terminal intent. Seq preserves per-gesture
// ordering.
type Intent struct {
	Type        IntentType `json:"type"`
	StreamID    StreamID   `json:"stream_id,omitempty"`
	Translation Point      `json:"translation,omitempty"`
	Scale       float64    `json:"scale,omitempty"`
	Seq         uint64     `json:"seq"`
}

// Terminal reports whether the intent ends a continuous gesture.
func (i Intent) Terminal() bool {
	switch i.Type {
	case IntentDragEnd, IntentDragCancel, IntentResizeEnd, IntentResizeCancel:
		return true
	}
	return false
}
