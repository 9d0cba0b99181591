package domain

import "time"

// ArrangeStyle names an auto-arrange heuristic. Applying one re-derives every
// slot frame and switches the active template to custom.
type ArrangeStyle string

const (
	ArrangeGrid    ArrangeStyle = "grid"
	ArrangeCascade ArrangeStyle = "cascade"
	ArrangeStack   ArrangeStyle = "stack"
	ArrangeCircle  ArrangeStyle = "circle"
)

// LayoutState is the aggregate the layout service owns for one session.
// Slots are kept in insertion order. Fullscreen holds the stream shown at
// full container size, empty when no stream is fullscreen; it is derived
// state and does not modify slot frames.
type LayoutState struct {
	ActiveTemplate TemplateID `json:"active_template"`
	ContainerSize  Size       `json:"container_size"`
	Slots          []Slot     `json:"slots"`
	MaxSlots       int        `json:"max_slots"`
	Fullscreen     StreamID   `json:"fullscreen,omitempty"`
}

// SlotFor returns the slot bound to the stream, or nil.
func (ls *LayoutState) SlotFor(id StreamID) *Slot {
	for i := range ls.Slots {
		if ls.Slots[i].StreamID == id {
			return &ls.Slots[i]
		}
	}
	return nil
}

// PiPState is the parallel collection of detached panes.
type PiPState struct {
	Slots []PiPSlot `json:"slots"`
}

// SlotFor returns the PiP slot with the given id, or nil.
func (ps *PiPState) SlotFor(id PiPID) *PiPSlot {
	for i := range ps.Slots {
		if ps.Slots[i].ID == id {
			return &ps.Slots[i]
		}
	}
	return nil
}

// SlotForStream returns the PiP slot holding the stream, or nil.
func (ps *PiPState) SlotForStream(id StreamID) *PiPSlot {
	for i := range ps.Slots {
		if ps.Slots[i].StreamID == id {
			return &ps.Slots[i]
		}
	}
	return nil
}

// LayoutSnapshot is the persistence surface of a layout: enough to rebuild
// grid and PiP state, re-clamped when restored onto a different container.
type LayoutSnapshot struct {
	Name          string     `json:"name"`
	TemplateID    TemplateID `json:"template_id"`
	ContainerSize Size       `json:"container_size"`
	Slots         []Slot     `json:"slots"`
	PiPSlots      []PiPSlot  `json:"pip_slots"`
	Fullscreen    StreamID   `json:"fullscreen,omitempty"`
	SavedAt       time.Time  `json:"saved_at"`
}
