package domain

type StreamID string
type SessionID string
type PiPID string

// Slot is one assignment of a stream to screen space inside the template grid.
// Exactly one slot may be focused and exactly one slot across grid and PiP
// may be audio-active; both invariants are enforced by the layout service.
type Slot struct {
	StreamID    StreamID `json:"stream_id"`
	Frame       Rect     `json:"frame"`
	ZIndex      int      `json:"z_index"`
	Focused     bool     `json:"focused"`
	Minimized   bool     `json:"minimized"`
	Maximized   bool     `json:"maximized"`
	AudioActive bool     `json:"audio_active"`
}

// PiPSlot is a detached, free-floating pane. Its position is unconstrained by
// the template system and its z-index space sits strictly above the grid's.
// Minimizing collapses the visual footprint to a fixed bubble without touching
// the stored size.
type PiPSlot struct {
	ID          PiPID    `json:"id"`
	StreamID    StreamID `json:"stream_id"`
	Position    Point    `json:"position"`
	Size        Size     `json:"size"`
	ZIndex      int      `json:"z_index"`
	Minimized   bool     `json:"minimized"`
	Maximized   bool     `json:"maximized"`
	AudioActive bool     `json:"audio_active"`
}

// Frame returns the rectangle the PiP pane currently occupies. A minimized
// pane reports the bubble footprint, not its stored size.
func (p PiPSlot) Frame(bubble Size) Rect {
	if p.Minimized {
		return Rect{X: p.Position.X, Y: p.Position.Y, Width: bubble.Width, Height: bubble.Height}
	}
	return Rect{X: p.Position.X, Y: p.Position.Y, Width: p.Size.Width, Height: p.Size.Height}
}
