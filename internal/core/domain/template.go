package domain

import "math"

type TemplateID string

const (
	TemplateSingle  TemplateID = "single"
	TemplateGrid2x2 TemplateID = "grid2x2"
	TemplateGrid3x3 TemplateID = "grid3x3"
	TemplateGrid4x4 TemplateID = "grid4x4"
	TemplateStack   TemplateID = "stack"
	TemplateCustom  TemplateID = "custom"
)

// Template is an immutable descriptor of a canvas partition strategy.
// Rectangles is pure: the same container, slot count and spacing always yield
// the same list, in slot insertion order.
type Template struct {
	ID          TemplateID `json:"id"`
	DisplayName string     `json:"display_name"`
	MaxSlots    int        `json:"max_slots"`
	Columns     int        `json:"columns"`
}

var templates = map[TemplateID]Template{
	TemplateSingle:  {ID: TemplateSingle, DisplayName: "Single", MaxSlots: 1, Columns: 1},
	TemplateGrid2x2: {ID: TemplateGrid2x2, DisplayName: "2x2 Grid", MaxSlots: 4, Columns: 2},
	TemplateGrid3x3: {ID: TemplateGrid3x3, DisplayName: "3x3 Grid", MaxSlots: 9, Columns: 3},
	TemplateGrid4x4: {ID: TemplateGrid4x4, DisplayName: "4x4 Grid", MaxSlots: 16, Columns: 4},
	TemplateStack:   {ID: TemplateStack, DisplayName: "Stack", MaxSlots: 16, Columns: 1},
	TemplateCustom:  {ID: TemplateCustom, DisplayName: "Custom", MaxSlots: 16, Columns: 0},
}

// TemplateByID resolves a built-in template descriptor.
func TemplateByID(id TemplateID) (Template, bool) {
	t, ok := templates[id]
	return t, ok
}

// Templates returns all built-in template descriptors.
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for _, id := range []TemplateID{TemplateSingle, TemplateGrid2x2, TemplateGrid3x3, TemplateGrid4x4, TemplateStack, TemplateCustom} {
		out = append(out, templates[id])
	}
	return out
}

// IsManual reports whether the template allows free-form move/resize.
func (t Template) IsManual() bool {
	return t.ID == TemplateCustom
}

// Rectangles computes one rectangle per slot, in insertion order.
// slotCount == 0 yields an empty list. For grid templates cells are filled
// row-major and never overlap; for stack every slot gets the full container;
// for custom this is the fallback placement used for newly added slots
// (manual frames are kept by the layout service).
func (t Template) Rectangles(container Size, slotCount int, spacing float64) []Rect {
	if slotCount <= 0 {
		return nil
	}

	switch t.ID {
	case TemplateSingle:
		// Extra slots get no screen space; caller must refuse the add or
		// route the stream to PiP.
		return []Rect{{X: 0, Y: 0, Width: container.Width, Height: container.Height}}

	case TemplateStack:
		rects := make([]Rect, slotCount)
		for i := range rects {
			rects[i] = Rect{X: 0, Y: 0, Width: container.Width, Height: container.Height}
		}
		return rects

	case TemplateCustom:
		cols := int(math.Ceil(math.Sqrt(float64(slotCount))))
		rows := (slotCount + cols - 1) / cols
		return gridRects(container, slotCount, cols, rows, spacing)

	default:
		// Fixed grids keep the full n x n cell structure; with fewer slots
		// than cells the remaining cells simply stay empty.
		return gridRects(container, slotCount, t.Columns, t.Columns, spacing)
	}
}

// gridRects partitions the container into rows x cols cells with fixed
// inter-pane spacing and fills the first n in row-major order. Spacing is
// reduced per axis when the container is too small to honor it, so cells
// always keep a positive size and stay inside the container.
func gridRects(container Size, n, cols, rows int, spacing float64) []Rect {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	sx := FitSpacing(container.Width, cols, spacing)
	sy := FitSpacing(container.Height, rows, spacing)
	cellW := (container.Width - sx*float64(cols-1)) / float64(cols)
	cellH := (container.Height - sy*float64(rows-1)) / float64(rows)

	rects := make([]Rect, 0, n)
	for i := 0; i < n; i++ {
		row := i / cols
		col := i % cols
		rects = append(rects, Rect{
			X:      float64(col) * (cellW + sx),
			Y:      float64(row) * (cellH + sy),
			Width:  cellW,
			Height: cellH,
		})
	}
	return rects
}
