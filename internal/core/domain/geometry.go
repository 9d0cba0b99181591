package domain

// Point is a location in container-local coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair. A size is valid when both dimensions are positive.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsValid reports whether both dimensions are positive.
func (s Size) IsValid() bool {
	return s.Width > 0 && s.Height > 0
}

// Rect is an axis-aligned rectangle in container-local coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

func (r Rect) MaxX() float64 {
	return r.X + r.Width
}

func (r Rect) MaxY() float64 {
	return r.Y + r.Height
}

// Intersects reports whether the interiors of two rectangles overlap.
// Rectangles that only share an edge do not intersect.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.MaxX() && other.X < r.MaxX() &&
		r.Y < other.MaxY() && other.Y < r.MaxY()
}

// ContainedIn reports whether the rectangle lies fully inside the container.
func (r Rect) ContainedIn(container Size) bool {
	return r.X >= 0 && r.Y >= 0 && r.MaxX() <= container.Width && r.MaxY() <= container.Height
}

// FitSpacing caps the inter-pane gap for one axis split into cells. The gaps
// together never consume more than half of the axis, so every cell keeps a
// positive size even in a tiny container.
func FitSpacing(axis float64, cells int, spacing float64) float64 {
	gaps := float64(cells - 1)
	if gaps <= 0 || spacing <= 0 {
		return 0
	}
	if spacing*gaps > axis/2 {
		return axis / (2 * gaps)
	}
	return spacing
}

// ClampInto moves the rectangle so it lies within the container, shrinking
// it only when it is larger than the container itself.
func (r Rect) ClampInto(container Size) Rect {
	out := r
	if out.Width > container.Width {
		out.Width = container.Width
	}
	if out.Height > container.Height {
		out.Height = container.Height
	}
	if out.X < 0 {
		out.X = 0
	}
	if out.Y < 0 {
		out.Y = 0
	}
	if out.MaxX() > container.Width {
		out.X = container.Width - out.Width
	}
	if out.MaxY() > container.Height {
		out.Y = container.Height - out.Height
	}
	return out
}
