package services

import (
	"math"

	"streamgrid/internal/core/domain"
)

// arrangeFrames re-derives one frame per slot for the named heuristic,
// independent of the active template. Frames are returned in slot insertion
// order and always lie within the container.
func arrangeFrames(style domain.ArrangeStyle, container domain.Size, n int, cfg LayoutConfig) ([]domain.Rect, error) {
	switch style {
	case domain.ArrangeGrid:
		return arrangeGrid(container, n, cfg.PaneSpacing), nil
	case domain.ArrangeCascade:
		return arrangeCascade(container, n), nil
	case domain.ArrangeStack:
		return arrangeStack(container, n), nil
	case domain.ArrangeCircle:
		return arrangeCircle(container, n), nil
	default:
		return nil, domain.ErrUnknownArrangeStyle
	}
}

func arrangeGrid(container domain.Size, n int, spacing float64) []domain.Rect {
	if n <= 0 {
		return nil
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols

	sx := domain.FitSpacing(container.Width, cols, spacing)
	sy := domain.FitSpacing(container.Height, rows, spacing)
	cellW := (container.Width - sx*float64(cols-1)) / float64(cols)
	cellH := (container.Height - sy*float64(rows-1)) / float64(rows)

	frames := make([]domain.Rect, 0, n)
	for i := 0; i < n; i++ {
		row := i / cols
		col := i % cols
		frames = append(frames, domain.Rect{
			X:      float64(col) * (cellW + sx),
			Y:      float64(row) * (cellH + sy),
			Width:  cellW,
			Height: cellH,
		})
	}
	return frames
}

// arrangeCascade stacks panes diagonally offset so every title bar stays
// visible.
func arrangeCascade(container domain.Size, n int) []domain.Rect {
	if n <= 0 {
		return nil
	}
	const stepX, stepY = 40.0, 30.0
	w := container.Width * 0.6
	h := container.Height * 0.6

	frames := make([]domain.Rect, 0, n)
	for i := 0; i < n; i++ {
		r := domain.Rect{
			X:      float64(i) * stepX,
			Y:      float64(i) * stepY,
			Width:  w,
			Height: h,
		}
		frames = append(frames, r.ClampInto(container))
	}
	return frames
}

// arrangeStack places every pane in the exact same centered rectangle;
// stacking order decides visibility.
func arrangeStack(container domain.Size, n int) []domain.Rect {
	if n <= 0 {
		return nil
	}
	w := container.Width * 0.8
	h := container.Height * 0.8
	r := domain.Rect{
		X:      (container.Width - w) / 2,
		Y:      (container.Height - h) / 2,
		Width:  w,
		Height: h,
	}
	frames := make([]domain.Rect, n)
	for i := range frames {
		frames[i] = r
	}
	return frames
}

// arrangeCircle spaces pane centers evenly on a ring around the container
// center, starting at twelve o'clock.
func arrangeCircle(container domain.Size, n int) []domain.Rect {
	if n <= 0 {
		return nil
	}
	w := container.Width / 3
	h := container.Height / 3
	cx := container.Width / 2
	cy := container.Height / 2
	radius := math.Min(container.Width, container.Height) * 0.3

	frames := make([]domain.Rect, 0, n)
	for i := 0; i < n; i++ {
		angle := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		r := domain.Rect{
			X:      cx + radius*math.Cos(angle) - w/2,
			Y:      cy + radius*math.Sin(angle) - h/2,
			Width:  w,
			Height: h,
		}
		frames = append(frames, r.ClampInto(container))
	}
	return frames
}
