// Package render turns drawing events into pixels on a Surface.
//
// Rendering is deterministic and has no state of its own. Degenerate input
// (a nil surface, a one-point stroke, a shape without an extent) renders
// nothing and is never reported as an error.
package render

import (
	"LiveCanvas/internal/logging"
	"LiveCanvas/internal/state"
)

// Render draws a complete event.
func Render(s *Surface, ev state.DrawEvent) {
	if s == nil {
		return
	}
	if err := ev.Validate(); err != nil {
		logging.L().Debug("[RENDER] skipping malformed event", "kind", ev.Kind, "err", err)
		return
	}
	if ev.Kind.Freehand() {
		RenderStroke(s, ev.Points)
		return
	}
	RenderShape(s, *ev.Shape)
}

// RenderStroke draws a freehand point sequence as consecutive round-capped
// segments. Fewer than two points draw nothing.
//
// Drawing segment by segment makes the full replay paint exactly what the
// local incremental preview painted with RenderSegment.
func RenderStroke(s *Surface, points []state.Point) {
	if s == nil || len(points) < 2 {
		return
	}
	for i := 1; i < len(points); i++ {
		RenderSegment(s, points[i-1], points[i])
	}
}

// RenderSegment draws the segment from a to b using b's style.
func RenderSegment(s *Surface, a, b state.Point) {
	if s == nil {
		return
	}
	s.StrokeLine(a.Pos(), b.Pos(), strokePen(s, b))
}

func strokePen(s *Surface, p state.Point) Pen {
	color := p.Color
	if p.Kind == state.ToolErase {
		color = s.Background()
	}
	return Pen{Color: color, Width: float64(p.LineWidth), Round: true}
}

// RenderShape draws one parametric shape.
func RenderShape(s *Surface, sh state.Shape) {
	if s == nil {
		return
	}
	pen := Pen{Color: sh.Color, Width: float64(sh.LineWidth)}

	switch sh.Kind {
	case state.ToolRectangle:
		w, h, ok := sh.Extent()
		if !ok || w == 0 || h == 0 {
			return
		}
		s.StrokeRect(state.Rect{X: sh.Anchor.X, Y: sh.Anchor.Y, W: w, H: h}, pen)
	case state.ToolSquare:
		box, ok := state.SquareBox(sh)
		if !ok || box.W == 0 {
			return
		}
		s.StrokeRect(box, pen)
	case state.ToolCircle:
		center, r, ok := state.CircleGeometry(sh)
		if !ok || r == 0 {
			return
		}
		s.StrokeCircle(center, r, pen)
	case state.ToolLine:
		if sh.End == nil || *sh.End == sh.Anchor {
			return
		}
		s.StrokeLine(sh.Anchor, *sh.End, pen)
	case state.ToolText:
		if sh.Text == "" {
			return
		}
		s.FillText(sh.Text, sh.Anchor, sh.Color, sh.EffectiveFontSize())
	}
}
