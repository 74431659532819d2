package state

import (
	"errors"
	"fmt"
	"math"
)

// ToolKind selects how a drawing datum is interpreted and rendered.
type ToolKind string

const (
	ToolDraw      ToolKind = "draw"
	ToolErase     ToolKind = "erase"
	ToolRectangle ToolKind = "rectangle"
	ToolCircle    ToolKind = "circle"
	ToolSquare    ToolKind = "square"
	ToolLine      ToolKind = "line"
	ToolText      ToolKind = "text"
)

// Tools lists every tool in toolbar order.
var Tools = []ToolKind{ToolDraw, ToolErase, ToolRectangle, ToolCircle, ToolSquare, ToolLine, ToolText}

// DefaultFontSize is used for text shapes that carry no size.
const DefaultFontSize = 20

// ParseToolKind maps a wire name onto a ToolKind.
func ParseToolKind(s string) (ToolKind, error) {
	k := ToolKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown tool %q", s)
	}
	return k, nil
}

func (k ToolKind) Valid() bool {
	switch k {
	case ToolDraw, ToolErase, ToolRectangle, ToolCircle, ToolSquare, ToolLine, ToolText:
		return true
	}
	return false
}

// Freehand reports whether the tool produces a Point sequence rather than one Shape.
func (k ToolKind) Freehand() bool {
	return k == ToolDraw || k == ToolErase
}

func (k ToolKind) String() string { return string(k) }

// Vec is a surface-relative coordinate.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point is one sample of a freehand stroke.
type Point struct {
	X         float64
	Y         float64
	Color     string
	LineWidth int
	Kind      ToolKind
}

func (p Point) Pos() Vec { return Vec{X: p.X, Y: p.Y} }

// Shape is a finalized parametric primitive. End is nil when the datum
// carried no extent, which is only meaningful for text.
type Shape struct {
	Kind      ToolKind
	Anchor    Vec
	End       *Vec
	Color     string
	LineWidth int
	Text      string
	FontSize  int
}

// NewShape builds a shape spanning anchor to end.
func NewShape(kind ToolKind, anchor, end Vec, color string, lineWidth int) Shape {
	return Shape{Kind: kind, Anchor: anchor, End: &end, Color: color, LineWidth: lineWidth}
}

// NewText builds a text shape anchored at the glyph baseline origin.
func NewText(anchor Vec, text, color string, lineWidth, fontSize int) Shape {
	return Shape{Kind: ToolText, Anchor: anchor, Color: color, LineWidth: lineWidth, Text: text, FontSize: fontSize}
}

// Extent returns the signed drag vector, end minus anchor. ok is false when
// the shape has no end point.
func (s Shape) Extent() (width, height float64, ok bool) {
	if s.End == nil {
		return 0, 0, false
	}
	return s.End.X - s.Anchor.X, s.End.Y - s.Anchor.Y, true
}

// EffectiveFontSize falls back to DefaultFontSize for unset sizes.
func (s Shape) EffectiveFontSize() int {
	if s.FontSize <= 0 {
		return DefaultFontSize
	}
	return s.FontSize
}

// Rect is an axis-aligned box kept in drag order: W and H may be negative.
type Rect struct {
	X, Y, W, H float64
}

// SquareBox derives the square drawn for a drag: side min(|w|,|h|), each axis
// growing toward the drag direction.
func SquareBox(s Shape) (Rect, bool) {
	w, h, ok := s.Extent()
	if !ok {
		return Rect{}, false
	}
	side := math.Min(math.Abs(w), math.Abs(h))
	return Rect{X: s.Anchor.X, Y: s.Anchor.Y, W: side * sign(w), H: side * sign(h)}, true
}

// CircleGeometry places the circle at the anchor with its rim through the end point.
func CircleGeometry(s Shape) (center Vec, radius float64, ok bool) {
	w, h, ok := s.Extent()
	if !ok {
		return Vec{}, 0, false
	}
	return s.Anchor, math.Hypot(w, h), true
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

var (
	ErrEmptyEvent = errors.New("draw event has no elements")
	ErrMixedKinds = errors.New("draw event mixes tool kinds")
)

// DrawEvent is the unit broadcast between participants: either a freehand
// Point sequence or exactly one Shape, tagged by Kind.
type DrawEvent struct {
	Kind   ToolKind
	Points []Point
	Shape  *Shape
}

// NewStroke wraps a point buffer. The buffer is copied so later appends by the
// caller never alter an emitted event.
func NewStroke(points []Point) DrawEvent {
	ev := DrawEvent{Points: append([]Point(nil), points...)}
	if len(points) > 0 {
		ev.Kind = points[0].Kind
	}
	return ev
}

// NewShapeEvent wraps a single shape.
func NewShapeEvent(s Shape) DrawEvent {
	return DrawEvent{Kind: s.Kind, Shape: &s}
}

// Len is the number of wire elements in the event.
func (e DrawEvent) Len() int {
	if e.Kind.Freehand() {
		return len(e.Points)
	}
	if e.Shape != nil {
		return 1
	}
	return 0
}

// Validate checks the variant invariants: a known tag, a non-empty payload
// matching the tag, and a single kind across all points.
func (e DrawEvent) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("invalid tool kind %q", e.Kind)
	}
	if e.Kind.Freehand() {
		if len(e.Points) == 0 {
			return ErrEmptyEvent
		}
		if e.Shape != nil {
			return fmt.Errorf("freehand event carries a shape")
		}
		for _, p := range e.Points {
			if p.Kind != e.Kind {
				return ErrMixedKinds
			}
		}
		return nil
	}
	if e.Shape == nil {
		return ErrEmptyEvent
	}
	if len(e.Points) > 0 {
		return fmt.Errorf("shape event carries points")
	}
	if e.Shape.Kind != e.Kind {
		return ErrMixedKinds
	}
	return nil
}
