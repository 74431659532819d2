package board

import (
	"LiveCanvas/internal/render"
	"LiveCanvas/internal/state"
)

// Phase is the externally visible state of the gesture machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseTextEditing
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseTextEditing:
		return "text-editing"
	default:
		return "unknown"
	}
}

// Brush is the style a gesture draws with. It is captured when the gesture
// starts.
type Brush struct {
	Color     string
	LineWidth int
	FontSize  int
}

// DefaultBrush mirrors the toolbar's initial values.
func DefaultBrush() Brush {
	return Brush{Color: "#000000", LineWidth: 5, FontSize: state.DefaultFontSize}
}

// gesture is one of idle, *freehand, *shapeDrag or *textEntry. Each variant
// carries only the fields valid in that state.
type gesture interface {
	phase() Phase
}

type idle struct{}

func (idle) phase() Phase { return PhaseIdle }

// freehand buffers a Draw/Erase stroke. pre is kept only so the stroke can be
// cancelled; moves never restore it.
type freehand struct {
	points []state.Point
	pre    *render.Snapshot
}

func (*freehand) phase() Phase { return PhaseActive }

// shapeDrag rubber-bands a shape from anchor. preview stays nil until the
// pointer moves.
type shapeDrag struct {
	kind    state.ToolKind
	anchor  state.Vec
	brush   Brush
	preview *state.Shape
	pre     *render.Snapshot
}

func (*shapeDrag) phase() Phase { return PhaseActive }

type textEntry struct {
	anchor state.Vec
	brush  Brush
	text   []rune
	pre    *render.Snapshot
}

func (*textEntry) phase() Phase { return PhaseTextEditing }

func (t *textEntry) shape() state.Shape {
	return state.NewText(t.anchor, string(t.text), t.brush.Color, t.brush.LineWidth, t.brush.FontSize)
}

// preRaster returns the pre-gesture raster of g, nil when idle.
func preRaster(g gesture) *render.Snapshot {
	switch g := g.(type) {
	case *freehand:
		return g.pre
	case *shapeDrag:
		return g.pre
	case *textEntry:
		return g.pre
	}
	return nil
}
