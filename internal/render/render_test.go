package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LiveCanvas/internal/state"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func newTestSurface() *Surface {
	return NewSurface(64, 64, DefaultBackground)
}

func pixel(s *Surface, x, y int) color.RGBA {
	return s.Image().RGBAAt(x, y)
}

func stroke(kind state.ToolKind, color string, width int, coords ...float64) []state.Point {
	pts := make([]state.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		pts = append(pts, state.Point{X: coords[i], Y: coords[i+1], Color: color, LineWidth: width, Kind: kind})
	}
	return pts
}

func TestNewSurfaceIsBackground(t *testing.T) {
	s := newTestSurface()
	assert.Equal(t, white, pixel(s, 0, 0))
	assert.Equal(t, white, pixel(s, 63, 63))
}

func TestIncrementalStrokeMatchesFullReplay(t *testing.T) {
	pts := stroke(state.ToolDraw, "#000000", 4, 5, 5, 20, 12, 33, 8, 40, 30, 12, 50)

	full := newTestSurface()
	Render(full, state.NewStroke(pts))

	incremental := newTestSurface()
	for i := 1; i < len(pts); i++ {
		RenderSegment(incremental, pts[i-1], pts[i])
	}

	blank := newTestSurface().Snapshot()
	require.False(t, full.Snapshot().Equal(blank), "stroke should paint something")
	assert.True(t, full.Snapshot().Equal(incremental.Snapshot()))
}

func TestSinglePointStrokeRendersNothing(t *testing.T) {
	for _, kind := range []state.ToolKind{state.ToolDraw, state.ToolErase} {
		s := newTestSurface()
		before := s.Snapshot()
		Render(s, state.NewStroke(stroke(kind, "#000000", 8, 30, 30)))
		assert.True(t, s.Snapshot().Equal(before), kind)
	}
}

func TestEraseMatchesBackgroundPaint(t *testing.T) {
	ink := stroke(state.ToolDraw, "#000000", 6, 5, 32, 60, 32)
	path := []float64{30, 5, 30, 60, 50, 60}

	erased := newTestSurface()
	Render(erased, state.NewStroke(ink))
	Render(erased, state.NewStroke(stroke(state.ToolErase, "#ff0000", 10, path...)))

	painted := newTestSurface()
	Render(painted, state.NewStroke(ink))
	Render(painted, state.NewStroke(stroke(state.ToolDraw, DefaultBackground, 10, path...)))

	assert.True(t, erased.Snapshot().Equal(painted.Snapshot()))
	assert.Equal(t, white, pixel(erased, 30, 32), "ink under the eraser is covered")
	assert.NotEqual(t, white, pixel(erased, 10, 32), "ink away from the eraser survives")
}

func TestEraseCanBeDrawnOver(t *testing.T) {
	s := newTestSurface()
	Render(s, state.NewStroke(stroke(state.ToolErase, "#000000", 10, 5, 32, 60, 32)))
	Render(s, state.NewStroke(stroke(state.ToolDraw, "#000000", 4, 32, 5, 32, 60)))
	assert.NotEqual(t, white, pixel(s, 32, 32))
}

func TestSquareUsesShorterSideTowardDrag(t *testing.T) {
	s := newTestSurface()
	Render(s, state.NewShapeEvent(state.NewShape(state.ToolSquare, state.Vec{X: 10, Y: 10}, state.Vec{X: 40, Y: 25}, "#000000", 2)))

	assert.NotEqual(t, white, pixel(s, 24, 17), "right edge at x=25")
	assert.NotEqual(t, white, pixel(s, 17, 24), "bottom edge at y=25")
	assert.Equal(t, white, pixel(s, 32, 17), "nothing beyond the square side")
	assert.Equal(t, white, pixel(s, 39, 17), "nothing at the release x")
	assert.Equal(t, white, pixel(s, 17, 17), "stroke only")
}

func TestRectangleAcceptsNegativeExtent(t *testing.T) {
	s := newTestSurface()
	Render(s, state.NewShapeEvent(state.NewShape(state.ToolRectangle, state.Vec{X: 40, Y: 40}, state.Vec{X: 20, Y: 30}, "#000000", 2)))

	assert.NotEqual(t, white, pixel(s, 20, 35), "left edge at x=20")
	assert.NotEqual(t, white, pixel(s, 30, 30), "top edge at y=30")
	assert.Equal(t, white, pixel(s, 30, 35))
}

func TestCircleCentredOnAnchor(t *testing.T) {
	s := newTestSurface()
	Render(s, state.NewShapeEvent(state.NewShape(state.ToolCircle, state.Vec{X: 20, Y: 20}, state.Vec{X: 23, Y: 24}, "#000000", 2)))

	assert.NotEqual(t, white, pixel(s, 24, 20), "rim at radius 5")
	assert.NotEqual(t, white, pixel(s, 15, 20), "rim on the far side of the anchor")
	assert.Equal(t, white, pixel(s, 20, 20), "centre stays empty")
	assert.Equal(t, white, pixel(s, 27, 20), "nothing beyond the rim")
}

func TestLineConnectsAnchorAndEnd(t *testing.T) {
	s := newTestSurface()
	Render(s, state.NewShapeEvent(state.NewShape(state.ToolLine, state.Vec{X: 5, Y: 40}, state.Vec{X: 55, Y: 40}, "#000000", 4)))

	assert.NotEqual(t, white, pixel(s, 30, 39))
	assert.Equal(t, white, pixel(s, 30, 20))
}

func TestTextRendering(t *testing.T) {
	t.Run("empty text is a no-op", func(t *testing.T) {
		s := newTestSurface()
		before := s.Snapshot()
		Render(s, state.NewShapeEvent(state.NewText(state.Vec{X: 5, Y: 40}, "", "#000000", 1, 24)))
		assert.True(t, s.Snapshot().Equal(before))
	})

	t.Run("glyphs are painted", func(t *testing.T) {
		s := newTestSurface()
		before := s.Snapshot()
		Render(s, state.NewShapeEvent(state.NewText(state.Vec{X: 5, Y: 40}, "Hi", "#000000", 1, 24)))
		assert.False(t, s.Snapshot().Equal(before))
	})
}

func TestDegenerateInputIsSkipped(t *testing.T) {
	tests := []struct {
		name string
		ev   state.DrawEvent
	}{
		{name: "empty", ev: state.DrawEvent{}},
		{name: "empty stroke", ev: state.DrawEvent{Kind: state.ToolDraw}},
		{name: "mixed kinds", ev: state.NewStroke(append(
			stroke(state.ToolDraw, "#000000", 4, 1, 1, 30, 30),
			stroke(state.ToolErase, "#000000", 4, 40, 40)...,
		))},
		{name: "rectangle without extent", ev: state.NewShapeEvent(state.Shape{Kind: state.ToolRectangle, Color: "#000000", LineWidth: 3})},
		{name: "flat rectangle", ev: state.NewShapeEvent(state.NewShape(state.ToolRectangle, state.Vec{X: 5, Y: 5}, state.Vec{X: 40, Y: 5}, "#000000", 3))},
		{name: "zero circle", ev: state.NewShapeEvent(state.NewShape(state.ToolCircle, state.Vec{X: 5, Y: 5}, state.Vec{X: 5, Y: 5}, "#000000", 3))},
		{name: "zero line", ev: state.NewShapeEvent(state.NewShape(state.ToolLine, state.Vec{X: 5, Y: 5}, state.Vec{X: 5, Y: 5}, "#000000", 3))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSurface()
			before := s.Snapshot()
			Render(s, tc.ev)
			assert.True(t, s.Snapshot().Equal(before))
		})
	}
}

func TestNilSurfaceIsIgnored(t *testing.T) {
	assert.NotPanics(t, func() {
		Render(nil, state.NewStroke(stroke(state.ToolDraw, "#000000", 4, 1, 1, 2, 2)))
		RenderShape(nil, state.NewShape(state.ToolLine, state.Vec{}, state.Vec{X: 1, Y: 1}, "#000000", 1))
		RenderSegment(nil, state.Point{}, state.Point{})
	})
}

func TestSnapshotRestore(t *testing.T) {
	s := newTestSurface()
	Render(s, state.NewStroke(stroke(state.ToolDraw, "#000000", 4, 1, 1, 60, 60)))
	snap := s.Snapshot()

	Render(s, state.NewStroke(stroke(state.ToolDraw, "#ff0000", 4, 60, 1, 1, 60)))
	require.False(t, s.Snapshot().Equal(snap))

	s.Restore(snap)
	assert.True(t, s.Snapshot().Equal(snap))

	s.Restore(nil)
	assert.True(t, s.Snapshot().Equal(newTestSurface().Snapshot()))
}

func TestSnapshotIsImmutable(t *testing.T) {
	s := newTestSurface()
	snap := s.Snapshot()
	img := snap.Image()
	img.Pix[0] = 0

	assert.True(t, snap.Equal(newTestSurface().Snapshot()))
}

func TestSurfaceFromSnapshot(t *testing.T) {
	s := newTestSurface()
	Render(s, state.NewStroke(stroke(state.ToolDraw, "#000000", 4, 1, 1, 60, 60)))

	copied := SurfaceFromSnapshot(s.Snapshot(), DefaultBackground)
	assert.True(t, copied.Snapshot().Equal(s.Snapshot()))
}
