package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LiveCanvas/internal/render"
	"LiveCanvas/internal/state"
)

const (
	testW = 96
	testH = 96
)

type harness struct {
	board   *Board
	emitted []state.DrawEvent
	changes int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{board: New()}
	h.board.Attach(render.NewSurface(testW, testH, render.DefaultBackground))
	h.board.OnEmit = func(ev state.DrawEvent) { h.emitted = append(h.emitted, ev) }
	h.board.OnChange = func() { h.changes++ }
	return h
}

func blank() *render.Surface {
	return render.NewSurface(testW, testH, render.DefaultBackground)
}

func TestFreehandGestureEmitsWholeStroke(t *testing.T) {
	h := newHarness(t)
	h.board.SetColor("#ff0000")
	h.board.SetLineWidth(6)

	h.board.PointerDown(10, 10)
	assert.Equal(t, PhaseActive, h.board.Phase())
	h.board.PointerMove(30, 20)
	h.board.PointerMove(50, 60)
	require.Empty(t, h.emitted, "nothing leaves before the gesture ends")
	h.board.PointerUp()

	require.Len(t, h.emitted, 1)
	ev := h.emitted[0]
	assert.Equal(t, state.ToolDraw, ev.Kind)
	require.Len(t, ev.Points, 3)
	assert.Equal(t, state.Point{X: 50, Y: 60, Color: "#ff0000", LineWidth: 6, Kind: state.ToolDraw}, ev.Points[2])
	assert.Equal(t, PhaseIdle, h.board.Phase())

	want := blank()
	render.Render(want, ev)
	assert.True(t, h.board.Snapshot().Equal(want.Snapshot()), "local incremental render matches a remote replay")

	idx, n := h.board.HistoryPosition()
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, n)
}

func TestRenderedBeforeEmitted(t *testing.T) {
	h := newHarness(t)
	var atEmit *render.Snapshot
	h.board.OnEmit = func(state.DrawEvent) { atEmit = h.board.Snapshot() }

	h.board.PointerDown(10, 10)
	h.board.PointerMove(60, 60)
	h.board.PointerUp()

	require.NotNil(t, atEmit)
	assert.False(t, atEmit.Equal(blank().Snapshot()))
	assert.True(t, atEmit.Equal(h.board.Snapshot()))
}

func TestFreehandClickEmitsSinglePoint(t *testing.T) {
	h := newHarness(t)
	h.board.PointerDown(20, 20)
	h.board.PointerUp()

	require.Len(t, h.emitted, 1)
	assert.Len(t, h.emitted[0].Points, 1)
	assert.True(t, h.board.Snapshot().Equal(blank().Snapshot()), "one point paints nothing")
}

func TestEraseGestureCarriesEraseKind(t *testing.T) {
	h := newHarness(t)
	h.board.SetTool(state.ToolErase)
	h.board.PointerDown(5, 5)
	h.board.PointerMove(40, 40)
	h.board.PointerUp()

	require.Len(t, h.emitted, 1)
	assert.Equal(t, state.ToolErase, h.emitted[0].Kind)
	assert.NoError(t, h.emitted[0].Validate())
}

func TestShapePreviewDoesNotSmear(t *testing.T) {
	for _, kind := range []state.ToolKind{state.ToolRectangle, state.ToolCircle, state.ToolSquare, state.ToolLine} {
		t.Run(string(kind), func(t *testing.T) {
			h := newHarness(t)
			h.board.SetTool(kind)

			h.board.PointerDown(20, 20)
			h.board.PointerMove(80, 70)
			h.board.PointerMove(60, 30)
			h.board.PointerMove(45, 50)
			h.board.PointerUp()

			require.Len(t, h.emitted, 1)
			ev := h.emitted[0]
			require.NotNil(t, ev.Shape)
			assert.Equal(t, kind, ev.Kind)
			assert.Equal(t, state.Vec{X: 20, Y: 20}, ev.Shape.Anchor)
			assert.Equal(t, &state.Vec{X: 45, Y: 50}, ev.Shape.End)

			want := blank()
			render.Render(want, ev)
			assert.True(t, h.board.Snapshot().Equal(want.Snapshot()))
		})
	}
}

func TestShapeClickWithoutMoveEmitsNothing(t *testing.T) {
	h := newHarness(t)
	h.board.SetTool(state.ToolRectangle)
	h.board.PointerDown(20, 20)
	h.board.PointerUp()

	assert.Empty(t, h.emitted)
	_, n := h.board.HistoryPosition()
	assert.Equal(t, 0, n)
	assert.Equal(t, PhaseIdle, h.board.Phase())
}

func TestPointerLeaveCommits(t *testing.T) {
	h := newHarness(t)
	h.board.SetTool(state.ToolLine)
	h.board.PointerDown(10, 10)
	h.board.PointerMove(50, 10)
	h.board.PointerLeave()

	require.Len(t, h.emitted, 1)
	assert.Equal(t, PhaseIdle, h.board.Phase())
}

func TestMovesWhileIdleAreIgnored(t *testing.T) {
	h := newHarness(t)
	h.board.PointerMove(10, 10)
	h.board.PointerUp()
	h.board.PointerLeave()

	assert.Empty(t, h.emitted)
	assert.Zero(t, h.changes)
}

func TestTextEntry(t *testing.T) {
	h := newHarness(t)
	h.board.SetTool(state.ToolText)
	h.board.SetFontSize(24)

	h.board.PointerDown(10, 50)
	h.board.PointerUp()
	require.Equal(t, PhaseTextEditing, h.board.Phase(), "pointer up does not leave text editing")

	for _, k := range []string{"H", "i", "x", KeyBackspace, "!", "Shift"} {
		h.board.KeyDown(k)
	}
	require.Empty(t, h.emitted)
	h.board.KeyDown(KeyEnter)

	require.Len(t, h.emitted, 1)
	sh := h.emitted[0].Shape
	require.NotNil(t, sh)
	assert.Equal(t, "Hi!", sh.Text)
	assert.Equal(t, 24, sh.FontSize)
	assert.Equal(t, state.Vec{X: 10, Y: 50}, sh.Anchor)
	assert.Equal(t, PhaseIdle, h.board.Phase())

	want := blank()
	render.Render(want, h.emitted[0])
	assert.True(t, h.board.Snapshot().Equal(want.Snapshot()), "edits do not smear")

	h.board.KeyDown("z")
	assert.Len(t, h.emitted, 1, "keys outside text editing are ignored")
}

func TestEmptyTextCommitEmitsNothing(t *testing.T) {
	h := newHarness(t)
	h.board.SetTool(state.ToolText)
	h.board.PointerDown(10, 50)
	h.board.KeyDown(KeyEnter)

	assert.Empty(t, h.emitted)
	assert.Equal(t, PhaseIdle, h.board.Phase())
}

func TestNewTextClickDropsUncommittedText(t *testing.T) {
	h := newHarness(t)
	h.board.SetTool(state.ToolText)
	h.board.PointerDown(10, 30)
	h.board.KeyDown("A")
	h.board.PointerDown(10, 70)
	h.board.KeyDown("B")
	h.board.KeyDown(KeyEnter)

	require.Len(t, h.emitted, 1)
	assert.Equal(t, "B", h.emitted[0].Shape.Text)

	want := blank()
	render.Render(want, h.emitted[0])
	assert.True(t, h.board.Snapshot().Equal(want.Snapshot()))
}

func TestSwitchingToolDropsText(t *testing.T) {
	h := newHarness(t)
	h.board.SetTool(state.ToolText)
	h.board.PointerDown(10, 30)
	h.board.KeyDown("A")
	h.board.SetTool(state.ToolDraw)

	assert.Equal(t, PhaseIdle, h.board.Phase())
	assert.True(t, h.board.Snapshot().Equal(blank().Snapshot()))
}

func TestCancelRestoresPreGestureRaster(t *testing.T) {
	h := newHarness(t)
	h.board.PointerDown(10, 10)
	h.board.PointerMove(60, 60)
	h.board.Cancel()

	assert.Empty(t, h.emitted)
	assert.Equal(t, PhaseIdle, h.board.Phase())
	assert.True(t, h.board.Snapshot().Equal(blank().Snapshot()))

	h.board.SetTool(state.ToolCircle)
	h.board.PointerDown(40, 40)
	h.board.PointerMove(60, 40)
	h.board.KeyDown(KeyEscape)
	assert.Equal(t, PhaseActive, h.board.Phase(), "escape only applies to text entry")
	h.board.Cancel()
	assert.True(t, h.board.Snapshot().Equal(blank().Snapshot()))
}

func TestUndoAfterGestures(t *testing.T) {
	h := newHarness(t)
	h.board.PointerDown(10, 10)
	h.board.PointerMove(80, 10)
	h.board.PointerUp()
	afterFirst := h.board.Snapshot()

	h.board.PointerDown(10, 40)
	h.board.PointerMove(80, 40)
	h.board.PointerUp()

	require.True(t, h.board.Undo())
	assert.True(t, h.board.Snapshot().Equal(afterFirst))

	require.True(t, h.board.Undo())
	assert.True(t, h.board.Snapshot().Equal(blank().Snapshot()))
	assert.False(t, h.board.Undo())

	idx, n := h.board.HistoryPosition()
	assert.Equal(t, -1, idx)
	assert.Equal(t, 2, n)
}

func TestUndoDuringDragAbandonsIt(t *testing.T) {
	h := newHarness(t)
	h.board.SetTool(state.ToolSquare)
	h.board.PointerDown(10, 10)
	h.board.PointerMove(50, 50)

	assert.False(t, h.board.Undo())
	assert.Equal(t, PhaseIdle, h.board.Phase())
	assert.True(t, h.board.Snapshot().Equal(blank().Snapshot()))
	assert.Empty(t, h.emitted)
}

func TestRemoteEventDuringShapeDragSurvivesPreview(t *testing.T) {
	h := newHarness(t)
	remote := state.NewStroke([]state.Point{
		{X: 5, Y: 90, Color: "#0000ff", LineWidth: 4, Kind: state.ToolDraw},
		{X: 90, Y: 90, Color: "#0000ff", LineWidth: 4, Kind: state.ToolDraw},
	})

	h.board.SetTool(state.ToolRectangle)
	h.board.PointerDown(10, 10)
	h.board.PointerMove(30, 30)
	h.board.ApplyRemote(remote)
	h.board.PointerMove(50, 40)
	h.board.PointerUp()

	require.Len(t, h.emitted, 1)
	want := blank()
	render.Render(want, remote)
	render.Render(want, h.emitted[0])
	assert.True(t, h.board.Snapshot().Equal(want.Snapshot()))
}

func TestRemoteEventDuringTextEntrySurvivesEdits(t *testing.T) {
	h := newHarness(t)
	remote := state.NewShapeEvent(state.NewShape(state.ToolLine, state.Vec{X: 0, Y: 80}, state.Vec{X: 90, Y: 80}, "#00ff00", 3))

	h.board.SetTool(state.ToolText)
	h.board.PointerDown(10, 40)
	h.board.KeyDown("a")
	h.board.ApplyRemote(remote)
	h.board.KeyDown("b")
	h.board.KeyDown(KeyEnter)

	require.Len(t, h.emitted, 1)
	want := blank()
	render.Render(want, remote)
	render.Render(want, h.emitted[0])
	assert.True(t, h.board.Snapshot().Equal(want.Snapshot()))
}

func TestRemoteEventDuringFreehandSurvivesCancel(t *testing.T) {
	h := newHarness(t)
	remote := state.NewShapeEvent(state.NewShape(state.ToolLine, state.Vec{X: 0, Y: 80}, state.Vec{X: 90, Y: 80}, "#00ff00", 3))

	h.board.PointerDown(10, 10)
	h.board.PointerMove(40, 10)
	h.board.ApplyRemote(remote)
	h.board.Cancel()

	want := blank()
	render.Render(want, remote)
	assert.True(t, h.board.Snapshot().Equal(want.Snapshot()))
}

func TestRemoteEventsAreNotEchoedOrRecorded(t *testing.T) {
	h := newHarness(t)
	h.board.ApplyRemote(state.NewShapeEvent(state.NewShape(state.ToolLine, state.Vec{X: 0, Y: 0}, state.Vec{X: 90, Y: 90}, "#000000", 3)))

	assert.Empty(t, h.emitted)
	_, n := h.board.HistoryPosition()
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, h.changes)
}

func TestBoardWithoutSurfaceIgnoresInput(t *testing.T) {
	b := New()
	var emitted int
	b.OnEmit = func(state.DrawEvent) { emitted++ }

	assert.NotPanics(t, func() {
		b.PointerDown(1, 1)
		b.PointerMove(5, 5)
		b.PointerUp()
		b.KeyDown(KeyEnter)
		b.ApplyRemote(state.NewStroke([]state.Point{{Kind: state.ToolDraw}, {X: 3, Y: 3, Kind: state.ToolDraw}}))
		assert.False(t, b.Undo())
	})
	assert.Zero(t, emitted)
	assert.Nil(t, b.Snapshot())
	assert.Nil(t, b.Image())
	assert.Equal(t, PhaseIdle, b.Phase())
}

func TestSetToolIgnoresUnknownKinds(t *testing.T) {
	b := New()
	b.SetTool("spray")
	assert.Equal(t, state.ToolDraw, b.Tool())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "active", PhaseActive.String())
	assert.Equal(t, "text-editing", PhaseTextEditing.String())
	assert.Equal(t, "unknown", Phase(9).String())
}
