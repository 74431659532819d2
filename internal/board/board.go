// Package board is the client-side canvas engine: it turns pointer and key
// input into local previews and finished drawing events, replays remote
// events, and keeps the undo history.
package board

import (
	"image"
	"sync"
	"unicode/utf8"

	"LiveCanvas/internal/logging"
	"LiveCanvas/internal/render"
	"LiveCanvas/internal/state"
)

// Named keys understood by KeyDown. Any other single-character key is typed.
const (
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
	KeyBackspace = "Backspace"
)

// Board serialises input and network callbacks onto one surface.
//
// OnEmit receives every finished local event, after it has been rendered
// locally. OnChange fires whenever pixels changed. Both run without the
// board lock held, so they may call back into the board.
type Board struct {
	mu      sync.Mutex
	surface *render.Surface
	history *History
	gesture gesture
	tool    state.ToolKind
	brush   Brush

	OnEmit   func(state.DrawEvent)
	OnChange func()
}

// New returns a board with no surface attached. Input is ignored until
// Attach is called.
func New() *Board {
	return &Board{
		history: NewHistory(nil),
		gesture: idle{},
		tool:    state.ToolDraw,
		brush:   DefaultBrush(),
	}
}

// Attach installs the drawing surface, resetting history and any gesture.
func (b *Board) Attach(s *render.Surface) {
	b.update(func() (*state.DrawEvent, bool) {
		b.surface = s
		b.gesture = idle{}
		if s == nil {
			b.history = NewHistory(nil)
			return nil, false
		}
		b.history = NewHistory(s)
		return nil, true
	})
}

// update runs fn under the lock and fires callbacks after releasing it.
func (b *Board) update(fn func() (emit *state.DrawEvent, changed bool)) {
	b.mu.Lock()
	emit, changed := fn()
	onEmit, onChange := b.OnEmit, b.OnChange
	b.mu.Unlock()

	if emit != nil && onEmit != nil {
		onEmit(*emit)
	}
	if changed && onChange != nil {
		onChange()
	}
}

func (b *Board) Tool() state.ToolKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tool
}

// SetTool switches the tool for the next gesture. Uncommitted text is
// dropped; a drag in progress keeps the tool it started with.
func (b *Board) SetTool(k state.ToolKind) {
	if !k.Valid() {
		return
	}
	b.update(func() (*state.DrawEvent, bool) {
		b.tool = k
		if _, ok := b.gesture.(*textEntry); ok {
			return nil, b.abandon()
		}
		return nil, false
	})
}

func (b *Board) Brush() Brush {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.brush
}

func (b *Board) SetColor(c string) {
	b.mu.Lock()
	b.brush.Color = c
	b.mu.Unlock()
}

func (b *Board) SetLineWidth(w int) {
	if w < 1 {
		w = 1
	}
	b.mu.Lock()
	b.brush.LineWidth = w
	b.mu.Unlock()
}

func (b *Board) SetFontSize(size int) {
	if size < 1 {
		size = state.DefaultFontSize
	}
	b.mu.Lock()
	b.brush.FontSize = size
	b.mu.Unlock()
}

func (b *Board) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gesture.phase()
}

// HistoryPosition reports the undo index and the number of snapshots.
func (b *Board) HistoryPosition() (index, length int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.Index(), b.history.Len()
}

// Snapshot reads back the surface, nil when none is attached.
func (b *Board) Snapshot() *render.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.surface == nil {
		return nil
	}
	return b.surface.Snapshot()
}

// Image returns a copy of the current pixels for display or export.
func (b *Board) Image() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.surface == nil {
		return nil
	}
	return b.surface.Image()
}

// PointerDown starts a gesture with the current tool.
func (b *Board) PointerDown(x, y float64) {
	b.update(func() (*state.DrawEvent, bool) {
		if b.surface == nil {
			return nil, false
		}
		var emit *state.DrawEvent
		var changed bool
		switch b.gesture.(type) {
		case *textEntry:
			changed = b.abandon()
		case *freehand, *shapeDrag:
			// The up event was lost; finish what was drawn.
			emit, changed = b.finish()
		}

		at := state.Vec{X: x, Y: y}
		pre := b.surface.Snapshot()
		brush := b.brush
		switch {
		case b.tool.Freehand():
			b.gesture = &freehand{
				points: []state.Point{{X: x, Y: y, Color: brush.Color, LineWidth: brush.LineWidth, Kind: b.tool}},
				pre:    pre,
			}
		case b.tool == state.ToolText:
			b.gesture = &textEntry{anchor: at, brush: brush, pre: pre}
		default:
			b.gesture = &shapeDrag{kind: b.tool, anchor: at, brush: brush, pre: pre}
		}
		return emit, changed
	})
}

// PointerMove extends a freehand stroke by one segment or redraws the shape
// preview over the pre-gesture raster.
func (b *Board) PointerMove(x, y float64) {
	b.update(func() (*state.DrawEvent, bool) {
		switch g := b.gesture.(type) {
		case *freehand:
			last := g.points[len(g.points)-1]
			next := state.Point{X: x, Y: y, Color: last.Color, LineWidth: last.LineWidth, Kind: last.Kind}
			g.points = append(g.points, next)
			render.RenderSegment(b.surface, last, next)
			return nil, true
		case *shapeDrag:
			b.surface.Restore(g.pre)
			sh := state.NewShape(g.kind, g.anchor, state.Vec{X: x, Y: y}, g.brush.Color, g.brush.LineWidth)
			g.preview = &sh
			render.RenderShape(b.surface, sh)
			return nil, true
		}
		return nil, false
	})
}

// PointerUp ends a drag gesture. Text entry is unaffected.
func (b *Board) PointerUp() {
	b.update(b.finish)
}

// PointerLeave ends a drag gesture the same way PointerUp does.
func (b *Board) PointerLeave() {
	b.update(b.finish)
}

// KeyDown edits or commits in-progress text. key is either one of the named
// keys or a single character.
func (b *Board) KeyDown(key string) {
	b.update(func() (*state.DrawEvent, bool) {
		t, ok := b.gesture.(*textEntry)
		if !ok {
			return nil, false
		}
		switch key {
		case KeyEnter:
			return b.commitText(t)
		case KeyEscape:
			return nil, b.abandon()
		case KeyBackspace:
			if len(t.text) == 0 {
				return nil, false
			}
			t.text = t.text[:len(t.text)-1]
		default:
			if utf8.RuneCountInString(key) != 1 {
				return nil, false
			}
			r, _ := utf8.DecodeRuneInString(key)
			t.text = append(t.text, r)
		}
		b.surface.Restore(t.pre)
		render.RenderShape(b.surface, t.shape())
		return nil, true
	})
}

// Cancel abandons the current gesture without emitting anything and puts
// the pre-gesture raster back.
func (b *Board) Cancel() {
	b.update(func() (*state.DrawEvent, bool) {
		return nil, b.abandon()
	})
}

// Undo abandons any gesture in progress and steps the history back once.
func (b *Board) Undo() bool {
	var undone bool
	b.update(func() (*state.DrawEvent, bool) {
		if b.surface == nil {
			return nil, false
		}
		abandoned := b.abandon()
		undone = b.history.Undo()
		return nil, undone || abandoned
	})
	return undone
}

// ApplyRemote renders an event received from another participant. During a
// shape or text gesture the event is folded into the pre-gesture raster so
// the next preview restore keeps it.
func (b *Board) ApplyRemote(ev state.DrawEvent) {
	b.update(func() (*state.DrawEvent, bool) {
		if b.surface == nil {
			return nil, false
		}
		switch g := b.gesture.(type) {
		case *shapeDrag:
			g.pre = b.foldRemote(g.pre, ev)
			if g.preview != nil {
				render.RenderShape(b.surface, *g.preview)
			}
		case *textEntry:
			g.pre = b.foldRemote(g.pre, ev)
			render.RenderShape(b.surface, g.shape())
		case *freehand:
			render.Render(b.surface, ev)
			scratch := render.SurfaceFromSnapshot(g.pre, b.surface.Background())
			render.Render(scratch, ev)
			g.pre = scratch.Snapshot()
		default:
			render.Render(b.surface, ev)
		}
		return nil, true
	})
}

// foldRemote restores pre, draws ev on it and returns the new raster, leaving
// the surface showing it.
func (b *Board) foldRemote(pre *render.Snapshot, ev state.DrawEvent) *render.Snapshot {
	b.surface.Restore(pre)
	render.Render(b.surface, ev)
	return b.surface.Snapshot()
}

// finish leaves an Active gesture, emitting its buffer when non-empty.
// Callers hold the lock.
func (b *Board) finish() (*state.DrawEvent, bool) {
	var ev state.DrawEvent
	switch g := b.gesture.(type) {
	case *freehand:
		ev = state.NewStroke(g.points)
	case *shapeDrag:
		if g.preview == nil {
			b.gesture = idle{}
			return nil, false
		}
		ev = state.NewShapeEvent(*g.preview)
	default:
		return nil, false
	}
	b.gesture = idle{}
	b.history.Push(b.surface.Snapshot())
	logging.L().Debug("[BOARD] gesture finished", "kind", ev.Kind, "elements", ev.Len())
	return &ev, false
}

func (b *Board) commitText(t *textEntry) (*state.DrawEvent, bool) {
	b.gesture = idle{}
	if len(t.text) == 0 {
		return nil, false
	}
	ev := state.NewShapeEvent(t.shape())
	b.history.Push(b.surface.Snapshot())
	logging.L().Debug("[BOARD] text committed", "chars", len(t.text))
	return &ev, false
}

// abandon drops the current gesture and restores its pre-gesture raster.
// Callers hold the lock.
func (b *Board) abandon() bool {
	pre := preRaster(b.gesture)
	_, wasIdle := b.gesture.(idle)
	b.gesture = idle{}
	if wasIdle || b.surface == nil {
		return false
	}
	b.surface.Restore(pre)
	return true
}
