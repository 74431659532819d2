package ui

import (
	"image"
	"image/draw"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"LiveCanvas/internal/board"
)

// BoardWidget shows a board's raster and feeds it pointer and key input.
// Pointer positions are scaled from widget space to canvas pixels.
type BoardWidget struct {
	widget.BaseWidget
	board *board.Board

	mu      sync.Mutex
	frame   *image.RGBA
	pressed bool
	last    fyne.Position

	pending atomic.Bool
	raster  *canvas.Image
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Focusable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

func NewBoardWidget(b *board.Board) *BoardWidget {
	w := &BoardWidget{board: b}
	w.frame = b.Image()
	if w.frame == nil {
		w.frame = image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	w.raster = canvas.NewImageFromImage(w.frame)
	w.raster.FillMode = canvas.ImageFillStretch
	w.raster.ScaleMode = canvas.ImageScalePixels
	w.ExtendBaseWidget(w)
	return w
}

// Invalidate schedules a redraw from the board's current pixels. It may be
// called from any goroutine; bursts collapse into one redraw.
func (w *BoardWidget) Invalidate() {
	if !w.pending.CompareAndSwap(false, true) {
		return
	}
	fyne.Do(func() {
		w.pending.Store(false)
		w.sync()
		w.raster.Refresh()
	})
}

// sync copies the board's pixels into the displayed frame.
func (w *BoardWidget) sync() {
	img := w.board.Image()
	if img == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.frame.Bounds() != img.Bounds() {
		w.frame = img
		w.raster.Image = img
		return
	}
	draw.Draw(w.frame, w.frame.Bounds(), img, img.Bounds().Min, draw.Src)
}

// canvasPoint maps a widget position to canvas pixel coordinates.
func (w *BoardWidget) canvasPoint(pos fyne.Position) (float64, float64) {
	size := w.Size()
	w.mu.Lock()
	b := w.frame.Bounds()
	w.mu.Unlock()
	if size.Width <= 0 || size.Height <= 0 {
		return float64(pos.X), float64(pos.Y)
	}
	x := float64(pos.X) * float64(b.Dx()) / float64(size.Width)
	y := float64(pos.Y) * float64(b.Dy()) / float64(size.Height)
	return x, y
}

func (w *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.pressed = true
	w.last = e.Position
	if c := fyne.CurrentApp().Driver().CanvasForObject(w); c != nil {
		c.Focus(w)
	}
	w.board.PointerDown(w.canvasPoint(e.Position))
}

func (w *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.release()
}

func (w *BoardWidget) Dragged(e *fyne.DragEvent) {
	w.move(e.Position)
}

func (w *BoardWidget) DragEnd() {
	w.release()
}

func (w *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	if w.pressed {
		w.move(e.Position)
	}
}

func (w *BoardWidget) MouseIn(*desktop.MouseEvent) {}

// MouseOut ends a drag the same way releasing the button does.
func (w *BoardWidget) MouseOut() {
	w.pressed = false
	w.board.PointerLeave()
}

func (w *BoardWidget) move(pos fyne.Position) {
	if pos == w.last {
		return
	}
	w.last = pos
	w.board.PointerMove(w.canvasPoint(pos))
}

func (w *BoardWidget) release() {
	w.pressed = false
	w.board.PointerUp()
}

func (w *BoardWidget) FocusGained() {}
func (w *BoardWidget) FocusLost()   {}

func (w *BoardWidget) TypedRune(r rune) {
	w.board.KeyDown(string(r))
}

func (w *BoardWidget) TypedKey(e *fyne.KeyEvent) {
	switch e.Name {
	case fyne.KeyReturn, fyne.KeyEnter:
		w.board.KeyDown(board.KeyEnter)
	case fyne.KeyBackspace:
		w.board.KeyDown(board.KeyBackspace)
	case fyne.KeyEscape:
		w.board.Cancel()
	}
}

func (w *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return &boardWidgetRenderer{board: w}
}

type boardWidgetRenderer struct {
	board *BoardWidget
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.board.raster}
}

func (r *boardWidgetRenderer) Refresh() {
	r.board.raster.Refresh()
}

func (r *boardWidgetRenderer) Destroy() {}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.board.raster.Resize(size)
}

// MinSize is the canvas size, so the raster is shown one unit per pixel
// unless the window is larger.
func (r *boardWidgetRenderer) MinSize() fyne.Size {
	r.board.mu.Lock()
	b := r.board.frame.Bounds()
	r.board.mu.Unlock()
	return fyne.NewSize(float32(b.Dx()), float32(b.Dy()))
}
