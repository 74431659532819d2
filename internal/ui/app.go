package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"LiveCanvas/internal/board"
	"LiveCanvas/internal/export"
	"LiveCanvas/internal/logging"
)

// Options configures the board window.
type Options struct {
	Title string
	// ShareLink is shown with a copy button when non-empty.
	ShareLink string
}

// Window is the desktop board: toolbar, canvas and a status line.
type Window struct {
	app    fyne.App
	win    fyne.Window
	board  *board.Board
	canvas *BoardWidget
	status *widget.Label
}

// NewWindow builds the window around b. It installs b.OnChange; the caller
// owns b.OnEmit.
func NewWindow(b *board.Board, opts Options) *Window {
	if opts.Title == "" {
		opts.Title = "LiveCanvas"
	}
	a := app.NewWithID("io.livecanvas.board")
	w := &Window{
		app:    a,
		win:    a.NewWindow(opts.Title),
		board:  b,
		canvas: NewBoardWidget(b),
		status: widget.NewLabel("Ready"),
	}
	b.OnChange = w.canvas.Invalidate

	toolbar := NewToolbar(b, ToolbarActions{
		OnUndo:   func() { b.Undo() },
		OnExport: w.showExport,
	})

	bottom := []fyne.CanvasObject{w.status}
	if opts.ShareLink != "" {
		link := opts.ShareLink
		bottom = append(bottom, widget.NewSeparator(), widget.NewLabel(link),
			widget.NewButton("Copy link", func() {
				w.win.Clipboard().SetContent(link)
				w.SetStatus("Share link copied")
			}))
	}

	content := container.NewBorder(toolbar, container.NewHBox(bottom...), nil, nil,
		container.NewScroll(container.NewCenter(w.canvas)))
	w.win.SetContent(content)
	w.win.Resize(fyne.NewSize(1024, 768))

	w.win.Canvas().AddShortcut(&fyne.ShortcutUndo{}, func(fyne.Shortcut) { b.Undo() })
	w.win.Canvas().Focus(w.canvas)
	return w
}

// SetStatus updates the status line from any goroutine.
func (w *Window) SetStatus(text string) {
	fyne.Do(func() { w.status.SetText(text) })
}

// Notify shows text on the status line and as a desktop notification.
func (w *Window) Notify(text string) {
	w.SetStatus(text)
	w.app.SendNotification(fyne.NewNotification("LiveCanvas", text))
}

// ShowAndRun blocks until the window is closed.
func (w *Window) ShowAndRun() {
	w.win.ShowAndRun()
}

func (w *Window) showExport() {
	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			w.SetStatus(fmt.Sprintf("Export failed: %v", err))
			return
		}
		if writer == nil {
			return
		}
		w.exportTo(writer)
	}, w.win)
	save.SetFileName("livecanvas.png")
	save.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".pdf"}))
	save.Show()
}

func (w *Window) exportTo(writer fyne.URIWriteCloser) {
	defer func() {
		if err := writer.Close(); err != nil {
			logging.L().Error("[UI] closing export", "err", err)
		}
	}()

	img := w.board.Image()
	if img == nil {
		w.SetStatus("Nothing to export")
		return
	}
	if err := export.ForName(writer.URI().Name())(writer, img); err != nil {
		logging.L().Error("[UI] export failed", "uri", writer.URI().String(), "err", err)
		w.SetStatus("Error writing file")
		return
	}
	w.SetStatus("Exported " + writer.URI().Name())
}
