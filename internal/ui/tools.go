package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"LiveCanvas/internal/board"
	"LiveCanvas/internal/state"
)

var palette = []color.Color{
	color.Black,
	color.NRGBA{R: 255, A: 255},         // Red
	color.NRGBA{G: 255, A: 255},         // Green
	color.NRGBA{B: 255, A: 255},         // Blue
	color.NRGBA{R: 255, G: 255, A: 255}, // Yellow
}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// hexColor formats c as #rrggbb, the form drawing events carry.
func hexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// ToolbarActions are the toolbar buttons that reach outside the board.
type ToolbarActions struct {
	OnUndo   func()
	OnExport func()
}

// --- The Main Toolbar ---
func NewToolbar(b *board.Board, actions ToolbarActions) fyne.CanvasObject {
	names := make([]string, len(state.Tools))
	for i, k := range state.Tools {
		names[i] = k.String()
	}
	toolSelect := widget.NewSelect(names, func(name string) {
		if k, err := state.ParseToolKind(name); err == nil {
			b.SetTool(k)
		}
	})
	toolSelect.SetSelected(b.Tool().String())

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() {
			if actions.OnUndo != nil {
				actions.OnUndo()
			}
		}),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			if actions.OnExport != nil {
				actions.OnExport()
			}
		}),
	)

	// --- Color Palette ---
	onColorTapped := func(c color.Color) {
		b.SetColor(hexColor(c))
	}
	colorBox := container.NewHBox()
	for _, c := range palette {
		colorBox.Add(newColorSwatch(c, onColorTapped))
	}

	brush := b.Brush()

	// --- Stroke Width Slider ---
	strokeSlider := widget.NewSlider(1.0, 50.0)
	strokeSlider.SetValue(float64(brush.LineWidth))
	strokeSlider.OnChanged = func(val float64) {
		b.SetLineWidth(int(val))
	}

	fontSlider := widget.NewSlider(8, 96)
	fontSlider.SetValue(float64(brush.FontSize))
	fontSlider.OnChanged = func(val float64) {
		b.SetFontSize(int(val))
	}
	sliderSize := fyne.NewSize(150, 35)

	// --- Assemble everything ---
	return container.NewHBox(
		widget.NewLabel("Tool:"),
		toolSelect,
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		container.New(layout.NewGridWrapLayout(sliderSize), strokeSlider),
		widget.NewLabel("Font:"),
		container.New(layout.NewGridWrapLayout(sliderSize), fontSlider),
		layout.NewSpacer(),
	)
}
