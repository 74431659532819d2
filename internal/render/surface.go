package render

import (
	"bytes"
	"image"
	"image/draw"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"LiveCanvas/internal/state"
)

// DefaultBackground matches the page colour canvases are initialised with.
const DefaultBackground = "#ffffff"

// Pen describes how a path is stroked.
type Pen struct {
	Color string
	Width float64
	// Round selects round caps. Freehand strokes use them so that
	// consecutive segments join seamlessly.
	Round bool
}

// Surface is the raster target drawing events land on. It exposes the
// handful of primitives the renderer needs plus a synchronous read-back of
// the pixel buffer for snapshots.
//
// A Surface is not safe for concurrent use; callers serialise access.
type Surface struct {
	dc         *gg.Context
	background string
	faces      map[int]font.Face
}

// NewSurface allocates a width x height raster filled with background.
func NewSurface(width, height int, background string) *Surface {
	if background == "" {
		background = DefaultBackground
	}
	s := &Surface{
		dc:         gg.NewContext(width, height),
		background: background,
		faces:      make(map[int]font.Face),
	}
	s.Clear()
	return s
}

// SurfaceFromSnapshot returns a new surface whose pixels are a copy of snap.
func SurfaceFromSnapshot(snap *Snapshot, background string) *Surface {
	s := NewSurface(snap.width, snap.height, background)
	s.Restore(snap)
	return s
}

func (s *Surface) Width() int  { return s.dc.Width() }
func (s *Surface) Height() int { return s.dc.Height() }

// Background is the colour erase strokes paint with.
func (s *Surface) Background() string { return s.background }

// Clear fills the whole surface with the background colour.
func (s *Surface) Clear() {
	s.dc.SetHexColor(s.background)
	s.dc.Clear()
}

func (s *Surface) rgba() *image.RGBA {
	return s.dc.Image().(*image.RGBA)
}

// Snapshot reads back the current pixels.
func (s *Surface) Snapshot() *Snapshot {
	im := s.rgba()
	return &Snapshot{
		width:  im.Rect.Dx(),
		height: im.Rect.Dy(),
		pix:    bytes.Clone(im.Pix),
	}
}

// Restore overwrites the surface with snap. A nil snapshot stands for the
// blank canvas. Snapshots of a different size are drawn at the origin over a
// cleared surface.
func (s *Surface) Restore(snap *Snapshot) {
	if snap == nil {
		s.Clear()
		return
	}
	im := s.rgba()
	if snap.width == im.Rect.Dx() && snap.height == im.Rect.Dy() {
		copy(im.Pix, snap.pix)
		return
	}
	s.Clear()
	draw.Draw(im, im.Rect, snap.Image(), image.Point{}, draw.Src)
}

// Image returns a copy of the current pixels.
func (s *Surface) Image() *image.RGBA {
	return s.Snapshot().Image()
}


func (s *Surface) applyPen(pen Pen) {
	s.dc.SetHexColor(pen.Color)
	s.dc.SetLineWidth(pen.Width)
	if pen.Round {
		s.dc.SetLineCap(gg.LineCapRound)
	} else {
		s.dc.SetLineCap(gg.LineCapButt)
	}
	s.dc.SetLineJoin(gg.LineJoinRound)
}

// StrokeLine strokes the segment a-b.
func (s *Surface) StrokeLine(a, b state.Vec, pen Pen) {
	s.applyPen(pen)
	s.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	s.dc.Stroke()
}

// StrokeRect strokes the outline of r. Negative extents are drawn as given.
func (s *Surface) StrokeRect(r state.Rect, pen Pen) {
	s.applyPen(pen)
	s.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	s.dc.Stroke()
}

// StrokeCircle strokes a circle of radius r around c.
func (s *Surface) StrokeCircle(c state.Vec, r float64, pen Pen) {
	s.applyPen(pen)
	s.dc.DrawCircle(c.X, c.Y, r)
	s.dc.Stroke()
}

// FillText draws text with its baseline origin at at.
func (s *Surface) FillText(text string, at state.Vec, color string, size int) {
	s.dc.SetFontFace(s.face(size))
	s.dc.SetHexColor(color)
	s.dc.DrawString(text, at.X, at.Y)
}

func (s *Surface) face(size int) font.Face {
	if f, ok := s.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(regularFont(), &truetype.Options{Size: float64(size)})
	s.faces[size] = f
	return f
}

var regularFont = sync.OnceValue(func() *truetype.Font {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic("render: embedded Go Regular font failed to parse: " + err.Error())
	}
	return f
})

// Snapshot is an immutable copy of a surface's pixels.
type Snapshot struct {
	width, height int
	pix           []byte
}

func (s *Snapshot) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

// Image returns a fresh RGBA copy of the snapshot.
func (s *Snapshot) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    bytes.Clone(s.pix),
		Stride: 4 * s.width,
		Rect:   s.Bounds(),
	}
}

// Equal reports whether both snapshots hold identical pixels.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.width == o.width && s.height == o.height && bytes.Equal(s.pix, o.pix)
}
