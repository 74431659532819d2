// Package export writes the canvas out as PNG or PDF.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePDF writes a single-page PDF with img filling the page, one point
// per pixel.
func WritePDF(w io.Writer, img image.Image) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("export: empty image")
	}
	width, height := float64(b.Dx()), float64(b.Dy())

	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	var raster bytes.Buffer
	if err := WritePNG(&raster, img); err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("canvas", opts, &raster)
	p.ImageOptions("canvas", 0, 0, width, height, false, opts, 0, "")

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ForName picks the encoder for a file name: PDF for .pdf, PNG otherwise.
func ForName(name string) func(io.Writer, image.Image) error {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return WritePDF
	}
	return WritePNG
}
