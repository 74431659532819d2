package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.White)
		}
	}
	for x := 5; x < 35; x++ {
		img.Set(x, 15, color.RGBA{R: 255, A: 255})
	}
	return img
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sample()))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "/MediaBox [0 0 40.00 30.00]")
	assert.Contains(t, string(out), "/Subtype /Image")
}

func TestWritePDFRejectsEmptyImage(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WritePDF(&buf, image.NewRGBA(image.Rect(0, 0, 0, 0))))
	assert.Zero(t, buf.Len())
}

func TestWritePNGKeepsPixels(t *testing.T) {
	img := sample()
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, img))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
	r, g, b, _ := decoded.At(10, 15).RGBA()
	assert.Equal(t, []uint32{0xffff, 0, 0}, []uint32{r, g, b})
}

func TestForNamePicksEncoderByExtension(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{name: "board.pdf", prefix: "%PDF-"},
		{name: "board.PDF", prefix: "%PDF-"},
		{name: "board.png", prefix: "\x89PNG"},
		{name: "board", prefix: "\x89PNG"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, ForName(tc.name)(&buf, sample()))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(tc.prefix)))
		})
	}
}
