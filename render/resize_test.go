package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestResizePNGScalesDownKeepingAspect(t *testing.T) {
	original := testPNG(t, 1200, 600)

	out, err := ResizePNG(original, 600)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestResizePNGNeverUpscales(t *testing.T) {
	original := testPNG(t, 400, 200)

	out, err := ResizePNG(original, 4000)
	require.NoError(t, err)
	assert.Equal(t, original, out)
}

func TestResizePNGClampsTinyWidths(t *testing.T) {
	original := testPNG(t, 1200, 600)

	out, err := ResizePNG(original, 1)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
}

func TestResizePNGZeroWidthPassesThrough(t *testing.T) {
	original := testPNG(t, 300, 150)

	out, err := ResizePNG(original, 0)
	require.NoError(t, err)
	assert.Equal(t, original, out)
}

func TestResizePNGRejectsGarbage(t *testing.T) {
	_, err := ResizePNG([]byte("not a png"), 200)
	assert.Error(t, err)
}
