package device

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blankFrame(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{0, 0, 0, 255})
		}
	}
	return img
}

func TestFakeScreenshotRepeatsLastFrame(t *testing.T) {
	f := NewFake(960, 540, blankFrame(960, 540), blankFrame(960, 540))
	ctx := context.Background()

	_, err := f.Screenshot(ctx)
	require.NoError(t, err)
	_, err = f.Screenshot(ctx)
	require.NoError(t, err)
	_, err = f.Screenshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.frameIdx)
}

func TestFakeRecordsClicks(t *testing.T) {
	f := NewFake(960, 540)
	ctx := context.Background()
	require.NoError(t, f.Click(ctx, 0.5, 0.5))
	require.Len(t, f.Clicks, 1)
	assert.Equal(t, 0.5, f.Clicks[0].X)
}

func TestParseWMSize(t *testing.T) {
	w, h := parseWMSize("Physical size: 1280x720\n")
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)

	w, h = parseWMSize("garbage")
	assert.Equal(t, 0, w)
	assert.Equal(t, 0, h)
}
