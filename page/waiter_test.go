package page

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/autowsgr/helmsman/device"
	"github.com/autowsgr/helmsman/vision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeFrame(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func isColor(c color.RGBA) Checker {
	return func(screen image.Image) bool {
		r, g, b, _ := screen.At(0, 0).RGBA()
		rr, gg, bb, _ := c.RGBA()
		return r == rr && g == gg && b == bb
	}
}

func TestWaitForPageReturnsAsSoonAsCheckerMatches(t *testing.T) {
	fake := device.NewFake(100, 100, fakeFrame(color.RGBA{0, 0, 0, 255}), fakeFrame(color.RGBA{255, 0, 0, 255}))
	opts := WaitOptions{Timeout: time.Second, Interval: time.Millisecond}

	screen, err := WaitForPage(context.Background(), fake, isColor(color.RGBA{255, 0, 0, 255}), opts)
	require.NoError(t, err)
	require.NotNil(t, screen)
}

func TestWaitForPageTimesOut(t *testing.T) {
	fake := device.NewFake(100, 100, fakeFrame(color.RGBA{0, 0, 0, 255}))
	opts := WaitOptions{Timeout: 5 * time.Millisecond, Interval: time.Millisecond, Source: Main, Target: Map}

	_, err := WaitForPage(context.Background(), fake, isColor(color.RGBA{255, 0, 0, 255}), opts)
	require.Error(t, err)
	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, Main, navErr.Source)
	assert.Equal(t, Map, navErr.Target)
}

func TestWaitLeavePageReturnsWhenCheckerGoesFalse(t *testing.T) {
	fake := device.NewFake(100, 100, fakeFrame(color.RGBA{0, 0, 0, 255}), fakeFrame(color.RGBA{255, 0, 0, 255}))
	opts := WaitOptions{Timeout: time.Second, Interval: time.Millisecond}

	_, err := WaitLeavePage(context.Background(), fake, isColor(color.RGBA{0, 0, 0, 255}), opts)
	require.NoError(t, err)
}

func TestClickAndWaitForPageRetriesOnDroppedTransition(t *testing.T) {
	// With a 1ns timeout each wait gives up after the frame it polls, so the
	// first attempt cannot reach the matching third frame: a later attempt,
	// with its own click, has to.
	fake := device.NewFake(100, 100,
		fakeFrame(color.RGBA{0, 0, 0, 255}),
		fakeFrame(color.RGBA{0, 0, 0, 255}),
		fakeFrame(color.RGBA{255, 0, 0, 255}),
	)
	opts := WaitOptions{Timeout: time.Nanosecond, Interval: time.Millisecond}

	_, err := ClickAndWaitForPage(context.Background(), fake, 0.5, 0.5, isColor(color.RGBA{255, 0, 0, 255}), opts, 2)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(fake.Clicks), 2)
}

func TestWaitForPageDismissesOverlay(t *testing.T) {
	overlay := Overlay{
		Name: "test_overlay",
		Signature: vision.PixelSignature{
			Name:     "test_overlay",
			Strategy: vision.MatchAll,
			Rules:    []vision.PixelRule{vision.NewPixelRule(0.5, 0.5, vision.ColorFromRGB(9, 9, 9))},
		},
		DismissX: 0.9, DismissY: 0.1,
	}
	fake := device.NewFake(100, 100,
		fakeFrame(color.RGBA{9, 9, 9, 255}),
		fakeFrame(color.RGBA{255, 0, 0, 255}),
	)
	opts := WaitOptions{Timeout: time.Second, Interval: time.Millisecond, HandleOverlays: true, Overlays: []Overlay{overlay}}

	_, err := WaitForPage(context.Background(), fake, isColor(color.RGBA{255, 0, 0, 255}), opts)
	require.NoError(t, err)
	require.Len(t, fake.Clicks, 1)
	assert.InDelta(t, 0.9, fake.Clicks[0].X, 0.001)
}
