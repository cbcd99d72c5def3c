package page

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRegistryFirstMatchWins(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Main, func(image.Image) bool { return true })
	reg.Register(Map, func(image.Image) bool { return true })

	name, ok := reg.GetCurrentPage(solidImage(color.RGBA{1, 2, 3, 255}))
	require.True(t, ok)
	assert.Equal(t, Main, name)
}

func TestRegistryNoMatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Main, func(image.Image) bool { return false })
	_, ok := reg.GetCurrentPage(solidImage(color.RGBA{1, 2, 3, 255}))
	assert.False(t, ok)
}

func TestRegistryPanicsOnRegisterAfterSeal(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Main, func(image.Image) bool { return false })
	reg.GetCurrentPage(solidImage(color.RGBA{0, 0, 0, 255}))

	assert.Panics(t, func() {
		reg.Register(Map, func(image.Image) bool { return false })
	})
}

func TestRegistrySwallowsCheckerPanic(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Main, func(image.Image) bool { panic("boom") })
	reg.Register(Map, func(image.Image) bool { return true })

	name, ok := reg.GetCurrentPage(solidImage(color.RGBA{0, 0, 0, 255}))
	require.True(t, ok, "a panicking checker must not prevent later checkers from running")
	assert.Equal(t, Map, name)
}

func TestRegistryReRegisterWarnsButOverwrites(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Main, func(image.Image) bool { return false })
	reg.Register(Main, func(image.Image) bool { return true })

	name, ok := reg.GetCurrentPage(solidImage(color.RGBA{0, 0, 0, 255}))
	require.True(t, ok)
	assert.Equal(t, Main, name)
	assert.Equal(t, []Name{Main}, reg.Names())
}
