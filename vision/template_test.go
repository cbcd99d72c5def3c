package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stampSquare draws a high-contrast w x w square at (x, y) onto a uniform
// background, giving MatchTemplate something distinctive to locate.
func stampSquare(bg color.RGBA, fg color.RGBA, width, height, x, y, size int) *image.RGBA {
	img := solidScreen(width, height, bg)
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			img.Set(x+dx, y+dy, fg)
		}
	}
	return img
}

func TestMatchTemplateFindsExactStamp(t *testing.T) {
	bg := color.RGBA{20, 20, 20, 255}
	fg := color.RGBA{250, 250, 250, 255}
	screen := stampSquare(bg, fg, 200, 200, 80, 60, 16)

	tmpl := Template{
		Name:          "marker",
		Image:         stampSquare(bg, fg, 16, 16, 0, 0, 16),
		CaptureWidth:  200,
		CaptureHeight: 200,
	}

	result := MatchTemplate(screen, tmpl, FullScreen(), 0.8)
	require.True(t, result.Matched)
	assert.InDelta(t, (80.0+8)/200, result.CenterX, 0.02)
	assert.InDelta(t, (60.0+8)/200, result.CenterY, 0.02)
}

func TestMatchTemplateNoMatchBelowConfidence(t *testing.T) {
	bg := color.RGBA{20, 20, 20, 255}
	screen := solidScreen(100, 100, bg)
	tmpl := Template{
		Name:          "marker",
		Image:         stampSquare(bg, color.RGBA{250, 250, 250, 255}, 16, 16, 0, 0, 16),
		CaptureWidth:  100,
		CaptureHeight: 100,
	}
	result := MatchTemplate(screen, tmpl, FullScreen(), 0.9)
	assert.False(t, result.Matched)
}

func TestMatchTemplateLargerThanROIIsNotAnError(t *testing.T) {
	screen := solidScreen(10, 10, color.RGBA{0, 0, 0, 255})
	tmpl := Template{
		Image:         solidScreen(50, 50, color.RGBA{255, 255, 255, 255}),
		CaptureWidth:  10,
		CaptureHeight: 10,
	}
	result := MatchTemplate(screen, tmpl, FullScreen(), 0.5)
	assert.False(t, result.Matched)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestFindAllOccurrencesSuppressesOverlapping(t *testing.T) {
	bg := color.RGBA{20, 20, 20, 255}
	fg := color.RGBA{250, 250, 250, 255}
	screen := solidScreen(300, 100, bg)
	for _, pt := range [][2]int{{10, 40}, {150, 40}} {
		for dy := 0; dy < 10; dy++ {
			for dx := 0; dx < 10; dx++ {
				screen.Set(pt[0]+dx, pt[1]+dy, fg)
			}
		}
	}

	tmpl := Template{Image: stampSquare(bg, fg, 10, 10, 0, 0, 10), CaptureWidth: 300, CaptureHeight: 100}
	occurrences := FindAllOccurrences(screen, tmpl, FullScreen(), 0.8, 20, 0.1)
	assert.Len(t, occurrences, 2)
}

func TestFindAnyAndFindBest(t *testing.T) {
	bg := color.RGBA{20, 20, 20, 255}
	fg := color.RGBA{250, 250, 250, 255}
	screen := stampSquare(bg, fg, 100, 100, 40, 40, 10)

	wrong := Template{Name: "wrong", Image: solidScreen(10, 10, color.RGBA{0, 255, 0, 255}), CaptureWidth: 100, CaptureHeight: 100}
	right := Template{Name: "right", Image: stampSquare(bg, fg, 10, 10, 0, 0, 10), CaptureWidth: 100, CaptureHeight: 100}

	result, ok := FindAny(screen, []Template{wrong, right}, FullScreen(), 0.8)
	require.True(t, ok)
	assert.Equal(t, "right", result.Template.Name)

	best, ok := FindBest(screen, []Template{wrong, right}, FullScreen(), 0.5)
	require.True(t, ok)
	assert.Equal(t, "right", best.Template.Name)
}
