package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
)

// RectAnnotation draws an outlined box over a region of interest, labeled
// with the signature or template name that matched (or failed to match)
// there.
type RectAnnotation struct {
	ROI   ROI
	Label string
	Color color.RGBA
}

// PointAnnotation marks a single probed pixel, such as a PixelSignature rule
// or a node tracker fix.
type PointAnnotation struct {
	X, Y  float64 // relative [0,1] coordinates
	Label string
	Color color.RGBA
}

var (
	colorMatched   = color.RGBA{32, 220, 90, 255}
	colorUnmatched = color.RGBA{220, 60, 60, 255}
)

// MatchedColor and UnmatchedColor are the conventional colors callers should
// use for RectAnnotation/PointAnnotation when rendering a pass/fail overlay.
func MatchedColor() color.RGBA   { return colorMatched }
func UnmatchedColor() color.RGBA { return colorUnmatched }

// Annotate draws ROI boxes and point markers onto a copy of screen and
// returns the resulting image. It never mutates screen.
//
// Rendering goes through an SVG intermediate rasterized with
// tdewolff/canvas, the same pipeline the map renderer this package was
// adapted from uses for anti-aliased output; the result is composited over
// the source screenshot with image/draw.
func Annotate(screen image.Image, rects []RectAnnotation, points []PointAnnotation) (*image.RGBA, error) {
	bounds := screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	svg := newSVGBuilder(w, h)
	for _, r := range rects {
		x1, y1, x2, y2 := r.ROI.ToAbsolute(w, h)
		svg.RectOutline(float64(x1), float64(y1), float64(x2-x1), float64(y2-y1), r.Color, 2)
		if r.Label != "" {
			svg.Text(float64(x1)+2, float64(y1)-4, r.Label, r.Color, 12)
		}
	}
	for _, p := range points {
		cx, cy := p.X*float64(w), p.Y*float64(h)
		svg.CrossMarker(cx, cy, 5, p.Color)
		if p.Label != "" {
			svg.Text(cx+6, cy-6, p.Label, p.Color, 11)
		}
	}

	overlay, err := rasterizeSVG(svg.String(), w, h)
	if err != nil {
		return nil, fmt.Errorf("rasterize overlay: %w", err)
	}

	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, screen, bounds.Min, draw.Src)
	draw.Draw(out, bounds, overlay, image.Point{}, draw.Over)
	return out, nil
}

// rasterizeSVG parses and rasterizes an SVG document to exactly w x h pixels.
func rasterizeSVG(svgDoc string, w, h int) (*image.RGBA, error) {
	c, err := canvas.ParseSVG(strings.NewReader(svgDoc))
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}

	canvasW := c.W
	if canvasW <= 0 {
		canvasW = float64(w)
	}
	dpmm := float64(w) / canvasW

	img := rasterizer.Draw(c, canvas.DPMM(dpmm), canvas.DefaultColorSpace)
	bounds := img.Bounds()
	if bounds.Dx() == w && bounds.Dy() == h {
		rgba := image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
		return rgba, nil
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scaleX := float64(bounds.Dx()) / float64(w)
	scaleY := float64(bounds.Dy()) / float64(h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			srcX := int(float64(x) * scaleX)
			srcY := int(float64(y) * scaleY)
			rgba.Set(x, y, img.At(srcX, srcY))
		}
	}
	return rgba, nil
}

// WritePNG encodes an annotated frame as PNG, the format recognition
// failures are persisted in for later inspection.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
