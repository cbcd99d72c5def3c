// Package vision implements the pixel- and template-matching primitives
// used to recognize on-screen game state from emulator screenshots.
//
// Every coordinate that crosses a component boundary in this package is
// relative: an (x, y) pair in [0, 1]x[0, 1], resolution-independent. Pixel
// and pixel-region lookups convert to absolute pixel coordinates against a
// specific screenshot only at the point of use.
package vision

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// RelCoord is a resolution-independent point, each axis in [0, 1].
type RelCoord struct {
	X, Y float64
}

// Color is an RGB color sampled from, or compared against, a screenshot.
type Color struct {
	R, G, B uint8
}

// ColorFromRGB builds a Color from individual channel values.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromImage converts a standard library color into a Color, discarding
// alpha (screenshots are always opaque).
func ColorFromImage(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	return Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// Distance returns the Euclidean distance between two colors in RGB space.
func (c Color) Distance(other Color) float64 {
	dr := float64(c.R) - float64(other.R)
	dg := float64(c.G) - float64(other.G)
	db := float64(c.B) - float64(other.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Near reports whether two colors are within tolerance of one another.
func (c Color) Near(other Color, tolerance float64) bool {
	return c.Distance(other) <= tolerance
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// PixelRule pins one relative coordinate to an expected color within a
// tolerance.
type PixelRule struct {
	Point     RelCoord
	Expected  Color
	Tolerance float64
}

// NewPixelRule constructs a PixelRule with the default tolerance (30) used
// throughout the recognition tables when none is specified.
func NewPixelRule(x, y float64, expected Color) PixelRule {
	return PixelRule{Point: RelCoord{X: x, Y: y}, Expected: expected, Tolerance: 30}
}

// MatchStrategy controls how a PixelSignature's rules combine into one
// verdict.
type MatchStrategy int

const (
	// MatchAll requires every rule to match (short-circuits on first miss).
	MatchAll MatchStrategy = iota
	// MatchAny requires at least one rule to match (short-circuits on first hit).
	MatchAny
	// MatchCount requires at least Threshold rules to match; no short-circuit.
	MatchCount
)

func (s MatchStrategy) String() string {
	switch s {
	case MatchAll:
		return "all"
	case MatchAny:
		return "any"
	case MatchCount:
		return "count"
	default:
		return "unknown"
	}
}

// PixelSignature is a named, reusable set of pixel rules that together
// identify a screen state.
type PixelSignature struct {
	Name      string
	Rules     []PixelRule
	Strategy  MatchStrategy
	Threshold int // only meaningful when Strategy == MatchCount
}

func (s PixelSignature) Len() int { return len(s.Rules) }

// ROI is a resolution-independent rectangle: 0 <= X1 < X2 <= 1 and
// 0 <= Y1 < Y2 <= 1.
type ROI struct {
	X1, Y1, X2, Y2 float64
}

// NewROI validates and constructs an ROI.
func NewROI(x1, y1, x2, y2 float64) (ROI, error) {
	r := ROI{X1: x1, Y1: y1, X2: x2, Y2: y2}
	return r, r.Validate()
}

// Validate reports whether the ROI's bounds are well-formed.
func (r ROI) Validate() error {
	if !(0 <= r.X1 && r.X1 < r.X2 && r.X2 <= 1) {
		return fmt.Errorf("vision: invalid ROI x bounds [%.4f, %.4f]", r.X1, r.X2)
	}
	if !(0 <= r.Y1 && r.Y1 < r.Y2 && r.Y2 <= 1) {
		return fmt.Errorf("vision: invalid ROI y bounds [%.4f, %.4f]", r.Y1, r.Y2)
	}
	return nil
}

// FullScreen returns the ROI spanning the entire screenshot.
func FullScreen() ROI { return ROI{X1: 0, Y1: 0, X2: 1, Y2: 1} }

// Width returns the ROI's relative width.
func (r ROI) Width() float64 { return r.X2 - r.X1 }

// Height returns the ROI's relative height.
func (r ROI) Height() float64 { return r.Y2 - r.Y1 }

// Center returns the ROI's relative center point.
func (r ROI) Center() RelCoord {
	return RelCoord{X: (r.X1 + r.X2) / 2, Y: (r.Y1 + r.Y2) / 2}
}

// Contains reports whether a relative point falls inside the ROI.
func (r ROI) Contains(x, y float64) bool {
	return x >= r.X1 && x <= r.X2 && y >= r.Y1 && y <= r.Y2
}

// ToAbsolute converts the ROI to pixel bounds against an image of the given
// dimensions.
func (r ROI) ToAbsolute(width, height int) (x1, y1, x2, y2 int) {
	x1 = int(r.X1 * float64(width))
	y1 = int(r.Y1 * float64(height))
	x2 = int(r.X2 * float64(width))
	y2 = int(r.Y2 * float64(height))
	return
}

// Crop returns the sub-image of screen described by the ROI. The returned
// image shares no storage with screen: callers may freely mutate it (used
// by the debug overlay and by template scaling).
func (r ROI) Crop(screen image.Image) *image.RGBA {
	b := screen.Bounds()
	x1, y1, x2, y2 := r.ToAbsolute(b.Dx(), b.Dy())
	x1, y1 = x1+b.Min.X, y1+b.Min.Y
	x2, y2 = x2+b.Min.X, y2+b.Min.Y
	out := image.NewRGBA(image.Rect(0, 0, x2-x1, y2-y1))
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			out.Set(x-x1, y-y1, screen.At(x, y))
		}
	}
	return out
}

// Template is a reference image used for normalized cross-correlation
// matching, tagged with the emulator resolution it was captured at.
type Template struct {
	Name             string
	Image            image.Image
	CaptureWidth     int
	CaptureHeight    int
	DefaultROI       ROI
	DefaultThreshold float64
}
