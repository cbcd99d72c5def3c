package vision

import (
	"fmt"
	"image/color"
	"strings"
)

// svgBuilder provides a fluent interface for building small annotation SVGs.
// It is intentionally a minimal subset of a general SVG builder: helmsman only
// ever draws ROI boxes, probe markers, and short text labels onto a debug
// overlay, never full vector scenes.
type svgBuilder struct {
	width, height int
	elements      []string
}

func newSVGBuilder(width, height int) *svgBuilder {
	return &svgBuilder{width: width, height: height, elements: make([]string, 0, 64)}
}

func (b *svgBuilder) RectOutline(x, y, w, h float64, col color.RGBA, strokeWidth float64) *svgBuilder {
	b.elements = append(b.elements, fmt.Sprintf(
		`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="rgb(%d,%d,%d)" stroke-width="%.1f"/>`,
		x, y, w, h, col.R, col.G, col.B, strokeWidth))
	return b
}

func (b *svgBuilder) CircleOutline(cx, cy, r float64, col color.RGBA, strokeWidth float64) *svgBuilder {
	b.elements = append(b.elements, fmt.Sprintf(
		`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="rgb(%d,%d,%d)" stroke-width="%.1f"/>`,
		cx, cy, r, col.R, col.G, col.B, strokeWidth))
	return b
}

func (b *svgBuilder) CrossMarker(cx, cy, size float64, col color.RGBA) *svgBuilder {
	b.elements = append(b.elements, fmt.Sprintf(
		`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="rgb(%d,%d,%d)" stroke-width="1"/>`,
		cx-size, cy, cx+size, cy, col.R, col.G, col.B))
	b.elements = append(b.elements, fmt.Sprintf(
		`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="rgb(%d,%d,%d)" stroke-width="1"/>`,
		cx, cy-size, cx, cy+size, col.R, col.G, col.B))
	return b
}

func (b *svgBuilder) Text(x, y float64, text string, col color.RGBA, fontSize int) *svgBuilder {
	b.elements = append(b.elements, fmt.Sprintf(
		`<text x="%.1f" y="%.1f" fill="rgb(%d,%d,%d)" font-size="%d" font-family="monospace">%s</text>`,
		x, y, col.R, col.G, col.B, fontSize, escapeSVGText(text)))
	return b
}

func escapeSVGText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// String renders the SVG document. The background is fully transparent so
// that rasterizing it and compositing over a screenshot never obscures it.
func (b *svgBuilder) String() string {
	var svg strings.Builder
	svg.Grow(200 + len(b.elements)*80)
	fmt.Fprintf(&svg, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, b.width, b.height, b.width, b.height)
	for _, elem := range b.elements {
		svg.WriteString(elem)
		svg.WriteString("\n")
	}
	svg.WriteString("</svg>")
	return svg.String()
}
