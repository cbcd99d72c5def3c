package vision

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// MatchResult is the outcome of matching one Template against a screenshot.
type MatchResult struct {
	Template   Template
	Confidence float64
	CenterX    float64 // relative to the full screenshot
	CenterY    float64
	Matched    bool
}

// A template larger than the ROI being searched (after resolution
// normalization) is not an error: MatchTemplate returns the zero-value
// outcome, which reads as Matched == false just like "no match".

// MatchTemplate searches roi of screen for tmpl using normalized
// cross-correlation over grayscale intensity, returning the best location
// found. If screen's resolution differs from tmpl.CaptureWidth/Height, the
// cropped region is resampled to the template's reference resolution before
// correlation so that matching is resolution-independent.
func MatchTemplate(screen image.Image, tmpl Template, roi ROI, confidence float64) MatchResult {
	result := MatchResult{Template: tmpl}

	cropped := roi.Crop(screen)
	search := cropped
	if tmpl.CaptureWidth > 0 && tmpl.CaptureHeight > 0 {
		b := screen.Bounds()
		if b.Dx() != tmpl.CaptureWidth || b.Dy() != tmpl.CaptureHeight {
			scaleW := int(float64(cropped.Bounds().Dx()) * float64(tmpl.CaptureWidth) / float64(b.Dx()))
			scaleH := int(float64(cropped.Bounds().Dy()) * float64(tmpl.CaptureHeight) / float64(b.Dy()))
			if scaleW > 0 && scaleH > 0 {
				resampled := image.NewRGBA(image.Rect(0, 0, scaleW, scaleH))
				draw.CatmullRom.Scale(resampled, resampled.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)
				search = resampled
			}
		}
	}

	tb := tmpl.Image.Bounds()
	sb := search.Bounds()
	if tb.Dx() > sb.Dx() || tb.Dy() > sb.Dy() {
		// Template larger than the search region: not an error, just no match.
		return result
	}

	templGray := toGray(tmpl.Image)
	searchGray := toGray(search)

	bestScore := -2.0
	bestX, bestY := 0, 0
	for y := 0; y <= sb.Dy()-tb.Dy(); y++ {
		for x := 0; x <= sb.Dx()-tb.Dx(); x++ {
			score := ncc(searchGray, sb.Dx(), x, y, templGray, tb.Dx(), tb.Dy())
			if score > bestScore {
				bestScore = score
				bestX, bestY = x, y
			}
		}
	}

	result.Confidence = bestScore
	if bestScore < confidence {
		return result
	}

	// Map the best match's center back to the search image, then to the
	// cropped ROI's scale, then to whole-screen relative coordinates.
	cx := float64(bestX) + float64(tb.Dx())/2
	cy := float64(bestY) + float64(tb.Dy())/2
	cx = cx / float64(sb.Dx()) * float64(cropped.Bounds().Dx())
	cy = cy / float64(sb.Dy()) * float64(cropped.Bounds().Dy())

	b := screen.Bounds()
	x1, y1, _, _ := roi.ToAbsolute(b.Dx(), b.Dy())
	result.CenterX = (float64(x1) + cx) / float64(b.Dx())
	result.CenterY = (float64(y1) + cy) / float64(b.Dy())
	result.Matched = true
	return result
}

// Occurrence is one detected instance of a template within a search region.
type Occurrence struct {
	CenterX, CenterY float64
	Confidence       float64
}

// FindAllOccurrences locates every non-overlapping match of tmpl in roi at
// or above confidence, greedily suppressing matches within minDistance
// (relative units) of an already-accepted, higher-scoring match.
func FindAllOccurrences(screen image.Image, tmpl Template, roi ROI, confidence float64, maxCount int, minDistance float64) []Occurrence {
	cropped := roi.Crop(screen)
	templGray := toGray(tmpl.Image)
	searchGray := toGray(cropped)

	tb := tmpl.Image.Bounds()
	sb := cropped.Bounds()
	if tb.Dx() > sb.Dx() || tb.Dy() > sb.Dy() {
		return nil
	}

	type cand struct {
		x, y  int
		score float64
	}
	var candidates []cand
	for y := 0; y <= sb.Dy()-tb.Dy(); y++ {
		for x := 0; x <= sb.Dx()-tb.Dx(); x++ {
			score := ncc(searchGray, sb.Dx(), x, y, templGray, tb.Dx(), tb.Dy())
			if score >= confidence {
				candidates = append(candidates, cand{x, y, score})
			}
		}
	}
	// Sort descending by score (simple insertion sort is fine: candidate
	// counts in practice are small regions of a screenshot).
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].score > candidates[j-1].score; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}

	b := screen.Bounds()
	x1, y1, _, _ := roi.ToAbsolute(b.Dx(), b.Dy())

	var accepted []Occurrence
	var acceptedPixels [][2]int
	for _, c := range candidates {
		if len(accepted) >= maxCount {
			break
		}
		ux := c.x + tb.Dx()/2
		uy := c.y + tb.Dy()/2
		suppressed := false
		minDistPx := minDistance * float64(b.Dx())
		for _, p := range acceptedPixels {
			if math.Abs(float64(ux-p[0])) < minDistPx && math.Abs(float64(uy-p[1])) < minDistPx {
				suppressed = true
				break
			}
		}
		if suppressed {
			continue
		}
		acceptedPixels = append(acceptedPixels, [2]int{ux, uy})
		accepted = append(accepted, Occurrence{
			CenterX:    float64(x1+ux) / float64(b.Dx()),
			CenterY:    float64(y1+uy) / float64(b.Dy()),
			Confidence: c.score,
		})
	}
	return accepted
}

// toGray flattens an image to a row-major slice of normalized [0,1]
// luminance samples.
func toGray(img image.Image) []float64 {
	b := img.Bounds()
	out := make([]float64, b.Dx()*b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			lum := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)
			out[i] = lum / 65535
			i++
		}
	}
	return out
}

// ncc computes normalized cross-correlation between a tw x th template and
// the same-sized window of search starting at (ox, oy), where search is
// sw wide. Returns a value in [-1, 1]; 1 is a perfect match.
func ncc(search []float64, sw, ox, oy int, templ []float64, tw, th int) float64 {
	var sumS, sumT, sumST, sumSS, sumTT float64
	n := float64(tw * th)
	for ty := 0; ty < th; ty++ {
		srow := (oy + ty) * sw
		trow := ty * tw
		for tx := 0; tx < tw; tx++ {
			sv := search[srow+ox+tx]
			tv := templ[trow+tx]
			sumS += sv
			sumT += tv
			sumST += sv * tv
			sumSS += sv * sv
			sumTT += tv * tv
		}
	}
	meanS := sumS / n
	meanT := sumT / n
	numerator := sumST - n*meanS*meanT
	denomS := sumSS - n*meanS*meanS
	denomT := sumTT - n*meanT*meanT
	if denomS <= 1e-9 || denomT <= 1e-9 {
		if denomS <= 1e-9 && denomT <= 1e-9 && math.Abs(meanS-meanT) <= 1e-6 {
			return 1 // both regions flat and equal
		}
		return 0
	}
	return numerator / math.Sqrt(denomS*denomT)
}
