package vision

import "image"

// GetPixel samples a single pixel from screen at a relative coordinate.
func GetPixel(screen image.Image, x, y float64) Color {
	b := screen.Bounds()
	px := b.Min.X + int(x*float64(b.Dx()))
	py := b.Min.Y + int(y*float64(b.Dy()))
	return ColorFromImage(screen.At(px, py))
}

// CheckPixel reports whether the pixel at rule.Point matches rule.Expected
// within rule.Tolerance.
func CheckPixel(screen image.Image, rule PixelRule) bool {
	got := GetPixel(screen, rule.Point.X, rule.Point.Y)
	return got.Near(rule.Expected, rule.Tolerance)
}

// PixelDetail records the outcome of one rule within a signature check, for
// callers that want to render a debug overlay or log why a match failed.
type PixelDetail struct {
	Rule    PixelRule
	Sampled Color
	Matched bool
}

// PixelMatchResult is the outcome of checking a PixelSignature against a
// screenshot. MatchedCount and TotalCount are always populated, even when
// Details is nil under the short-circuiting withDetails=false path, so a
// caller can always read how many rules matched without paying for the
// full per-rule detail slice.
type PixelMatchResult struct {
	Signature    PixelSignature
	Matched      bool
	Details      []PixelDetail
	MatchedCount int
	TotalCount   int
}

// Ratio returns the fraction of rules that matched, regardless of strategy.
func (r PixelMatchResult) Ratio() float64 {
	if r.TotalCount == 0 {
		return 0
	}
	return float64(r.MatchedCount) / float64(r.TotalCount)
}

// CheckSignature evaluates a PixelSignature against a screenshot.
//
// Strategy semantics mirror a short-circuiting boolean expression:
//   - MatchAll: returns false as soon as any rule fails (unless withDetails,
//     in which case every rule is still evaluated so Details is complete).
//   - MatchAny: returns true as soon as any rule passes (same caveat).
//   - MatchCount: every rule is always evaluated; the verdict is
//     (matches >= Threshold).
func CheckSignature(screen image.Image, sig PixelSignature, withDetails bool) PixelMatchResult {
	result := PixelMatchResult{Signature: sig, TotalCount: len(sig.Rules)}
	if !withDetails {
		result.Details = nil
	} else {
		result.Details = make([]PixelDetail, 0, len(sig.Rules))
	}

	switch sig.Strategy {
	case MatchAll:
		matched := true
		count := 0
		for _, rule := range sig.Rules {
			ok := CheckPixel(screen, rule)
			if ok {
				count++
			}
			if withDetails {
				result.Details = append(result.Details, detailFor(screen, rule, ok))
			}
			if !ok {
				matched = false
				if !withDetails {
					result.Matched = false
					result.MatchedCount = count
					return result
				}
			}
		}
		result.Matched = matched
		result.MatchedCount = count
	case MatchAny:
		matched := false
		count := 0
		for _, rule := range sig.Rules {
			ok := CheckPixel(screen, rule)
			if ok {
				count++
			}
			if withDetails {
				result.Details = append(result.Details, detailFor(screen, rule, ok))
			}
			if ok {
				matched = true
				if !withDetails {
					result.Matched = true
					result.MatchedCount = count
					return result
				}
			}
		}
		result.Matched = matched
		result.MatchedCount = count
	case MatchCount:
		count := 0
		for _, rule := range sig.Rules {
			ok := CheckPixel(screen, rule)
			if withDetails {
				result.Details = append(result.Details, detailFor(screen, rule, ok))
			}
			if ok {
				count++
			}
		}
		result.Matched = count >= sig.Threshold
		result.MatchedCount = count
	}
	return result
}

func detailFor(screen image.Image, rule PixelRule, matched bool) PixelDetail {
	return PixelDetail{Rule: rule, Sampled: GetPixel(screen, rule.Point.X, rule.Point.Y), Matched: matched}
}

// Identify returns the first signature in order that matches, or false.
func Identify(screen image.Image, sigs []PixelSignature) (PixelSignature, bool) {
	for _, s := range sigs {
		if CheckSignature(screen, s, false).Matched {
			return s, true
		}
	}
	return PixelSignature{}, false
}

// IdentifyAll evaluates every signature (no short-circuit across
// signatures) and returns all that matched, in order.
func IdentifyAll(screen image.Image, sigs []PixelSignature) []PixelSignature {
	var matched []PixelSignature
	for _, s := range sigs {
		if CheckSignature(screen, s, false).Matched {
			matched = append(matched, s)
		}
	}
	return matched
}

// ClassifyColor returns the name of the nearest color in colorMap within
// tolerance, or "" if none is close enough.
func ClassifyColor(screen image.Image, x, y float64, colorMap map[string]Color, tolerance float64) string {
	sampled := GetPixel(screen, x, y)
	best := ""
	bestDist := tolerance
	for name, c := range colorMap {
		d := sampled.Distance(c)
		if d <= bestDist {
			bestDist = d
			best = name
		}
	}
	return best
}
