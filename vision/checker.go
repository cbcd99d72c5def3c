package vision

import "image"

// TemplateRule pins an expected Template occurrence to an ROI with a
// minimum confidence.
type TemplateRule struct {
	Template   Template
	ROI        ROI
	Confidence float64
}

// TemplateSignature combines several TemplateRules the same way
// PixelSignature combines pixel rules.
type TemplateSignature struct {
	Name      string
	Rules     []TemplateRule
	Strategy  MatchStrategy
	Threshold int
}

// CheckTemplateSignature evaluates a TemplateSignature the same way
// CheckSignature evaluates a PixelSignature: MatchAll short-circuits on the
// first miss, MatchAny short-circuits on the first hit, MatchCount always
// evaluates every rule.
func CheckTemplateSignature(screen image.Image, sig TemplateSignature) bool {
	switch sig.Strategy {
	case MatchAll:
		for _, rule := range sig.Rules {
			if !MatchTemplate(screen, rule.Template, rule.ROI, rule.Confidence).Matched {
				return false
			}
		}
		return true
	case MatchAny:
		for _, rule := range sig.Rules {
			if MatchTemplate(screen, rule.Template, rule.ROI, rule.Confidence).Matched {
				return true
			}
		}
		return false
	case MatchCount:
		count := 0
		for _, rule := range sig.Rules {
			if MatchTemplate(screen, rule.Template, rule.ROI, rule.Confidence).Matched {
				count++
			}
		}
		return count >= sig.Threshold
	default:
		return false
	}
}

// FindTemplate is a convenience wrapper returning (MatchResult, found).
func FindTemplate(screen image.Image, tmpl Template, roi ROI, confidence float64) (MatchResult, bool) {
	r := MatchTemplate(screen, tmpl, roi, confidence)
	return r, r.Matched
}

// FindAny returns the first template (in order) that matches within roi.
func FindAny(screen image.Image, templates []Template, roi ROI, confidence float64) (MatchResult, bool) {
	for _, t := range templates {
		if r := MatchTemplate(screen, t, roi, confidence); r.Matched {
			return r, true
		}
	}
	return MatchResult{}, false
}

// FindBest returns the highest-confidence match across templates,
// regardless of the confidence threshold passed to each individual check;
// found is true only if that best match clears confidence.
func FindBest(screen image.Image, templates []Template, roi ROI, confidence float64) (MatchResult, bool) {
	var best MatchResult
	have := false
	for _, t := range templates {
		r := MatchTemplate(screen, t, roi, 0)
		if !have || r.Confidence > best.Confidence {
			best = r
			have = true
		}
	}
	if !have || best.Confidence < confidence {
		return MatchResult{}, false
	}
	best.Matched = true
	return best, true
}

// TemplateExists is FindTemplate without the match location, for callers
// that only need a boolean.
func TemplateExists(screen image.Image, tmpl Template, roi ROI, confidence float64) bool {
	return MatchTemplate(screen, tmpl, roi, confidence).Matched
}

// IdentifyTemplate returns the name of the first matching template-keyed
// signature, mirroring Identify for pixel signatures.
func IdentifyTemplate(screen image.Image, sigs map[string]TemplateSignature, order []string) (string, bool) {
	for _, name := range order {
		if sig, ok := sigs[name]; ok && CheckTemplateSignature(screen, sig) {
			return name, true
		}
	}
	return "", false
}
