// Package ocr defines the text-recognition contract the rest of helmsman
// consumes. The OCR engine's internal implementation (model weights,
// inference runtime) is out of scope for this module: callers plug in
// whichever engine they have available by implementing Engine.
package ocr

import "context"

// Result is one recognized text span.
type Result struct {
	Text       string
	Confidence float64
}

// Allowlist restricts recognition to a known character set, used for
// reading compact fixed-format fields (ship HP digits, node letters) more
// reliably than unconstrained recognition.
type Allowlist string

// Contains reports whether every rune in s is in the allowlist. An empty
// allowlist places no restriction.
func (a Allowlist) Contains(s string) bool {
	if a == "" {
		return true
	}
	for _, r := range s {
		found := false
		for _, allowed := range string(a) {
			if r == allowed {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Engine is the consumed OCR contract. SubImage is an opaque handle to the
// image to recognize; this package intentionally doesn't import the
// concrete image type its caller uses, so different engines can consume
// different representations (e.g. already-encoded PNG bytes vs. an
// image.Image crop) without helmsman's other packages depending on it.
type Engine interface {
	// Recognize returns every text span found in image, most confident
	// first.
	Recognize(ctx context.Context, image any, allowlist Allowlist) ([]Result, error)
	// RecognizeSingle returns the single best-guess reading of image,
	// assuming it contains exactly one text run (a ship HP readout, a
	// node letter).
	RecognizeSingle(ctx context.Context, image any, allowlist Allowlist) (Result, error)
}

// Fake is a scripted Engine for tests: it returns queued results in order
// regardless of the image passed in.
type Fake struct {
	Queue []Result
	idx   int
}

func (f *Fake) Recognize(ctx context.Context, image any, allowlist Allowlist) ([]Result, error) {
	r, err := f.RecognizeSingle(ctx, image, allowlist)
	if err != nil {
		return nil, err
	}
	return []Result{r}, nil
}

func (f *Fake) RecognizeSingle(ctx context.Context, image any, allowlist Allowlist) (Result, error) {
	if f.idx >= len(f.Queue) {
		return Result{}, nil
	}
	r := f.Queue[f.idx]
	f.idx++
	return r, nil
}

var _ Engine = (*Fake)(nil)
