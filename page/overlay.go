package page

import (
	"context"
	"image"

	"github.com/autowsgr/helmsman/device"
	"github.com/autowsgr/helmsman/log"
	"github.com/autowsgr/helmsman/vision"
)

// Overlay is a known modal that can appear on top of any page and must be
// dismissed before navigation can proceed: a signature to detect it plus
// the relative coordinate of its dismiss control.
type Overlay struct {
	Name       string
	Signature  vision.PixelSignature
	DismissX   float64
	DismissY   float64
}

// Present reports whether screen currently shows this overlay.
func (o Overlay) Present(screen image.Image) bool {
	return vision.CheckSignature(screen, o.Signature, false).Matched
}

// defaultOverlays is the deterministic dismiss-priority order Design Notes
// §9 calls for when more than one overlay could in principle be showing at
// once: daily sign-in reminder first, then the news/announcement popup,
// then the network-retry dialog. This order is fixed, not configurable,
// so overlay handling stays deterministic across runs.
var defaultOverlays = []Overlay{
	{
		Name: "daily_signin",
		Signature: vision.PixelSignature{
			Name:     "daily_signin",
			Strategy: vision.MatchAll,
			Rules: []vision.PixelRule{
				vision.NewPixelRule(0.5, 0.15, vision.ColorFromRGB(255, 221, 97)),
				vision.NewPixelRule(0.5, 0.85, vision.ColorFromRGB(37, 146, 249)),
			},
		},
		DismissX: 0.927, DismissY: 0.086,
	},
	{
		Name: "news_popup",
		Signature: vision.PixelSignature{
			Name:     "news_popup",
			Strategy: vision.MatchAll,
			Rules: []vision.PixelRule{
				vision.NewPixelRule(0.5, 0.1, vision.ColorFromRGB(253, 251, 255)),
				vision.NewPixelRule(0.5, 0.9, vision.ColorFromRGB(225, 225, 225)),
			},
		},
		DismissX: 0.927, DismissY: 0.086,
	},
	{
		Name: "network_retry",
		Signature: vision.PixelSignature{
			Name:     "network_retry",
			Strategy: vision.MatchAll,
			Rules: []vision.PixelRule{
				vision.NewPixelRule(0.5, 0.45, vision.ColorFromRGB(29, 124, 214)),
				vision.NewPixelRule(0.5, 0.55, vision.ColorFromRGB(156, 38, 38)),
			},
		},
		DismissX: 0.5, DismissY: 0.6,
	},
}

// DefaultOverlays returns the built-in overlay set in dismiss-priority
// order (signin > news > retry). Callers that need game-specific overlay
// assets supply their own slice to WaitForPage instead.
func DefaultOverlays() []Overlay {
	return append([]Overlay(nil), defaultOverlays...)
}

// dismissFirstOverlay checks overlays in order and clicks the first one
// present, reporting whether it dismissed anything.
func dismissFirstOverlay(ctx context.Context, d device.Controller, screen image.Image, overlays []Overlay) bool {
	for _, o := range overlays {
		if o.Present(screen) {
			log.Info("page: dismissing overlay", log.F("overlay", o.Name))
			_ = d.Click(ctx, o.DismissX, o.DismissY)
			return true
		}
	}
	return false
}
