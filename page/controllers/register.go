package controllers

import "github.com/autowsgr/helmsman/page"

// RegisterPixelPages registers the pages identifiable from pixel signatures
// alone (no template assets required) into reg. Pages whose identification
// depends on template matching against game-specific ship/tab art — Build,
// Intensify, Map, Mission, Friend, BattlePreparation — are outside this
// module's non-goal boundary (see vision.Template asset loading) and must be
// registered by the caller once those assets are supplied, the same seam
// combat.GameActions uses for template-dependent recognition.
func RegisterPixelPages(reg *page.Registry) {
	reg.Register(page.Main, Main{}.IsCurrentPage)
	reg.Register(page.Sidebar, Sidebar{}.IsCurrentPage)
	reg.Register(page.Backyard, Backyard{}.IsCurrentPage)
	reg.Register(page.Bath, Bath{}.IsCurrentPage)
	reg.Register(page.Canteen, Canteen{}.IsCurrentPage)
}
