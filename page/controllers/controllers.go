// Package controllers implements the per-page UI controllers: stateless
// wrappers around a device.Controller that expose page identification,
// state-read probes, and click-driven actions, grounded on
// original_source's autowsgr/ui/*.py modules.
package controllers

import (
	"context"
	"image"
	"time"

	"github.com/autowsgr/helmsman/combat"
	"github.com/autowsgr/helmsman/device"
	"github.com/autowsgr/helmsman/page"
	"github.com/autowsgr/helmsman/vision"
)

// backClick is the relative coordinate of the top-left back arrow shared
// by most sub-pages (Build, Intensify, Friend, Mission, Backyard, Bath).
var backClick = vision.RelCoord{X: 0.022, Y: 0.058}

// GoBack performs the cross-cutting rule from spec §4.4: click back, then
// verify with the target page's own signature when it has one, falling
// back to "wait until the current page is no longer showing" otherwise.
func GoBack(ctx context.Context, d device.Controller, click vision.RelCoord, targetChecker page.Checker, currentChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	if targetChecker != nil {
		return page.ClickAndWaitForPage(ctx, d, click.X, click.Y, targetChecker, opts, 1)
	}
	if err := d.Click(ctx, click.X, click.Y); err != nil {
		return nil, err
	}
	return page.WaitLeavePage(ctx, d, currentChecker, opts)
}

// Main controls the game's home/main page: four navigation targets
// (sortie → map, task → mission, home → backyard, sidebar toggle).
type Main struct {
	Device device.Controller
}

var mainSignature = vision.PixelSignature{
	Name:     "main_page",
	Strategy: vision.MatchAll,
	Rules: []vision.PixelRule{
		vision.NewPixelRule(0.8896, 0.0278, vision.ColorFromRGB(110, 193, 255)),
		vision.NewPixelRule(0.7885, 0.0352, vision.ColorFromRGB(252, 144, 71)),
		vision.NewPixelRule(0.6813, 0.0333, vision.ColorFromRGB(82, 82, 82)),
		vision.NewPixelRule(0.5781, 0.0389, vision.ColorFromRGB(64, 98, 63)),
		vision.NewPixelRule(0.4750, 0.0278, vision.ColorFromRGB(158, 198, 109)),
	},
}

// IsCurrentPage reports whether screen shows the main page.
func (Main) IsCurrentPage(screen image.Image) bool {
	return vision.CheckSignature(screen, mainSignature, false).Matched
}

var (
	mainClickSortie   = vision.RelCoord{X: 0.9375, Y: 0.8981}
	mainClickTask     = vision.RelCoord{X: 0.6823, Y: 0.9037}
	mainClickSidebar  = vision.RelCoord{X: 0.0490, Y: 0.8981}
	mainClickHome     = vision.RelCoord{X: 0.0531, Y: 0.1519}
)

// NavigateToMap clicks the sortie control and waits for the map page.
func (m Main) NavigateToMap(ctx context.Context, mapChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return page.ClickAndWaitForPage(ctx, m.Device, mainClickSortie.X, mainClickSortie.Y, mapChecker, opts, 1)
}

// NavigateToMission clicks the task control and waits for the mission page.
func (m Main) NavigateToMission(ctx context.Context, missionChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return page.ClickAndWaitForPage(ctx, m.Device, mainClickTask.X, mainClickTask.Y, missionChecker, opts, 1)
}

// NavigateToBackyard clicks the home control and waits for the backyard page.
func (m Main) NavigateToBackyard(ctx context.Context, backyardChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return page.ClickAndWaitForPage(ctx, m.Device, mainClickHome.X, mainClickHome.Y, backyardChecker, opts, 1)
}

// OpenSidebar toggles the sidebar open and waits for its signature.
func (m Main) OpenSidebar(ctx context.Context, sidebarChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return page.ClickAndWaitForPage(ctx, m.Device, mainClickSidebar.X, mainClickSidebar.Y, sidebarChecker, opts, 1)
}

// Sidebar controls the left-hand slide-out menu: build/intensify/friend.
// Build and Intensify each pop a two-step submenu the edge action must
// click through; Friend is a single click.
type Sidebar struct {
	Device device.Controller
}

var sidebarSignature = vision.PixelSignature{
	Name:     "sidebar_page",
	Strategy: vision.MatchCount,
	Threshold: 2,
	Rules: []vision.PixelRule{
		vision.NewPixelRule(0.0453, 0.3463, vision.ColorFromRGB(0, 160, 232)),
		vision.NewPixelRule(0.0406, 0.4676, vision.ColorFromRGB(0, 160, 232)),
		vision.NewPixelRule(0.0432, 0.7231, vision.ColorFromRGB(0, 160, 232)),
	},
}

func (Sidebar) IsCurrentPage(screen image.Image) bool {
	return vision.CheckSignature(screen, sidebarSignature, false).Matched
}

var (
	sidebarClickBuild     = vision.RelCoord{X: 0.1563, Y: 0.3704}
	sidebarClickIntensify = vision.RelCoord{X: 0.1563, Y: 0.5000}
	sidebarClickFriend    = vision.RelCoord{X: 0.1563, Y: 0.7593}
	sidebarClickClose     = vision.RelCoord{X: 0.0438, Y: 0.8963}
	sidebarSubmenuBuild     = vision.RelCoord{X: 0.375, Y: 0.3704}
	sidebarSubmenuIntensify = vision.RelCoord{X: 0.375, Y: 0.5000}
	sidebarSubmenuDelay     = 1250 * time.Millisecond
)

// NavigateToBuild performs the two-step submenu click sequence: open the
// Build entry, wait for the submenu to render, click the first option,
// then verify arrival at the Build page.
func (s Sidebar) NavigateToBuild(ctx context.Context, buildChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	if err := s.Device.Click(ctx, sidebarClickBuild.X, sidebarClickBuild.Y); err != nil {
		return nil, err
	}
	time.Sleep(sidebarSubmenuDelay)
	return page.ClickAndWaitForPage(ctx, s.Device, sidebarSubmenuBuild.X, sidebarSubmenuBuild.Y, buildChecker, opts, 1)
}

// NavigateToIntensify is NavigateToBuild's counterpart for the Intensify
// submenu.
func (s Sidebar) NavigateToIntensify(ctx context.Context, intensifyChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	if err := s.Device.Click(ctx, sidebarClickIntensify.X, sidebarClickIntensify.Y); err != nil {
		return nil, err
	}
	time.Sleep(sidebarSubmenuDelay)
	return page.ClickAndWaitForPage(ctx, s.Device, sidebarSubmenuIntensify.X, sidebarSubmenuIntensify.Y, intensifyChecker, opts, 1)
}

// NavigateToFriend has no submenu: a single click suffices.
func (s Sidebar) NavigateToFriend(ctx context.Context, friendChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return page.ClickAndWaitForPage(ctx, s.Device, sidebarClickFriend.X, sidebarClickFriend.Y, friendChecker, opts, 1)
}

// Close collapses the sidebar back to the main page.
func (s Sidebar) Close(ctx context.Context, mainChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return page.ClickAndWaitForPage(ctx, s.Device, sidebarClickClose.X, sidebarClickClose.Y, mainChecker, opts, 1)
}

// GoBackWithArrow is GoBack through the top-left back arrow (backClick),
// shared by every sub-page controller whose back control is that arrow.
func GoBackWithArrow(ctx context.Context, d device.Controller, targetChecker, currentChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return GoBack(ctx, d, backClick, targetChecker, currentChecker, opts)
}

// Build controls the ship-construction page, a tabbed page with
// scrap/develop/discard tabs.
type Build struct {
	Device device.Controller
}

func (Build) IsCurrentPage(screen image.Image, kinds map[string]vision.Template, probes []vision.TabProbe) bool {
	kind, ok := vision.TabbedPageKind(screen, probes, vision.DefaultTabPalette, kinds, vision.FullScreen(), 0.8)
	return ok && kind == "build"
}

func (b Build) GoBack(ctx context.Context, sidebarChecker, currentChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return GoBackWithArrow(ctx, b.Device, sidebarChecker, currentChecker, opts)
}

// Intensify controls the ship-modernization page, mirroring Build.
type Intensify struct {
	Device device.Controller
}

func (Intensify) IsCurrentPage(screen image.Image, kinds map[string]vision.Template, probes []vision.TabProbe) bool {
	kind, ok := vision.TabbedPageKind(screen, probes, vision.DefaultTabPalette, kinds, vision.FullScreen(), 0.8)
	return ok && kind == "intensify"
}

func (i Intensify) GoBack(ctx context.Context, sidebarChecker, currentChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return GoBackWithArrow(ctx, i.Device, sidebarChecker, currentChecker, opts)
}

// Friend controls the friend-fleet borrowing page.
type Friend struct {
	Device device.Controller
}

func (f Friend) GoBack(ctx context.Context, sidebarChecker, currentChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return GoBackWithArrow(ctx, f.Device, sidebarChecker, currentChecker, opts)
}

// Mission controls the daily/weekly task list page.
type Mission struct {
	Device device.Controller
}

var missionConfirmCenter = vision.RelCoord{X: 0.5, Y: 0.5}

// DismissRewardPopup clicks the screen center to close a reward-claim
// popup, a best-effort action with no page-transition verification.
func (m Mission) DismissRewardPopup(ctx context.Context) error {
	return m.Device.Click(ctx, missionConfirmCenter.X, missionConfirmCenter.Y)
}

func (m Mission) GoBack(ctx context.Context, mainChecker, currentChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return GoBackWithArrow(ctx, m.Device, mainChecker, currentChecker, opts)
}

// Backyard controls the dormitory hub page (entry point to Bath/Canteen).
type Backyard struct {
	Device device.Controller
}

var backyardSignature = vision.PixelSignature{
	Name:     "backyard_page",
	Strategy: vision.MatchAll,
	Rules: []vision.PixelRule{
		vision.NewPixelRule(0.6990, 0.8389, vision.ColorFromRGB(193, 98, 66)),
		vision.NewPixelRule(0.2583, 0.7750, vision.ColorFromRGB(240, 222, 146)),
		vision.NewPixelRule(0.3344, 0.5222, vision.ColorFromRGB(246, 119, 76)),
	},
}

func (Backyard) IsCurrentPage(screen image.Image) bool {
	return vision.CheckSignature(screen, backyardSignature, false).Matched
}

var (
	backyardClickBath    = vision.RelCoord{X: 0.7813, Y: 0.3889}
	backyardClickCanteen = vision.RelCoord{X: 0.5729, Y: 0.3889}
)

func (b Backyard) NavigateToBath(ctx context.Context, bathChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return page.ClickAndWaitForPage(ctx, b.Device, backyardClickBath.X, backyardClickBath.Y, bathChecker, opts, 1)
}

func (b Backyard) NavigateToCanteen(ctx context.Context, canteenChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return page.ClickAndWaitForPage(ctx, b.Device, backyardClickCanteen.X, backyardClickCanteen.Y, canteenChecker, opts, 1)
}

func (b Backyard) GoBack(ctx context.Context, mainChecker, currentChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return GoBackWithArrow(ctx, b.Device, mainChecker, currentChecker, opts)
}

// Bath controls the ship-repair page.
type Bath struct {
	Device device.Controller
}

var bathSignature = vision.PixelSignature{
	Name:     "bath_page",
	Strategy: vision.MatchAll,
	Rules: []vision.PixelRule{
		vision.NewPixelRule(0.8458, 0.1102, vision.ColorFromRGB(74, 132, 178)),
		vision.NewPixelRule(0.8604, 0.0889, vision.ColorFromRGB(253, 254, 255)),
		vision.NewPixelRule(0.8734, 0.0454, vision.ColorFromRGB(52, 146, 198)),
	},
}

func (Bath) IsCurrentPage(screen image.Image) bool {
	return vision.CheckSignature(screen, bathSignature, false).Matched
}

var (
	bathClickChooseRepair   = vision.RelCoord{X: 0.9375, Y: 0.0556}
	bathClickFirstRepair    = vision.RelCoord{X: 0.1198, Y: 0.4315}
)

func (b Bath) GoToChooseRepair(ctx context.Context, chooseRepairChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return page.ClickAndWaitForPage(ctx, b.Device, bathClickChooseRepair.X, bathClickChooseRepair.Y, chooseRepairChecker, opts, 1)
}

func (b Bath) ClickFirstRepairShip(ctx context.Context) error {
	return b.Device.Click(ctx, bathClickFirstRepair.X, bathClickFirstRepair.Y)
}

func (b Bath) GoBack(ctx context.Context, backyardChecker, currentChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return GoBackWithArrow(ctx, b.Device, backyardChecker, currentChecker, opts)
}

// Canteen controls the crew-cooking page.
type Canteen struct {
	Device device.Controller
}

var canteenSignature = vision.PixelSignature{
	Name:     "canteen_page",
	Strategy: vision.MatchAll,
	Rules: []vision.PixelRule{
		vision.NewPixelRule(0.7667, 0.0454, vision.ColorFromRGB(27, 134, 228)),
		vision.NewPixelRule(0.8734, 0.1611, vision.ColorFromRGB(29, 119, 205)),
		vision.NewPixelRule(0.7734, 0.0602, vision.ColorFromRGB(254, 255, 255)),
	},
}

func (Canteen) IsCurrentPage(screen image.Image) bool {
	return vision.CheckSignature(screen, canteenSignature, false).Matched
}

var canteenRecipeClicks = map[int]vision.RelCoord{
	1: {X: 0.1979, Y: 0.3519},
	2: {X: 0.3979, Y: 0.3519},
	3: {X: 0.5979, Y: 0.3519},
}

func (c Canteen) SelectRecipe(ctx context.Context, position int) error {
	coord, ok := canteenRecipeClicks[position]
	if !ok {
		return nil
	}
	return c.Device.Click(ctx, coord.X, coord.Y)
}

func (c Canteen) GoBack(ctx context.Context, backyardChecker, currentChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return GoBackWithArrow(ctx, c.Device, backyardChecker, currentChecker, opts)
}

// Map controls the sortie map-selection page: panel switching (sortie,
// exercise, expedition, battle, decisive) and the expedition-ready badge
// probe.
type Map struct {
	Device device.Controller
}

var expeditionNotifProbe = vision.RelCoord{X: 0.4953, Y: 0.0213}
var expeditionNotifColor = vision.ColorFromRGB(245, 88, 47)
var expeditionNotifTolerance = 40.0

// HasExpeditionNotification reports whether the expedition-panel badge
// (a fleet has returned and is waiting for dispatch) is showing.
func (Map) HasExpeditionNotification(screen image.Image) bool {
	sampled := vision.GetPixel(screen, expeditionNotifProbe.X, expeditionNotifProbe.Y)
	return sampled.Near(expeditionNotifColor, expeditionNotifTolerance)
}

var mapPanelClicks = map[string]vision.RelCoord{
	"sortie":     {X: 0.1396, Y: 0.0574},
	"exercise":   {X: 0.2745, Y: 0.0537},
	"expedition": {X: 0.4042, Y: 0.0556},
	"battle":     {X: 0.5276, Y: 0.0519},
	"decisive":   {X: 0.6620, Y: 0.0556},
}

// SwitchPanel clicks the named top-bar panel tab. No wait/verify is
// performed: panel switches are instantaneous client-side tab swaps, not
// page transitions.
func (m Map) SwitchPanel(ctx context.Context, panel string) error {
	coord, ok := mapPanelClicks[panel]
	if !ok {
		return nil
	}
	return m.Device.Click(ctx, coord.X, coord.Y)
}

func (m Map) GoBack(ctx context.Context, mainChecker, currentChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return GoBackWithArrow(ctx, m.Device, mainChecker, currentChecker, opts)
}

// BattlePreparation controls the pre-sortie fleet/formation screen shown
// immediately before a CombatPlan's Fight loop takes over the device; it
// also exposes the per-slot ship damage read used to seed combat.Engine's
// initial ship stats.
type BattlePreparation struct {
	Device device.Controller
}

// bloodAnchors are the six fixed probe points read on the battle-prep
// screen, one per fleet slot, classified against referenceColors by
// nearest match.
var bloodAnchors = []vision.RelCoord{
	{X: 0.100, Y: 0.27}, {X: 0.100, Y: 0.40}, {X: 0.100, Y: 0.53},
	{X: 0.100, Y: 0.66}, {X: 0.100, Y: 0.79}, {X: 0.100, Y: 0.92},
}

var bloodReferenceColors = map[string]vision.Color{
	"normal":    vision.ColorFromRGB(75, 203, 94),
	"moderate":  vision.ColorFromRGB(224, 133, 39),
	"severe":    vision.ColorFromRGB(214, 56, 46),
	"repairing": vision.ColorFromRGB(110, 110, 230),
}

var bloodStateByName = map[string]combat.ShipDamageState{
	"normal":    combat.ShipDamageNormal,
	"moderate":  combat.ShipDamageModerate,
	"severe":    combat.ShipDamageSevere,
	"repairing": combat.ShipDamageRepair,
}

// DetectShipDamage classifies each of the six fleet slots' blood-bar color
// against the reference palette, returning ShipDamageNone for a slot whose
// probe doesn't classify within tolerance (an empty slot).
func (bp BattlePreparation) DetectShipDamage(screen image.Image) []combat.ShipDamageState {
	out := make([]combat.ShipDamageState, len(bloodAnchors))
	for i, anchor := range bloodAnchors {
		name := vision.ClassifyColor(screen, anchor.X, anchor.Y, bloodReferenceColors, 35)
		if name == "" {
			out[i] = combat.ShipDamageNone
			continue
		}
		out[i] = bloodStateByName[name]
	}
	return out
}

func (bp BattlePreparation) GoBack(ctx context.Context, mapChecker, currentChecker page.Checker, opts page.WaitOptions) (image.Image, error) {
	return GoBackWithArrow(ctx, bp.Device, mapChecker, currentChecker, opts)
}
