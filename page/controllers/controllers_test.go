package controllers

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/autowsgr/helmsman/combat"
	"github.com/autowsgr/helmsman/device"
	"github.com/autowsgr/helmsman/page"
	"github.com/autowsgr/helmsman/vision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signatureImage renders a large canvas and stamps each rule's expected
// color at its relative point, so CheckSignature sees an exact match
// regardless of tolerance.
func signatureImage(w, h int, rules []vision.PixelRule) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	for _, r := range rules {
		px := int(r.Point.X * float64(w))
		py := int(r.Point.Y * float64(h))
		img.Set(px, py, color.RGBA{r.Expected.R, r.Expected.G, r.Expected.B, 255})
	}
	return img
}

func TestMainIsCurrentPage(t *testing.T) {
	img := signatureImage(1000, 1000, mainSignature.Rules)
	assert.True(t, Main{}.IsCurrentPage(img))
}

func TestMainIsCurrentPageFalseOnBlankScreen(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1000, 1000))
	assert.False(t, Main{}.IsCurrentPage(img))
}

func TestSidebarIsCurrentPageMatchCountThreshold(t *testing.T) {
	img := signatureImage(1000, 1000, sidebarSignature.Rules)
	assert.True(t, Sidebar{}.IsCurrentPage(img))
}

func TestBackyardIsCurrentPage(t *testing.T) {
	img := signatureImage(1000, 1000, backyardSignature.Rules)
	assert.True(t, Backyard{}.IsCurrentPage(img))
}

func TestBathIsCurrentPage(t *testing.T) {
	img := signatureImage(1000, 1000, bathSignature.Rules)
	assert.True(t, Bath{}.IsCurrentPage(img))
}

func TestCanteenIsCurrentPage(t *testing.T) {
	img := signatureImage(1000, 1000, canteenSignature.Rules)
	assert.True(t, Canteen{}.IsCurrentPage(img))
}

func TestMapHasExpeditionNotification(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1000, 1000))
	px := int(expeditionNotifProbe.X * 1000)
	py := int(expeditionNotifProbe.Y * 1000)
	img.Set(px, py, color.RGBA{expeditionNotifColor.R, expeditionNotifColor.G, expeditionNotifColor.B, 255})

	assert.True(t, Map{}.HasExpeditionNotification(img))
}

func TestMapHasExpeditionNotificationFalseWhenAbsent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1000, 1000))
	for y := 0; y < 1000; y++ {
		for x := 0; x < 1000; x++ {
			img.Set(x, y, color.RGBA{0, 0, 0, 255})
		}
	}
	assert.False(t, Map{}.HasExpeditionNotification(img))
}

func TestMapSwitchPanelIgnoresUnknownPanel(t *testing.T) {
	fake := device.NewFake(100, 100)
	m := Map{Device: fake}
	err := m.SwitchPanel(context.Background(), "not-a-real-panel")
	require.NoError(t, err)
	assert.Empty(t, fake.Clicks)
}

func TestMapSwitchPanelClicksKnownPanel(t *testing.T) {
	fake := device.NewFake(100, 100)
	m := Map{Device: fake}
	err := m.SwitchPanel(context.Background(), "battle")
	require.NoError(t, err)
	require.Len(t, fake.Clicks, 1)
	assert.InDelta(t, mapPanelClicks["battle"].X, fake.Clicks[0].X, 0.001)
}

func TestCanteenSelectRecipeIgnoresUnknownPosition(t *testing.T) {
	fake := device.NewFake(100, 100)
	c := Canteen{Device: fake}
	err := c.SelectRecipe(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, fake.Clicks)
}

func TestCanteenSelectRecipeClicksKnownPosition(t *testing.T) {
	fake := device.NewFake(100, 100)
	c := Canteen{Device: fake}
	err := c.SelectRecipe(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, fake.Clicks, 1)
}

func TestBattlePreparationDetectShipDamageClassifiesEachSlot(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1000, 1000))
	for y := 0; y < 1000; y++ {
		for x := 0; x < 1000; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	// Slot 0 normal, slot 1 severe, rest left unclassified (ShipDamageNone).
	normal := bloodReferenceColors["normal"]
	severe := bloodReferenceColors["severe"]
	img.Set(int(bloodAnchors[0].X*1000), int(bloodAnchors[0].Y*1000), color.RGBA{normal.R, normal.G, normal.B, 255})
	img.Set(int(bloodAnchors[1].X*1000), int(bloodAnchors[1].Y*1000), color.RGBA{severe.R, severe.G, severe.B, 255})

	bp := BattlePreparation{}
	stats := bp.DetectShipDamage(img)
	require.Len(t, stats, 6)
	assert.Equal(t, combat.ShipDamageNormal, stats[0])
	assert.Equal(t, combat.ShipDamageSevere, stats[1])
	assert.Equal(t, combat.ShipDamageNone, stats[2])
}

func TestGoBackUsesTargetSignatureWhenAvailable(t *testing.T) {
	fake := device.NewFake(100, 100,
		blankFrame(),
		blankFrame(),
	)
	targetHit := false
	target := page.Checker(func(image.Image) bool { targetHit = true; return true })
	current := page.Checker(func(image.Image) bool { return false })

	_, err := GoBack(context.Background(), fake, vision.RelCoord{X: 0.1, Y: 0.1}, target, current, page.WaitOptions{Timeout: 1e9, Interval: 1})
	require.NoError(t, err)
	assert.True(t, targetHit)
	require.Len(t, fake.Clicks, 1)
}

func TestGoBackFallsBackToWaitLeaveWhenNoTargetSignature(t *testing.T) {
	fake := device.NewFake(100, 100,
		blankFrame(),
		redFrame(),
	)
	current := page.Checker(func(screen image.Image) bool {
		r, _, _, _ := screen.At(0, 0).RGBA()
		return r == 0
	})

	_, err := GoBack(context.Background(), fake, vision.RelCoord{X: 0.1, Y: 0.1}, nil, current, page.WaitOptions{Timeout: 1e9, Interval: 1})
	require.NoError(t, err)
	require.Len(t, fake.Clicks, 1)
}

func blankFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.RGBA{0, 0, 0, 255})
		}
	}
	return img
}

func redFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	return img
}
