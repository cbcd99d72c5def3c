package classify

import (
	"image"
	"image/color"
	"testing"

	"github.com/autowsgr/helmsman/combat"
	"github.com/autowsgr/helmsman/vision"
	"github.com/stretchr/testify/assert"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func solidTemplate(name string, c color.RGBA) vision.Template {
	return vision.Template{Name: name, Image: solidImage(8, 8, c)}
}

func TestClassifyCountsMatchedSlots(t *testing.T) {
	screen := solidImage(960, 540, color.RGBA{200, 30, 30, 255})
	bank := TemplateBank{
		combat.ShipBB: solidTemplate("bb", color.RGBA{200, 30, 30, 255}),
		combat.ShipCV: solidTemplate("cv", color.RGBA{10, 200, 10, 255}),
	}
	c := NewEnemyClassifier(bank)
	counts := c.Classify(screen)

	assert.Equal(t, 6, counts[combat.ShipBB], "every slot on a uniformly red screen should read as BB")
	assert.Equal(t, 0, counts[combat.ShipCV])
}

func TestClassifyEmptyBankYieldsNoCounts(t *testing.T) {
	screen := solidImage(960, 540, color.RGBA{0, 0, 0, 255})
	c := NewEnemyClassifier(TemplateBank{})
	counts := c.Classify(screen)
	assert.Empty(t, counts)
}

func TestAsRuleContextIncludesTotal(t *testing.T) {
	counts := map[combat.ShipType]int{combat.ShipBB: 2, combat.ShipDD: 3}
	ctx := AsRuleContext(counts)
	assert.Equal(t, 2.0, ctx["BB"])
	assert.Equal(t, 3.0, ctx["DD"])
	assert.Equal(t, 5.0, ctx["total"])
}
