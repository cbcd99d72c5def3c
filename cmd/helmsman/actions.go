package main

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/autowsgr/helmsman/combat"
	"github.com/autowsgr/helmsman/device"
	"github.com/autowsgr/helmsman/ocr"
	"github.com/autowsgr/helmsman/vision"
	"github.com/autowsgr/helmsman/vision/classify"
)

// coordinate constants grounded on original_source's combat/actions.py
// Coords class, all relative to a 960x540 reference frame.
var (
	coordRetreat         = vision.RelCoord{X: 0.705, Y: 0.911}
	coordEnterFight      = vision.RelCoord{X: 0.891, Y: 0.928}
	coordProceedYes      = vision.RelCoord{X: 0.339, Y: 0.648}
	coordProceedNo       = vision.RelCoord{X: 0.641, Y: 0.648}
	coordNightYes        = vision.RelCoord{X: 0.339, Y: 0.648}
	coordNightNo         = vision.RelCoord{X: 0.641, Y: 0.648}
	coordClickResult     = vision.RelCoord{X: 0.953, Y: 0.954}
	coordSpeedUpNormal   = vision.RelCoord{X: 0.260, Y: 0.963}
	coordSpeedUpBattle   = vision.RelCoord{X: 0.396, Y: 0.963}
	coordResourceConfirm = vision.RelCoord{X: 0.5, Y: 0.5}
)

// enemyFormationROI crops the enemy-formation name banner shown on the
// spot-enemy page, grounded on original_source's recognition.py
// _FORMATION_ROI.
var enemyFormationROI = vision.ROI{X1: 0.11, Y1: 0.05, X2: 0.20, Y2: 0.15}

// enemyFormationAllowlist restricts OCR to the CJK glyphs that appear in a
// formation name, same set as original_source's _FORMATION_ALLOWLIST.
const enemyFormationAllowlist = ocr.Allowlist("单纵复轮型梯形横阵")

// enemyShipTypes is the set of combat.ShipType keys a loaded asset
// directory may supply a template for, used to build the enemy
// classifier's TemplateBank from assetActions' flat template map.
var enemyShipTypes = []combat.ShipType{
	combat.ShipDD, combat.ShipCL, combat.ShipCA, combat.ShipBB, combat.ShipCV, combat.ShipSS,
}

func buildEnemyTemplateBank(templates map[string]vision.Template) classify.TemplateBank {
	bank := classify.TemplateBank{}
	for _, kind := range enemyShipTypes {
		if t, ok := templates[string(kind)]; ok {
			bank[kind] = t
		}
	}
	return bank
}

// assetActions is the cmd/helmsman default combat.GameActions
// implementation: simple coordinate clicks for the state-machine-driven
// actions above, plus PNG template assets loaded from a directory for the
// image-recognition-dependent ones (detour button, flagship-severe
// confirm, fleet icons) and an optional ocr.Engine for text reads. This is
// the concrete edge of the GameActions non-goal boundary: it exists so
// `helmsman fight` can run end to end once an operator supplies assets,
// not to ship recognition assets itself.
type assetActions struct {
	device     device.Controller
	templates  map[string]vision.Template
	ocr        ocr.Engine
	classifier *classify.EnemyClassifier
}

func newAssetActions(d device.Controller, assetsDir string, ocrEngine ocr.Engine) (*assetActions, error) {
	templates, err := loadTemplates(assetsDir)
	if err != nil {
		return nil, err
	}
	classifier := classify.NewEnemyClassifier(buildEnemyTemplateBank(templates))
	return &assetActions{device: d, templates: templates, ocr: ocrEngine, classifier: classifier}, nil
}

// loadTemplates reads every *.png file in dir as a named vision.Template,
// keyed by filename without extension. A missing directory yields an
// empty template set rather than an error: callers without image assets
// can still run the parts of GameActions that are pure coordinate clicks.
func loadTemplates(dir string) (map[string]vision.Template, error) {
	templates := map[string]vision.Template{}
	if dir == "" {
		return templates, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return templates, nil
		}
		return nil, fmt.Errorf("cmd/helmsman: read assets dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".png" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cmd/helmsman: open asset %s: %w", path, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("cmd/helmsman: decode asset %s: %w", path, err)
		}
		name := entry.Name()[:len(entry.Name())-len(filepath.Ext(entry.Name()))]
		b := img.Bounds()
		templates[name] = vision.Template{
			Name:             name,
			Image:            img,
			CaptureWidth:     b.Dx(),
			CaptureHeight:    b.Dy(),
			DefaultROI:       vision.FullScreen(),
			DefaultThreshold: 0.8,
		}
	}
	return templates, nil
}

var errOCRUnavailable = fmt.Errorf("cmd/helmsman: no OCR engine configured")

func (a *assetActions) ClickProceed(ctx context.Context, goForward bool) error {
	c := coordProceedNo
	if goForward {
		c = coordProceedYes
	}
	return a.device.Click(ctx, c.X, c.Y)
}

func (a *assetActions) ClickFightCondition(ctx context.Context, condition combat.FightCondition) error {
	x, y := condition.RelativeClickPosition()
	return a.device.Click(ctx, x, y)
}

func (a *assetActions) ClickFormation(ctx context.Context, formation combat.Formation) error {
	x, y := formation.RelativePosition()
	if err := a.device.Click(ctx, x, y); err != nil {
		return err
	}
	time.Sleep(2 * time.Second)
	return nil
}

func (a *assetActions) ClickEnterFight(ctx context.Context) error {
	time.Sleep(500 * time.Millisecond)
	if err := a.device.Click(ctx, coordEnterFight.X, coordEnterFight.Y); err != nil {
		return err
	}
	time.Sleep(200 * time.Millisecond)
	return nil
}

func (a *assetActions) ClickRetreat(ctx context.Context) error {
	if err := a.device.Click(ctx, coordRetreat.X, coordRetreat.Y); err != nil {
		return err
	}
	time.Sleep(200 * time.Millisecond)
	return nil
}

func (a *assetActions) ClickNightBattle(ctx context.Context, pursue bool) error {
	c := coordNightNo
	if pursue {
		c = coordNightYes
	}
	return a.device.Click(ctx, c.X, c.Y)
}

func (a *assetActions) ClickResult(ctx context.Context) error {
	return a.device.Click(ctx, coordClickResult.X, coordClickResult.Y)
}

func (a *assetActions) ClickSkipMissileAnimation(ctx context.Context) error {
	if err := a.device.Click(ctx, coordSpeedUpBattle.X, coordSpeedUpBattle.Y); err != nil {
		return err
	}
	time.Sleep(200 * time.Millisecond)
	return nil
}

func (a *assetActions) ImageExists(ctx context.Context, name string, confidence float64) bool {
	tmpl, ok := a.templates[name]
	if !ok {
		return false
	}
	screen, err := a.device.Screenshot(ctx)
	if err != nil {
		return false
	}
	return vision.TemplateExists(screen, tmpl, tmpl.DefaultROI, confidence)
}

func (a *assetActions) ClickImage(ctx context.Context, name string, timeout time.Duration) (bool, error) {
	tmpl, ok := a.templates[name]
	if !ok {
		return false, nil
	}
	deadline := time.Now().Add(timeout)
	for {
		screen, err := a.device.Screenshot(ctx)
		if err != nil {
			return false, err
		}
		if result, found := vision.FindTemplate(screen, tmpl, tmpl.DefaultROI, tmpl.DefaultThreshold); found {
			if err := a.device.Click(ctx, result.CenterX, result.CenterY); err != nil {
				return false, err
			}
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		time.Sleep(300 * time.Millisecond)
	}
}

func (a *assetActions) GetShipDrop(ctx context.Context) (string, error) {
	if a.ocr == nil {
		return "", errOCRUnavailable
	}
	screen, err := a.device.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	result, err := a.ocr.RecognizeSingle(ctx, screen, "")
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

func (a *assetActions) DetectResultGrade(ctx context.Context) (string, error) {
	if a.ocr == nil {
		return "", errOCRUnavailable
	}
	screen, err := a.device.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	result, err := a.ocr.RecognizeSingle(ctx, screen, "DCBASS")
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// resultBloodAnchors are the six vertical MVP/result-page blood-bar probe
// points, grounded on original_source's BloodBarPositions.RESULT_PAGE
// (absolute pixels at 960x540, converted to relative here).
var resultBloodAnchors = []vision.RelCoord{
	{X: 60.0 / 960, Y: 142.0 / 540}, {X: 60.0 / 960, Y: 217.0 / 540},
	{X: 60.0 / 960, Y: 292.0 / 540}, {X: 60.0 / 960, Y: 367.0 / 540},
	{X: 60.0 / 960, Y: 442.0 / 540}, {X: 60.0 / 960, Y: 517.0 / 540},
}

var resultBloodReferenceColors = map[string]vision.Color{
	"normal":    vision.ColorFromRGB(75, 203, 94),
	"moderate":  vision.ColorFromRGB(224, 133, 39),
	"severe":    vision.ColorFromRGB(214, 56, 46),
	"repairing": vision.ColorFromRGB(110, 110, 230),
}

var resultBloodStateByName = map[string]combat.ShipDamageState{
	"normal":    combat.ShipDamageNormal,
	"moderate":  combat.ShipDamageModerate,
	"severe":    combat.ShipDamageSevere,
	"repairing": combat.ShipDamageRepair,
}

func (a *assetActions) DetectShipStats(ctx context.Context, previous []combat.ShipDamageState) ([]combat.ShipDamageState, error) {
	screen, err := a.device.Screenshot(ctx)
	if err != nil {
		return nil, err
	}
	out := append([]combat.ShipDamageState(nil), previous...)
	for i, anchor := range resultBloodAnchors {
		slot := i
		if slot >= len(out) {
			break
		}
		if out[slot] == combat.ShipDamageNone {
			continue
		}
		name := vision.ClassifyColor(screen, anchor.X, anchor.Y, resultBloodReferenceColors, 35)
		if name == "" {
			continue
		}
		out[slot] = resultBloodStateByName[name]
	}
	return out, nil
}

func (a *assetActions) GetEnemyInfo(ctx context.Context, mode combat.CombatMode) (map[string]int, error) {
	screen, err := a.device.Screenshot(ctx)
	if err != nil {
		return nil, err
	}
	counts := a.classifier.Classify(screen)
	out := make(map[string]int, len(counts))
	for kind, n := range counts {
		out[string(kind)] = n
	}
	return out, nil
}

func (a *assetActions) GetEnemyFormation(ctx context.Context) (string, error) {
	if a.ocr == nil {
		return "", errOCRUnavailable
	}
	screen, err := a.device.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	cropped := enemyFormationROI.Crop(screen)
	result, err := a.ocr.RecognizeSingle(ctx, cropped, enemyFormationAllowlist)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Text), nil
}

func (a *assetActions) SpeedUp(ctx context.Context, battleMode bool) error {
	c := coordSpeedUpNormal
	if battleMode {
		c = coordSpeedUpBattle
	}
	return a.device.Click(ctx, c.X, c.Y)
}

func (a *assetActions) DismissResourceConfirm(ctx context.Context) error {
	if !a.ImageExists(ctx, "resource_confirm", 0.8) {
		return nil
	}
	return a.device.Click(ctx, coordResourceConfirm.X, coordResourceConfirm.Y)
}

func (a *assetActions) ShipIconTemplates() []vision.Template {
	var out []vision.Template
	for _, suffix := range []string{"ship_icon_1", "ship_icon_2"} {
		if t, ok := a.templates[suffix]; ok {
			out = append(out, t)
		}
	}
	return out
}

var _ combat.GameActions = (*assetActions)(nil)
