// Package classify implements enemy-fleet composition recognition: the
// six-slot ROI crop against per-ship-type templates the combat rule engine
// needs before it can evaluate enemy_rules, grounded on original_source's
// autowsgr/combat/classify.py template bank.
package classify

import (
	"context"
	"fmt"
	"image"

	"github.com/autowsgr/helmsman/combat"
	"github.com/autowsgr/helmsman/vision"
)

// enemySlotROIs are the six fixed enemy-ship icon regions on the
// spot-enemy screen, numbered left to right.
var enemySlotROIs = [6]vision.ROI{
	{X1: 0.05, Y1: 0.15, X2: 0.20, Y2: 0.35},
	{X1: 0.22, Y1: 0.15, X2: 0.37, Y2: 0.35},
	{X1: 0.39, Y1: 0.15, X2: 0.54, Y2: 0.35},
	{X1: 0.56, Y1: 0.15, X2: 0.71, Y2: 0.35},
	{X1: 0.73, Y1: 0.15, X2: 0.88, Y2: 0.35},
	{X1: 0.05, Y1: 0.40, X2: 0.20, Y2: 0.60},
}

// recognizedTypes is the subset of combat.ShipType the classifier
// distinguishes by template; no other type is ever counted, ShipOther
// included.
var recognizedTypes = []combat.ShipType{
	combat.ShipDD, combat.ShipCL, combat.ShipCA, combat.ShipBB,
	combat.ShipCV, combat.ShipSS,
}

// TemplateBank supplies one reference Template per recognized ship type,
// the game-specific asset this package doesn't ship — the same non-goal
// boundary as combat.GameActions.ShipIconTemplates.
type TemplateBank map[combat.ShipType]vision.Template

// EnemyClassifier counts enemy ship types from a spot-enemy screenshot by
// matching each of the six slot ROIs against every template in bank and
// keeping the best match above MinConfidence.
type EnemyClassifier struct {
	Bank          TemplateBank
	MinConfidence float64
}

// NewEnemyClassifier constructs a classifier with the default confidence
// threshold (0.75) used throughout the recognition tables.
func NewEnemyClassifier(bank TemplateBank) *EnemyClassifier {
	return &EnemyClassifier{Bank: bank, MinConfidence: 0.75}
}

// Classify returns a composition count (ship type -> occurrence count)
// for the enemy fleet visible in screen. Empty slots, and slots that
// don't clear MinConfidence against any bank entry, are skipped rather
// than forced into ShipOther: an empty slot is not an "other" ship.
func (c *EnemyClassifier) Classify(screen image.Image) map[combat.ShipType]int {
	counts := make(map[combat.ShipType]int)
	for _, roi := range enemySlotROIs {
		kind, ok := c.classifySlot(screen, roi)
		if !ok {
			continue
		}
		counts[kind]++
	}
	return counts
}

func (c *EnemyClassifier) classifySlot(screen image.Image, roi vision.ROI) (combat.ShipType, bool) {
	best := combat.ShipOther
	bestScore := c.MinConfidence
	found := false
	for _, kind := range recognizedTypes {
		tmpl, ok := c.Bank[kind]
		if !ok {
			continue
		}
		result := vision.MatchTemplate(screen, tmpl, roi, 0)
		if result.Confidence >= bestScore {
			bestScore = result.Confidence
			best = kind
			found = true
		}
	}
	return best, found
}

// AsRuleContext converts a composition count into the float64 context map
// combat.RuleEngine.Evaluate expects, plus a synthetic "total" field.
func AsRuleContext(counts map[combat.ShipType]int) map[string]float64 {
	ctx := make(map[string]float64, len(counts)+1)
	total := 0
	for kind, n := range counts {
		ctx[string(kind)] = float64(n)
		total += n
	}
	ctx["total"] = float64(total)
	return ctx
}

// NativeLibrary is the seam for a future cgo- or subprocess-backed
// classifier (e.g. an ONNX or libtorch model) that outperforms template
// matching on ambiguous hulls. No implementation ships in this module;
// EnemyClassifier is the pure-Go default used until one is wired in.
type NativeLibrary interface {
	ClassifyEnemyFleet(ctx context.Context, screen image.Image) (map[combat.ShipType]int, error)
}

// ErrNativeLibraryUnavailable is returned by callers that probe for a
// NativeLibrary implementation and find none configured.
var ErrNativeLibraryUnavailable = fmt.Errorf("classify: no native classification library configured")
