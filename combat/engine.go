package combat

import (
	"context"
	"fmt"
	"time"

	"github.com/autowsgr/helmsman/device"
	"github.com/autowsgr/helmsman/log"
	"github.com/autowsgr/helmsman/vision"
)

// GameActions is the collection of game-specific screen actions and
// readouts the combat engine drives, grounded line-for-line on
// original_source's actions.py. Unlike the pure state-machine logic
// above, these calls depend on game-specific templates and OCR models
// this module doesn't ship (the same non-goal boundary as ocr.Engine
// and vision/classify.NativeLibrary) — callers supply a concrete
// implementation built on vision.Template assets for their game build.
type GameActions interface {
	ClickProceed(ctx context.Context, goForward bool) error
	ClickFightCondition(ctx context.Context, condition FightCondition) error
	ClickFormation(ctx context.Context, formation Formation) error
	ClickEnterFight(ctx context.Context) error
	ClickRetreat(ctx context.Context) error
	ClickNightBattle(ctx context.Context, pursue bool) error
	ClickResult(ctx context.Context) error
	ClickSkipMissileAnimation(ctx context.Context) error

	// ImageExists reports whether the named UI element (e.g. "detour",
	// the detour button) is currently visible.
	ImageExists(ctx context.Context, name string, confidence float64) bool
	// ClickImage waits up to timeout for the named element then clicks
	// it, reporting whether it was found.
	ClickImage(ctx context.Context, name string, timeout time.Duration) (bool, error)

	GetShipDrop(ctx context.Context) (string, error)
	DetectResultGrade(ctx context.Context) (string, error)
	DetectShipStats(ctx context.Context, previous []ShipDamageState) ([]ShipDamageState, error)
	GetEnemyInfo(ctx context.Context, mode CombatMode) (map[string]int, error)
	GetEnemyFormation(ctx context.Context) (string, error)

	// SpeedUp taps the battle speed-up control; battleMode selects
	// between the map-movement and in-battle button positions.
	SpeedUp(ctx context.Context, battleMode bool) error
	// DismissResourceConfirm clicks away the resource gain/loss popup
	// that can appear during map movement, if one is showing.
	DismissResourceConfirm(ctx context.Context) error

	// ShipIconTemplates returns the fleet-position icon templates the
	// node tracker matches against.
	ShipIconTemplates() []vision.Template
}

// Engine drives one complete engagement from a CombatPlan to a
// CombatResult, owning all runtime state for the duration of one Fight
// call — nothing here persists between calls.
type Engine struct {
	Device     device.Controller
	Actions    GameActions
	Recognizer *Recognizer

	plan    CombatPlan
	phase   CombatPhase
	lastAct string
	node    string

	shipStats      []ShipDamageState
	enemies        map[string]int
	enemyFormation string
	formationByRule *Formation

	history   History
	nodeCount int
	tracker   *NodeTracker
}

// NewEngine constructs an Engine. Its Recognizer is built by each Fight
// call from the plan's mode: Battle mode plans get BattleModeOverrides,
// every other mode the unmodified PhaseSignatures.
func NewEngine(d device.Controller, actions GameActions) *Engine {
	return &Engine{Device: d, Actions: actions}
}

// Result is one Fight call's outcome.
type Result struct {
	Flag      ConditionFlag
	History   *History
	ShipStats []ShipDamageState
	NodeCount int
}

// Fight runs plan to completion: update-state/make-decision loop until a
// terminal ConditionFlag is produced or SL is forced by an unrecoverable
// recognition timeout.
func (e *Engine) Fight(ctx context.Context, plan CombatPlan, mapData *MapNodeData, initialShipStats []ShipDamageState) (Result, error) {
	e.plan = plan

	overrides := map[CombatPhase]SignatureOverride{}
	if plan.Mode == ModeBattle {
		overrides = BattleModeOverrides
	}
	e.Recognizer = NewRecognizer(e.Device, overrides)

	e.reset()

	if plan.Mode == ModeNormal && mapData != nil {
		e.tracker = NewNodeTracker(mapData)
		log.Info("combat: node tracker loaded", log.F("chapter", plan.Chapter), log.F("map", plan.MapID), log.F("nodes", mapData.Len()))
	} else {
		e.tracker = nil
	}

	if initialShipStats != nil {
		e.shipStats = append([]ShipDamageState(nil), initialShipStats...)
	}

	result := Result{History: &e.history}

	for {
		decision, err := e.step(ctx)
		if err != nil {
			var timeoutErr *RecognitionTimeoutError
			if asRecognitionTimeout(err, &timeoutErr) {
				log.Warn("combat: phase recognition timed out", log.F("error", err.Error()))
				if !e.tryRecovery(ctx) {
					result.Flag = ConditionSL
					break
				}
				// Recovered onto the end phase: its handler records the
				// auto-return and ends the fight.
				if decision, err = e.makeDecision(ctx, e.phase); err != nil {
					return Result{}, err
				}
			} else {
				return Result{}, err
			}
		}

		switch decision {
		case ConditionFightContinue:
			continue
		case ConditionDockFull:
			log.Warn("combat: entering fight failed, dock is full")
			result.Flag = ConditionDockFull
		case ConditionSL:
			result.Flag = ConditionSL
		case ConditionFightEnd:
			log.Debug("combat: fight ended", log.F("events", e.history.Len()))
			result.Flag = ConditionOperationSuccess
		default:
			result.Flag = ConditionOperationSuccess
		}
		break
	}

	result.ShipStats = append([]ShipDamageState(nil), e.shipStats...)
	result.NodeCount = e.nodeCount
	log.Info("combat: fight finished", log.F("flag", string(result.Flag)), log.F("nodes", result.NodeCount))
	return result, nil
}

func asRecognitionTimeout(err error, target **RecognitionTimeoutError) bool {
	if rt, ok := err.(*RecognitionTimeoutError); ok {
		*target = rt
		return true
	}
	return false
}

func (e *Engine) reset() {
	e.history.Reset()
	e.node = "0"
	e.nodeCount = 0
	e.enemies = map[string]int{}
	e.enemyFormation = ""
	e.formationByRule = nil
	if e.tracker != nil {
		e.tracker.Reset()
	}
	e.shipStats = []ShipDamageState{ShipDamageNormal, ShipDamageNormal, ShipDamageNormal, ShipDamageNormal, ShipDamageNormal, ShipDamageNormal}

	e.phase = PhaseProceed
	if e.plan.Mode == ModeNormal {
		e.lastAct = "yes"
	} else {
		e.lastAct = ""
	}
}

func (e *Engine) step(ctx context.Context) (ConditionFlag, error) {
	newPhase, err := e.updateState(ctx)
	if err != nil {
		return "", err
	}
	return e.makeDecision(ctx, newPhase)
}

func (e *Engine) updateState(ctx context.Context) (CombatPhase, error) {
	candidates, err := ResolveSuccessors(e.plan.Transitions(), e.phase, e.lastAct)
	if err != nil {
		return 0, fmt.Errorf("combat: resolve successors: %w", err)
	}

	pollAction := e.pollAction(e.phase)

	newPhase, err := e.Recognizer.WaitForPhase(ctx, candidates, pollAction)
	if err != nil {
		return 0, err
	}

	e.phase = newPhase
	e.afterMatch(ctx, newPhase)
	return newPhase, nil
}

// pollAction returns the per-iteration action (speed-up tap, node
// tracking, resource-popup dismissal) appropriate to lastPhase and mode,
// or nil when no polling action applies.
func (e *Engine) pollAction(lastPhase CombatPhase) func(context.Context) error {
	switch e.plan.Mode {
	case ModeNormal:
		if lastPhase == PhaseProceed || lastPhase == PhaseFightCondition || e.lastAct == "detour" {
			return func(ctx context.Context) error {
				if err := e.Actions.SpeedUp(ctx, false); err != nil {
					return err
				}
				if e.tracker != nil {
					screen, err := e.Device.Screenshot(ctx)
					if err == nil {
						e.tracker.Track(screen, e.Actions.ShipIconTemplates())
						if newNode := e.tracker.CurrentNode(); newNode != e.node {
							e.node = newNode
						}
					}
				}
				return e.Actions.DismissResourceConfirm(ctx)
			}
		}
	case ModeBattle:
		if lastPhase == PhaseProceed {
			return func(ctx context.Context) error {
				return e.Actions.SpeedUp(ctx, true)
			}
		}
	}
	return nil
}

// afterMatch runs the information-gathering hooks triggered by landing
// on certain phases: final node calibration, enemy composition capture,
// and result-grade/blood detection.
func (e *Engine) afterMatch(ctx context.Context, phase CombatPhase) {
	if (phase == PhaseSpotEnemySuccess || phase == PhaseFormation || phase == PhaseFightCondition) && e.tracker != nil {
		screen, err := e.Device.Screenshot(ctx)
		if err == nil {
			e.tracker.Track(screen, e.Actions.ShipIconTemplates())
			if newNode := e.tracker.CurrentNode(); newNode != e.node {
				e.node = newNode
			}
		}
	}

	switch phase {
	case PhaseSpotEnemySuccess:
		if enemies, err := e.Actions.GetEnemyInfo(ctx, e.plan.Mode); err == nil {
			e.enemies = enemies
		}
		if formation, err := e.Actions.GetEnemyFormation(ctx); err == nil {
			e.enemyFormation = formation
		}
		log.Info("combat: spotted enemy", log.F("enemies", fmt.Sprint(e.enemies)), log.F("formation", e.enemyFormation))
	case PhaseResult:
		grade, _ := e.Actions.DetectResultGrade(ctx)
		stats, err := e.Actions.DetectShipStats(ctx, e.shipStats)
		if err == nil {
			e.shipStats = stats
		}
		e.history.Add(CombatEvent{Type: EventResult, Node: e.node, Result: grade, ShipStats: append([]ShipDamageState(nil), e.shipStats...)})
		log.Info("combat: result", log.F("grade", grade), log.F("node", e.node))
	}
}

func (e *Engine) currentDecision() NodeDecision {
	return e.plan.GetNodeDecision(e.node)
}

// tryRecovery sleeps briefly then checks a single screenshot against the
// plan's end phase, used to recover from a stuck recognition wait.
func (e *Engine) tryRecovery(ctx context.Context) bool {
	log.Warn("combat: attempting recovery")
	time.Sleep(3 * time.Second)

	screen, err := e.Device.Screenshot(ctx)
	if err != nil {
		return false
	}
	endPhase := e.plan.EndPhase()
	if _, ok := e.Recognizer.IdentifyCurrent(screen, []CombatPhase{endPhase}); ok {
		e.phase = endPhase
		return true
	}
	return false
}

// CurrentNode returns the node the engine believes it is at.
func (e *Engine) CurrentNode() string { return e.node }

// History returns the engine's event history for the current Fight call.
func (e *Engine) History() *History { return &e.history }
