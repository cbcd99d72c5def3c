package combat

import (
	"context"
	"fmt"
	"time"

	"github.com/autowsgr/helmsman/log"
)

// InvalidDecisionError is returned when a rule or node configuration
// demands an action the current screen does not support — e.g. a Detour
// action fired by a rule at a node whose detour button isn't visible.
type InvalidDecisionError struct {
	Phase CombatPhase
	Msg   string
}

func (e *InvalidDecisionError) Error() string {
	return fmt.Sprintf("combat: invalid decision at phase %s: %s", e.Phase, e.Msg)
}

// resultTapGap is the fixed delay between the Result phase's two taps.
// Whether this is a strict protocol requirement or a reliability heuristic
// is undocumented upstream; this module preserves the two-click behavior
// unconditionally rather than collapsing it to one.
const resultTapGap = 250 * time.Millisecond

// makeDecision dispatches to the per-phase handler for phase and returns
// the step's outcome.
func (e *Engine) makeDecision(ctx context.Context, phase CombatPhase) (ConditionFlag, error) {
	switch phase {
	case PhaseSpotEnemySuccess:
		return e.decideSpotEnemy(ctx)
	case PhaseFormation:
		return e.decideFormation(ctx)
	case PhaseFightCondition:
		return e.decideFightCondition(ctx)
	case PhaseNightPrompt:
		return e.decideNightPrompt(ctx)
	case PhaseResult:
		return e.decideResult(ctx)
	case PhaseProceed:
		return e.decideProceed(ctx)
	case PhaseFlagshipSevereDamage:
		return e.decideFlagshipSevere(ctx)
	case PhaseMissileAnimation:
		return e.decideMissileAnimation(ctx)
	case PhaseGetShip:
		return e.decideGetShip(ctx)
	case PhaseMapPage, PhaseBattlePage, PhaseExercisePage:
		return e.decideTerminal(ctx, phase)
	case PhaseFightPeriod:
		// Pure transit phase: the recognizer's candidate list always moves
		// straight through it to the next legal phase, nothing to decide.
		return ConditionFightContinue, nil
	default:
		return "", &UnknownPhaseError{Phase: phase}
	}
}

// decideSpotEnemy is the critical decision point: whitelist check, detour
// eligibility, enemy-formation/composition rule evaluation (formation
// rules take precedence), then fight/detour/retreat.
func (e *Engine) decideSpotEnemy(ctx context.Context) (ConditionFlag, error) {
	node := e.currentDecision()

	if !e.plan.IsSelectedNode(e.node) {
		log.Info("combat: node not selected, retreating", log.F("node", e.node))
		if err := e.Actions.ClickRetreat(ctx); err != nil {
			return "", err
		}
		e.lastAct = "retreat"
		e.history.Add(CombatEvent{Type: EventSpotEnemy, Node: e.node, Action: "retreat", Enemies: e.enemies})
		return ConditionFightEnd, nil
	}

	canDetour := e.Actions.ImageExists(ctx, "detour", 0.8)
	wantDetour := canDetour && node.Detour

	action := e.evaluateEnemyAction(node)

	switch action.Result {
	case RuleRetreat:
		log.Info("combat: rule retreat", log.F("node", e.node))
		if err := e.Actions.ClickRetreat(ctx); err != nil {
			return "", err
		}
		e.lastAct = "retreat"
		e.history.Add(CombatEvent{Type: EventSpotEnemy, Node: e.node, Action: "retreat", Enemies: e.enemies})
		return ConditionFightEnd, nil
	case RuleDetour:
		if !canDetour {
			return "", &InvalidDecisionError{Phase: PhaseSpotEnemySuccess, Msg: "rule requested detour but the detour button is not visible"}
		}
		wantDetour = true
	case RuleFormation:
		f := action.Formation
		e.formationByRule = &f
	}

	if wantDetour {
		if _, err := e.Actions.ClickImage(ctx, "detour", 5*time.Second); err != nil {
			return "", err
		}
		e.lastAct = "detour"
		e.history.Add(CombatEvent{Type: EventDetour, Node: e.node, Enemies: e.enemies})
		return ConditionFightContinue, nil
	}

	if node.LongMissileSupport {
		if ok, err := e.Actions.ClickImage(ctx, "missile_support", 3*time.Second); err != nil {
			return "", err
		} else if !ok {
			log.Warn("combat: long missile support requested but button not found", log.F("node", e.node))
		}
	}

	if err := e.Actions.ClickEnterFight(ctx); err != nil {
		return "", err
	}
	e.lastAct = "fight"
	e.history.Add(CombatEvent{Type: EventSpotEnemy, Node: e.node, Action: "fight", Enemies: e.enemies})
	return ConditionFightContinue, nil
}

// evaluateEnemyAction evaluates formation rules first (higher priority),
// falling through to composition rules when formation rules are absent or
// yield NoAction.
func (e *Engine) evaluateEnemyAction(node NodeDecision) RuleAction {
	if node.FormationRules != nil {
		if action := node.FormationRules.EvaluateFormation(e.enemyFormation); action.Result != RuleNoAction {
			return action
		}
	}
	if node.EnemyRules != nil {
		context := make(map[string]float64, len(e.enemies))
		for k, v := range e.enemies {
			context[k] = float64(v)
		}
		return node.EnemyRules.Evaluate(context)
	}
	return NoActionRule()
}

// decideFightCondition clicks the plan's whole-engagement fight-condition
// choice unconditionally; it is not rule-decided per node.
func (e *Engine) decideFightCondition(ctx context.Context) (ConditionFlag, error) {
	if err := e.Actions.ClickFightCondition(ctx, e.plan.FightCondition); err != nil {
		return "", err
	}
	e.history.Add(CombatEvent{Type: EventFightCondition, Node: e.node})
	return ConditionFightContinue, nil
}

// decideFormation picks the formation to use. A detour that failed to
// advance (last action "detour") ends in SL when the node's
// SLWhenDetourFails is set, and otherwise uses the node's formation. A
// rule-stashed override from SpotEnemy takes priority; otherwise, if
// SpotEnemy was skipped entirely (the last action is neither "fight" nor
// "detour"), the node's spot-enemy-fail policy governs.
func (e *Engine) decideFormation(ctx context.Context) (ConditionFlag, error) {
	node := e.currentDecision()

	if e.lastAct == "detour" {
		if node.SLWhenDetourFails {
			log.Warn("combat: detour failed to advance past this node, SL", log.F("node", e.node))
			return ConditionSL, nil
		}
	}

	var formation Formation
	if e.formationByRule != nil {
		formation = *e.formationByRule
		e.formationByRule = nil
	} else if e.lastAct != "fight" && e.lastAct != "detour" {
		// Reached Formation without having passed through SpotEnemy at all.
		if node.SLWhenSpotEnemyFails {
			log.Warn("combat: spot-enemy recognition was skipped, SL", log.F("node", e.node))
			return ConditionSL, nil
		}
		if node.FormationWhenSpotEnemyFails != nil {
			formation = *node.FormationWhenSpotEnemyFails
		} else {
			formation = node.Formation
		}
	} else {
		formation = node.Formation
	}

	if err := e.Actions.ClickFormation(ctx, formation); err != nil {
		return "", err
	}
	e.lastAct = fmt.Sprint(int(formation))
	e.history.Add(CombatEvent{Type: EventFormation, Node: e.node, Action: e.lastAct})
	return ConditionFightContinue, nil
}

// decideNightPrompt clicks pursue/retreat per the node's night-battle
// policy.
func (e *Engine) decideNightPrompt(ctx context.Context) (ConditionFlag, error) {
	node := e.currentDecision()
	pursue := node.Night
	if err := e.Actions.ClickNightBattle(ctx, pursue); err != nil {
		return "", err
	}
	if pursue {
		e.lastAct = "yes"
	} else {
		e.lastAct = "no"
	}
	e.history.Add(CombatEvent{Type: EventNightBattle, Node: e.node, Action: e.lastAct})
	return ConditionFightContinue, nil
}

// decideResult waits briefly for the result animation, then taps the
// result area twice 0.25s apart: once to dismiss the animation, once to
// advance past the result panel.
func (e *Engine) decideResult(ctx context.Context) (ConditionFlag, error) {
	time.Sleep(1 * time.Second)
	if err := e.Actions.ClickResult(ctx); err != nil {
		return "", err
	}
	time.Sleep(resultTapGap)
	if err := e.Actions.ClickResult(ctx); err != nil {
		return "", err
	}
	return ConditionFightContinue, nil
}

// decideProceed evaluates whether the fleet may keep advancing: node must
// allow it and every slot's damage must stay below the node's
// proceed_stop thresholds.
func (e *Engine) decideProceed(ctx context.Context) (ConditionFlag, error) {
	e.nodeCount++
	node := e.currentDecision()

	shouldProceed := node.Proceed && CheckBlood(e.shipStats, node.ProceedStop)

	if shouldProceed {
		if err := e.Actions.ClickProceed(ctx, true); err != nil {
			return "", err
		}
		e.lastAct = "yes"
		e.history.Add(CombatEvent{Type: EventProceed, Node: e.node, Action: "yes"})
		return ConditionFightContinue, nil
	}

	if err := e.Actions.ClickProceed(ctx, false); err != nil {
		return "", err
	}
	e.lastAct = "no"
	e.history.Add(CombatEvent{Type: EventProceed, Node: e.node, Action: "no"})
	return ConditionFightEnd, nil
}

// decideFlagshipSevere confirms the flagship-severely-damaged dialog and
// ends the fight.
func (e *Engine) decideFlagshipSevere(ctx context.Context) (ConditionFlag, error) {
	if ok, err := e.Actions.ClickImage(ctx, "flagship_severe_confirm", 5*time.Second); err != nil {
		return "", err
	} else if !ok {
		log.Warn("combat: flagship-severe confirm button not found", log.F("node", e.node))
	}
	e.history.Add(CombatEvent{Type: EventFlagshipDamage, Node: e.node, ShipStats: append([]ShipDamageState(nil), e.shipStats...)})
	return ConditionFightEnd, nil
}

// decideMissileAnimation skips the long-missile-support animation, which
// upstream requires two taps to clear.
func (e *Engine) decideMissileAnimation(ctx context.Context) (ConditionFlag, error) {
	if err := e.Actions.ClickSkipMissileAnimation(ctx); err != nil {
		return "", err
	}
	if err := e.Actions.ClickSkipMissileAnimation(ctx); err != nil {
		return "", err
	}
	return ConditionFightContinue, nil
}

// decideGetShip records the dropped ship's name (read via OCR by
// Actions.GetShipDrop) and advances past the drop screen.
func (e *Engine) decideGetShip(ctx context.Context) (ConditionFlag, error) {
	name, err := e.Actions.GetShipDrop(ctx)
	if err != nil {
		log.Warn("combat: ship drop OCR failed", log.F("error", err.Error()))
	}
	e.history.Add(CombatEvent{Type: EventGetShip, Node: e.node, Result: name})
	if err := e.Actions.ClickResult(ctx); err != nil {
		return "", err
	}
	return ConditionFightContinue, nil
}

// decideTerminal records auto-return and ends the fight successfully; it
// handles whichever of MapPage/BattlePage/ExercisePage matches plan.EndPhase.
func (e *Engine) decideTerminal(ctx context.Context, phase CombatPhase) (ConditionFlag, error) {
	e.history.Add(CombatEvent{Type: EventAutoReturn, Node: e.node, Result: phase.String()})
	return ConditionFightEnd, nil
}
