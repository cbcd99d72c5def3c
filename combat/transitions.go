package combat

// CombatPhase is a discrete state in the combat state machine.
type CombatPhase int

const (
	PhaseProceed CombatPhase = iota
	PhaseFightCondition
	PhaseSpotEnemySuccess
	PhaseFormation
	PhaseMissileAnimation
	PhaseFightPeriod
	PhaseNightPrompt
	PhaseResult
	PhaseGetShip
	PhaseFlagshipSevereDamage
	PhaseMapPage
	PhaseBattlePage
	PhaseExercisePage
)

var phaseNames = map[CombatPhase]string{
	PhaseProceed:              "Proceed",
	PhaseFightCondition:       "FightCondition",
	PhaseSpotEnemySuccess:     "SpotEnemySuccess",
	PhaseFormation:            "Formation",
	PhaseMissileAnimation:     "MissileAnimation",
	PhaseFightPeriod:          "FightPeriod",
	PhaseNightPrompt:          "NightPrompt",
	PhaseResult:               "Result",
	PhaseGetShip:              "GetShip",
	PhaseFlagshipSevereDamage: "FlagshipSevereDamage",
	PhaseMapPage:              "MapPage",
	PhaseBattlePage:           "BattlePage",
	PhaseExercisePage:         "ExercisePage",
}

func (p CombatPhase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "Unknown"
}

// PhaseTarget is a transition successor: a phase, optionally carrying a
// timeout override (nil means "use the recognizer's default").
type PhaseTarget struct {
	Phase          CombatPhase
	TimeoutOverride *float64
}

func target(p CombatPhase) PhaseTarget { return PhaseTarget{Phase: p} }

func targetWithTimeout(p CombatPhase, timeout float64) PhaseTarget {
	return PhaseTarget{Phase: p, TimeoutOverride: &timeout}
}

// PhaseBranch is either an unconditional successor list or a set of
// successor lists keyed by the last action taken.
type PhaseBranch struct {
	Unconditional []PhaseTarget
	ByAction      map[string][]PhaseTarget
}

func unconditional(targets ...PhaseTarget) PhaseBranch {
	return PhaseBranch{Unconditional: targets}
}

func byAction(m map[string][]PhaseTarget) PhaseBranch {
	return PhaseBranch{ByAction: m}
}

// Transitions is a per-phase map of legal successors for one combat mode.
type Transitions map[CombatPhase]PhaseBranch

// NormalFightTransitions is the state graph for a multi-node map
// engagement, grounded on original_source's NORMAL_FIGHT_TRANSITIONS.
var NormalFightTransitions = Transitions{
	PhaseProceed: byAction(map[string][]PhaseTarget{
		"yes": {
			target(PhaseFightCondition),
			target(PhaseSpotEnemySuccess),
			target(PhaseFormation),
			target(PhaseFightPeriod),
			target(PhaseMapPage),
		},
		"no": {target(PhaseMapPage)},
	}),
	PhaseFightCondition: unconditional(
		target(PhaseSpotEnemySuccess),
		target(PhaseFormation),
		target(PhaseFightPeriod),
	),
	PhaseSpotEnemySuccess: byAction(map[string][]PhaseTarget{
		"detour": {
			target(PhaseFightCondition),
			target(PhaseSpotEnemySuccess),
			target(PhaseFormation),
			target(PhaseFightPeriod),
		},
		"retreat": {target(PhaseMapPage)},
		"fight": {
			target(PhaseFormation),
			target(PhaseFightPeriod),
			target(PhaseMissileAnimation),
		},
	}),
	PhaseFormation: unconditional(
		target(PhaseFightPeriod),
		target(PhaseMissileAnimation),
	),
	PhaseMissileAnimation: unconditional(
		target(PhaseFightPeriod),
		target(PhaseResult),
	),
	PhaseFightPeriod: unconditional(
		target(PhaseNightPrompt),
		target(PhaseResult),
	),
	PhaseNightPrompt: byAction(map[string][]PhaseTarget{
		"yes": {target(PhaseResult)},
		"no":  {targetWithTimeout(PhaseResult, 10.0)},
	}),
	PhaseResult: unconditional(
		target(PhaseProceed),
		target(PhaseMapPage),
		target(PhaseGetShip),
		target(PhaseFlagshipSevereDamage),
	),
	PhaseGetShip: unconditional(
		target(PhaseProceed),
		target(PhaseMapPage),
		target(PhaseFlagshipSevereDamage),
	),
	PhaseFlagshipSevereDamage: unconditional(target(PhaseMapPage)),
}

// BattleTransitions is the state graph for a single-node battle/event
// engagement, grounded on original_source's BATTLE_TRANSITIONS.
var BattleTransitions = Transitions{
	PhaseProceed: unconditional(
		target(PhaseSpotEnemySuccess),
		target(PhaseFormation),
		target(PhaseFightPeriod),
	),
	PhaseSpotEnemySuccess: byAction(map[string][]PhaseTarget{
		"retreat": {target(PhaseBattlePage)},
		"fight":   {target(PhaseFormation), target(PhaseFightPeriod)},
	}),
	PhaseFormation: unconditional(target(PhaseFightPeriod)),
	PhaseFightPeriod: unconditional(
		target(PhaseNightPrompt),
		target(PhaseResult),
	),
	PhaseNightPrompt: byAction(map[string][]PhaseTarget{
		"yes": {target(PhaseResult)},
		"no":  {targetWithTimeout(PhaseResult, 7.0)},
	}),
	PhaseResult: unconditional(target(PhaseBattlePage)),
}

// ExerciseTransitions is the state graph for a practice engagement,
// grounded on original_source's EXERCISE_TRANSITIONS.
var ExerciseTransitions = Transitions{
	PhaseProceed: unconditional(
		target(PhaseSpotEnemySuccess),
		target(PhaseFormation),
		target(PhaseFightPeriod),
	),
	PhaseSpotEnemySuccess: unconditional(
		target(PhaseFormation),
		target(PhaseFightPeriod),
	),
	PhaseFormation: unconditional(target(PhaseFightPeriod)),
	PhaseFightPeriod: unconditional(
		target(PhaseNightPrompt),
		target(PhaseResult),
	),
	PhaseNightPrompt: byAction(map[string][]PhaseTarget{
		"yes": {target(PhaseResult)},
		"no":  {targetWithTimeout(PhaseResult, 7.0)},
	}),
	PhaseResult: unconditional(target(PhaseExercisePage)),
}

// UnknownPhaseError is returned when ResolveSuccessors is asked about a
// phase absent from the transition graph (the Python original raises
// KeyError for the same case).
type UnknownPhaseError struct {
	Phase CombatPhase
}

func (e *UnknownPhaseError) Error() string {
	return "combat: phase " + e.Phase.String() + " has no entry in the transition graph"
}

// ResolveSuccessors resolves the candidate successors for phase given
// the last action taken. For an action-keyed branch, an unrecognized
// lastAction falls back to the branch's first entry (in map iteration
// order this is non-deterministic in Go; callers relying on the
// fallback should therefore always populate ByAction with actions the
// recognizer actually produces — see node transitions above, all of
// which define it explicitly) rather than erroring, matching the
// original's `next(iter(branch.values()))` fallback.
func ResolveSuccessors(transitions Transitions, phase CombatPhase, lastAction string) ([]PhaseTarget, error) {
	branch, ok := transitions[phase]
	if !ok {
		return nil, &UnknownPhaseError{Phase: phase}
	}
	if branch.ByAction == nil {
		return branch.Unconditional, nil
	}
	if targets, ok := branch.ByAction[lastAction]; ok {
		return targets, nil
	}
	return branch.firstByActionValue(), nil
}

// firstByActionValue returns some value from ByAction. Because the
// fallback case is only reached for malformed/unexpected action names
// and the original Python dict preserves insertion order while Go maps
// do not, branches that rely on this fallback mattering should be
// avoided; it exists purely to preserve parity with the original
// semantics rather than erroring out.
func (b PhaseBranch) firstByActionValue() []PhaseTarget {
	for _, v := range b.ByAction {
		return v
	}
	return nil
}
