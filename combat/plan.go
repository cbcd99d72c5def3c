package combat

// CombatMode identifies which transition graph and end phase a
// CombatPlan uses.
type CombatMode string

const (
	ModeNormal   CombatMode = "normal"
	ModeBattle   CombatMode = "battle"
	ModeExercise CombatMode = "exercise"
)

var modeTransitions = map[CombatMode]Transitions{
	ModeNormal:   NormalFightTransitions,
	ModeBattle:   BattleTransitions,
	ModeExercise: ExerciseTransitions,
}

var modeEndPhases = map[CombatMode]CombatPhase{
	ModeNormal:   PhaseMapPage,
	ModeBattle:   PhaseBattlePage,
	ModeExercise: PhaseExercisePage,
}

// NodeDecision is one map node's tactical configuration: formation,
// night-battle policy, proceed rules, and the rule engines that react to
// observed enemy composition/formation.
type NodeDecision struct {
	Formation                  Formation
	Night                      bool
	Proceed                    bool
	ProceedStop                []RepairMode
	EnemyRules                 *RuleEngine
	FormationRules             *RuleEngine
	Detour                     bool
	LongMissileSupport         bool
	SLWhenSpotEnemyFails       bool
	SLWhenDetourFails          bool
	SLWhenEnterFight           bool
	FormationWhenSpotEnemyFails *Formation
}

// DefaultNodeDecision returns the decision original_source's
// NodeDecision dataclass defaults to when unconfigured.
func DefaultNodeDecision() NodeDecision {
	return NodeDecision{
		Formation:         FormationDoubleColumn,
		Proceed:           true,
		ProceedStop:       []RepairMode{RepairSevereDamage, RepairSevereDamage, RepairSevereDamage, RepairSevereDamage, RepairSevereDamage, RepairSevereDamage},
		SLWhenDetourFails: true,
	}
}

// CombatPlan is a complete engagement configuration: mode, map, repair
// policy, fight condition, the selected-node whitelist, and per-node
// decisions.
type CombatPlan struct {
	Name           string
	Mode           CombatMode
	Chapter        string
	MapID          string
	FleetID        int
	Fleet          []string
	RepairMode     []RepairMode
	FightCondition FightCondition
	SelectedNodes  []string
	Nodes          map[string]NodeDecision
	DefaultNode    NodeDecision
}

// NewCombatPlan constructs a plan with repairMode expanded to all six
// slots when a single value is given, mirroring the Python
// __post_init__ expansion.
func NewCombatPlan(name string, mode CombatMode, repairMode []RepairMode) CombatPlan {
	if len(repairMode) == 1 {
		rm := repairMode[0]
		repairMode = []RepairMode{rm, rm, rm, rm, rm, rm}
	}
	return CombatPlan{
		Name:        name,
		Mode:        mode,
		RepairMode:  repairMode,
		DefaultNode: DefaultNodeDecision(),
		Nodes:       map[string]NodeDecision{},
	}
}

// Transitions returns the transition graph for this plan's mode.
func (p *CombatPlan) Transitions() Transitions {
	return modeTransitions[p.Mode]
}

// EndPhase returns the terminal phase for this plan's mode.
func (p *CombatPlan) EndPhase() CombatPhase {
	return modeEndPhases[p.Mode]
}

// GetNodeDecision returns node's configured decision, or DefaultNode if
// unconfigured.
func (p *CombatPlan) GetNodeDecision(node string) NodeDecision {
	if d, ok := p.Nodes[node]; ok {
		return d
	}
	return p.DefaultNode
}

// IsSelectedNode reports whether node is allowed to fight. An empty
// SelectedNodes whitelist allows every node.
func (p *CombatPlan) IsSelectedNode(node string) bool {
	if len(p.SelectedNodes) == 0 {
		return true
	}
	for _, n := range p.SelectedNodes {
		if n == node {
			return true
		}
	}
	return false
}
