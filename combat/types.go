// Package combat implements the naval-combat state machine: phase
// transitions, the enemy-composition rule engine, visual phase
// recognition, fleet-position node tracking, and the engine that drives
// one complete engagement from a YAML CombatPlan.
package combat

// ShipDamageState is the per-slot damage reading used by proceed/repair
// decisions. -1 means the slot holds no ship.
type ShipDamageState int

const (
	ShipDamageNone     ShipDamageState = -1
	ShipDamageNormal   ShipDamageState = 0
	ShipDamageModerate ShipDamageState = 1
	ShipDamageSevere   ShipDamageState = 2
	ShipDamageRepair   ShipDamageState = 3
)

// RepairMode is the plan's repair-triggering policy.
type RepairMode int

const (
	RepairModerateDamage RepairMode = 1
	RepairSevereDamage   RepairMode = 2
	RepairRepairing      RepairMode = 3
)

// FightCondition is the pre-battle condition selection. Each value has a
// fixed relative click position on the fight-condition page.
type FightCondition int

const (
	FightSteadyAdvance     FightCondition = 1
	FightFirepowerForever  FightCondition = 2
	FightCaution           FightCondition = 3
	FightAim               FightCondition = 4
	FightSearchFormation   FightCondition = 5
)

var fightConditionPositions = map[FightCondition][2]float64{
	FightSteadyAdvance:    {0.215, 0.409},
	FightFirepowerForever: {0.461, 0.531},
	FightCaution:          {0.783, 0.362},
	FightAim:              {0.198, 0.764},
	FightSearchFormation:  {0.763, 0.740},
}

// RelativeClickPosition returns the (x, y) relative coordinate of this
// condition's button on the fight-condition page.
func (f FightCondition) RelativeClickPosition() (x, y float64) {
	p := fightConditionPositions[f]
	return p[0], p[1]
}

// Formation is the battle-formation selection. Button positions share a
// single column, spaced by value.
type Formation int

const (
	FormationSingleColumn    Formation = 1
	FormationDoubleColumn    Formation = 2
	FormationCircular        Formation = 3
	FormationWedge           Formation = 4
	FormationSingleHorizontal Formation = 5
)

// RelativePosition returns the formation button's relative coordinate.
func (f Formation) RelativePosition() (x, y float64) {
	return 0.597, float64(f)*0.185 - 0.037
}

// ConditionFlag is the combat loop's step/terminal status.
type ConditionFlag string

const (
	ConditionDockFull          ConditionFlag = "dock is full"
	ConditionFightEnd          ConditionFlag = "fight end"
	ConditionFightContinue     ConditionFlag = "fight continue"
	ConditionOperationSuccess  ConditionFlag = "success"
	ConditionBattleTimesExceed ConditionFlag = "out of times"
	ConditionSkipFight         ConditionFlag = "skip fight"
	ConditionSL                ConditionFlag = "SL"
)

// ShipType is a rule-engine condition field: one of the 22 ship-class
// tokens the game uses plus Other. Only the 22 class tokens are accepted
// by the rule parser — ParseLegacyCondition rejects any other identifier,
// a stricter check than the original Python implementation performed.
type ShipType string

const (
	ShipCV    ShipType = "CV"
	ShipCVL   ShipType = "CVL"
	ShipAV    ShipType = "AV"
	ShipBB    ShipType = "BB"
	ShipBBV   ShipType = "BBV"
	ShipBC    ShipType = "BC"
	ShipCA    ShipType = "CA"
	ShipCAV   ShipType = "CAV"
	ShipCLT   ShipType = "CLT"
	ShipCL    ShipType = "CL"
	ShipBM    ShipType = "BM"
	ShipDD    ShipType = "DD"
	ShipSSG   ShipType = "SSG"
	ShipSS    ShipType = "SS"
	ShipSC    ShipType = "SC"
	ShipNAP   ShipType = "NAP"
	ShipASDG  ShipType = "ASDG"
	ShipAADG  ShipType = "AADG"
	ShipKP    ShipType = "KP"
	ShipCG    ShipType = "CG"
	ShipCBG   ShipType = "CBG"
	ShipBG    ShipType = "BG"
	ShipOther ShipType = "Other"
)

// shipTypeWhitelist is the set of tokens ParseLegacyCondition accepts as
// a condition field, grounded on original_source's _SHIP_TYPE_PATTERN
// (which the Python implementation never validated against a whitelist
// post-match — the stricter check here is a deliberate hardening).
var shipTypeWhitelist = map[string]bool{
	"CV": true, "CVL": true, "AV": true, "BB": true, "BBV": true,
	"BC": true, "CA": true, "CAV": true, "CLT": true, "CL": true,
	"BM": true, "DD": true, "SSG": true, "SS": true, "SC": true,
	"NAP": true, "ASDG": true, "AADG": true, "KP": true, "CG": true,
	"CBG": true, "BG": true,
}

// CheckBlood reports whether the fleet may keep proceeding given its
// current damage states and the plan's per-slot proceed_stop rule.
// shipStats[i] is compared with proceedStop[i] for every slot both cover.
// ShipDamageNone and a rule value of -1 are both treated as "ignore this
// slot".
func CheckBlood(shipStats []ShipDamageState, proceedStop []RepairMode) bool {
	n := len(shipStats)
	if len(proceedStop) < n {
		n = len(proceedStop)
	}
	for i := 0; i < n; i++ {
		stat := shipStats[i]
		rule := proceedStop[i]
		if stat == ShipDamageNone || rule == -1 {
			continue
		}
		if int(stat) >= int(rule) {
			return false
		}
	}
	return true
}
