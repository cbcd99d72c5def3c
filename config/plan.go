// Package config loads CombatPlan and map-node definitions from the YAML
// files operators author by hand, grounded on original_source's
// autowsgr/ui/map/data.py and combat/plan.py schema loaders.
package config

import (
	"fmt"
	"os"

	"github.com/autowsgr/helmsman/combat"
	"gopkg.in/yaml.v3"
)

// NodeFile is one node entry in a plan YAML's "nodes" map.
type NodeFile struct {
	Formation                  int      `yaml:"formation"`
	Night                      bool     `yaml:"night"`
	Proceed                    *bool    `yaml:"proceed"`
	ProceedStop                []int    `yaml:"proceed_stop"`
	EnemyRules                 []any    `yaml:"enemy_rules"`
	EnemyFormationRules        []any    `yaml:"enemy_formation_rules"`
	Detour                     bool     `yaml:"detour"`
	LongMissileSupport         bool     `yaml:"long_missile_support"`
	SLWhenSpotEnemyFails       bool     `yaml:"sl_when_spot_enemy_fails"`
	SLWhenDetourFails          *bool    `yaml:"sl_when_detour_fails"`
	FormationWhenSpotEnemyFails *int    `yaml:"formation_when_spot_enemy_fails"`
}

// PlanFile is the on-disk YAML shape of a complete combat plan.
type PlanFile struct {
	Name           string              `yaml:"name"`
	Mode           string              `yaml:"mode"`
	Chapter        string              `yaml:"chapter"`
	MapID          string              `yaml:"map_id"`
	FleetID        int                 `yaml:"fleet_id"`
	Fleet          []string            `yaml:"fleet"`
	RepairMode     []int               `yaml:"repair_mode"`
	FightCondition int                 `yaml:"fight_condition"`
	SelectedNodes  []string            `yaml:"selected_nodes"`
	Nodes          map[string]NodeFile `yaml:"nodes"`
}

// LoadPlan reads and builds a combat.CombatPlan from a YAML file at path.
func LoadPlan(path string) (combat.CombatPlan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return combat.CombatPlan{}, fmt.Errorf("config: read plan %s: %w", path, err)
	}
	return ParsePlan(raw)
}

// ParsePlan builds a combat.CombatPlan from YAML bytes.
func ParsePlan(raw []byte) (combat.CombatPlan, error) {
	var file PlanFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return combat.CombatPlan{}, fmt.Errorf("config: parse plan: %w", err)
	}

	mode := combat.CombatMode(file.Mode)
	if mode == "" {
		mode = combat.ModeNormal
	}

	repairMode := make([]combat.RepairMode, len(file.RepairMode))
	for i, v := range file.RepairMode {
		repairMode[i] = combat.RepairMode(v)
	}

	plan := combat.NewCombatPlan(file.Name, mode, repairMode)
	plan.Chapter = file.Chapter
	plan.MapID = file.MapID
	plan.FleetID = file.FleetID
	plan.Fleet = file.Fleet
	plan.FightCondition = combat.FightCondition(file.FightCondition)
	plan.SelectedNodes = file.SelectedNodes

	for name, nf := range file.Nodes {
		decision, err := nodeFileToDecision(nf)
		if err != nil {
			return combat.CombatPlan{}, fmt.Errorf("config: node %q: %w", name, err)
		}
		plan.Nodes[name] = decision
	}

	return plan, nil
}

func nodeFileToDecision(nf NodeFile) (combat.NodeDecision, error) {
	decision := combat.DefaultNodeDecision()

	if nf.Formation != 0 {
		decision.Formation = combat.Formation(nf.Formation)
	}
	decision.Night = nf.Night
	if nf.Proceed != nil {
		decision.Proceed = *nf.Proceed
	}
	if len(nf.ProceedStop) > 0 {
		stop := make([]combat.RepairMode, len(nf.ProceedStop))
		for i, v := range nf.ProceedStop {
			stop[i] = combat.RepairMode(v)
		}
		decision.ProceedStop = stop
	}
	decision.Detour = nf.Detour
	decision.LongMissileSupport = nf.LongMissileSupport
	decision.SLWhenSpotEnemyFails = nf.SLWhenSpotEnemyFails
	if nf.SLWhenDetourFails != nil {
		decision.SLWhenDetourFails = *nf.SLWhenDetourFails
	}
	if nf.FormationWhenSpotEnemyFails != nil {
		f := combat.Formation(*nf.FormationWhenSpotEnemyFails)
		decision.FormationWhenSpotEnemyFails = &f
	}

	if len(nf.EnemyRules) > 0 {
		items := make([]combat.LegacyRuleItem, 0, len(nf.EnemyRules))
		for _, raw := range nf.EnemyRules {
			item, err := combat.ParseRuleItem(raw)
			if err != nil {
				return decision, err
			}
			items = append(items, item)
		}
		engine, err := combat.ParseLegacyRules(items)
		if err != nil {
			return decision, err
		}
		decision.EnemyRules = &engine
	}

	if len(nf.EnemyFormationRules) > 0 {
		items := make([]combat.FormationRuleItem, 0, len(nf.EnemyFormationRules))
		for _, raw := range nf.EnemyFormationRules {
			pair, ok := raw.([]any)
			if !ok || len(pair) < 2 {
				return decision, fmt.Errorf("combat: formation rule item must be a 2-element list, got %v", raw)
			}
			name, ok := pair[0].(string)
			if !ok {
				return decision, fmt.Errorf("combat: formation rule name must be a string")
			}
			items = append(items, combat.FormationRuleItem{FormationName: name, Action: pair[1]})
		}
		engine, err := combat.ParseFormationRules(items)
		if err != nil {
			return decision, err
		}
		decision.FormationRules = &engine
	}

	return decision, nil
}
