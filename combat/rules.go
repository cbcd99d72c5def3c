package combat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/autowsgr/helmsman/log"
)

// RuleParseError is returned when a legacy rule string cannot be parsed
// into Conditions, or uses a field outside the ship-type whitelist.
type RuleParseError struct {
	Input string
	Msg   string
}

func (e *RuleParseError) Error() string {
	return fmt.Sprintf("combat: cannot parse rule %q: %s", e.Input, e.Msg)
}

// RuleResult is the outcome of evaluating a Rule.
type RuleResult int

const (
	RuleNoAction RuleResult = iota
	RuleRetreat
	RuleDetour
	RuleFormation
)

// RuleAction is the concrete action a matched Rule produces.
type RuleAction struct {
	Result    RuleResult
	Formation Formation
}

func NoActionRule() RuleAction       { return RuleAction{Result: RuleNoAction} }
func RetreatRule() RuleAction        { return RuleAction{Result: RuleRetreat} }
func DetourRule() RuleAction         { return RuleAction{Result: RuleDetour} }
func SetFormationRule(f Formation) RuleAction {
	return RuleAction{Result: RuleFormation, Formation: f}
}

// operators is the strict whitelist of comparison operators a Condition
// may use. No `eval`-equivalent dynamic expression dispatch backs this
// engine anywhere — every condition is one of these six comparisons.
var operators = map[string]func(a, b float64) bool{
	">":  func(a, b float64) bool { return a > b },
	">=": func(a, b float64) bool { return a >= b },
	"<":  func(a, b float64) bool { return a < b },
	"<=": func(a, b float64) bool { return a <= b },
	"==": func(a, b float64) bool { return a == b },
	"!=": func(a, b float64) bool { return a != b },
}

// Condition is a single field/operator/value comparison.
type Condition struct {
	Field string
	Op    string
	Value float64
}

// NewCondition validates op against the operator whitelist before
// constructing the Condition.
func NewCondition(field, op string, value float64) (Condition, error) {
	if _, ok := operators[op]; !ok {
		return Condition{}, fmt.Errorf("combat: unsupported operator %q", op)
	}
	return Condition{Field: field, Op: op, Value: value}, nil
}

// Evaluate reports whether this condition holds against context, an
// enemy-composition or formation-probe map. A missing field counts as 0.
func (c Condition) Evaluate(context map[string]float64) bool {
	actual := context[c.Field]
	return operators[c.Op](actual, c.Value)
}

// Rule is a set of AND-joined Conditions paired with the action to take
// when all of them hold. There is no OR support, by design — an
// enemy-rule list with an "or" requirement is expressed as two rules
// instead.
type Rule struct {
	Conditions []Condition
	Action     RuleAction
}

// Evaluate reports whether every condition in the rule holds.
func (r Rule) Evaluate(context map[string]float64) bool {
	for _, c := range r.Conditions {
		if !c.Evaluate(context) {
			return false
		}
	}
	return true
}

// RuleEngine evaluates an ordered list of Rules against a context,
// returning the first match's action or Default if none match.
type RuleEngine struct {
	Rules   []Rule
	Default RuleAction
}

// Evaluate returns the action of the first matching rule, or e.Default.
func (e RuleEngine) Evaluate(context map[string]float64) RuleAction {
	for _, r := range e.Rules {
		if r.Evaluate(context) {
			log.Debug("combat: rule hit", log.F("result", int(r.Action.Result)))
			return r.Action
		}
	}
	return e.Default
}

// EvaluateFormation evaluates the formation-name rules: each condition
// was built from a synthetic "_formation:<name>" field set to 1 when the
// observed enemy formation equals <name>.
func (e RuleEngine) EvaluateFormation(enemyFormation string) RuleAction {
	context := map[string]float64{"_formation:" + enemyFormation: 1}
	return e.Evaluate(context)
}

// conditionPieceRe matches one "FIELD OP VALUE" group, e.g. "BB >= 2".
var conditionPieceRe = regexp.MustCompile(`([A-Z]{2,4})\s*(>=|<=|>|<|==|!=)\s*(\d+(?:\.\d+)?)`)

// orTokenRe matches a standalone "or" token, case-insensitively, so
// "BB >= 2 or CV >= 2" is rejected rather than silently parsed as two
// AND-joined conditions.
var orTokenRe = regexp.MustCompile(`(?i)\bor\b`)

// ParseLegacyCondition parses a legacy condition string such as
// "(BB >= 2) and (CV > 0)" into AND-joined Conditions. Unlike the
// original Python regex (which accepted any 2-4 uppercase-letter run),
// every field extracted here is checked against the ship-type
// whitelist — a deliberate hardening this module's security invariant
// requires, since these strings originate from user-editable YAML.
// There is no OR support: a condition string containing the literal
// token "or" is rejected outright rather than silently parsed as two
// AND-joined pieces.
func ParseLegacyCondition(conditionStr string) ([]Condition, error) {
	if orTokenRe.MatchString(conditionStr) {
		return nil, &RuleParseError{Input: conditionStr, Msg: "\"or\" is not supported, express this as two separate rules"}
	}
	// Outside the condition pieces only parentheses, whitespace and the
	// "and" joiner may appear; an unknown operator or stray token is an
	// error rather than silently dropped.
	rest := conditionPieceRe.ReplaceAllString(conditionStr, " ")
	rest = strings.NewReplacer("(", " ", ")", " ").Replace(rest)
	for _, tok := range strings.Fields(rest) {
		if tok != "and" {
			return nil, &RuleParseError{Input: conditionStr, Msg: fmt.Sprintf("unexpected token %q", tok)}
		}
	}
	matches := conditionPieceRe.FindAllStringSubmatch(conditionStr, -1)
	if len(matches) == 0 {
		return nil, &RuleParseError{Input: conditionStr, Msg: "no condition pieces found"}
	}
	conditions := make([]Condition, 0, len(matches))
	for _, m := range matches {
		field, op, valueStr := m[1], m[2], m[3]
		if field != "total" && !shipTypeWhitelist[field] {
			return nil, &RuleParseError{Input: conditionStr, Msg: fmt.Sprintf("field %q is not a recognized ship type", field)}
		}
		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, &RuleParseError{Input: conditionStr, Msg: err.Error()}
		}
		cond, err := NewCondition(field, op, value)
		if err != nil {
			return nil, &RuleParseError{Input: conditionStr, Msg: err.Error()}
		}
		conditions = append(conditions, cond)
	}
	return conditions, nil
}

// parseActionValue converts a legacy action value ("retreat", "detour",
// or a formation number 1-5 as either an int or a numeric string) into a
// RuleAction.
func parseActionValue(actionValue any) (RuleAction, error) {
	switch v := actionValue.(type) {
	case int:
		return SetFormationRule(Formation(v)), nil
	case float64:
		return SetFormationRule(Formation(int(v))), nil
	case string:
		lower := strings.ToLower(strings.TrimSpace(v))
		switch lower {
		case "retreat":
			return RetreatRule(), nil
		case "detour":
			return DetourRule(), nil
		}
		if n, err := strconv.Atoi(lower); err == nil {
			return SetFormationRule(Formation(n)), nil
		}
	}
	return RuleAction{}, fmt.Errorf("combat: unrecognized action value %v", actionValue)
}

// LegacyRuleItem is one [condition, action] pair from the legacy
// enemy_rules YAML list.
type LegacyRuleItem struct {
	Condition string
	Action    any
}

// ParseLegacyRules builds a RuleEngine from the legacy enemy_rules
// format: a list of [condition_str, action] pairs evaluated in order.
func ParseLegacyRules(items []LegacyRuleItem) (RuleEngine, error) {
	rules := make([]Rule, 0, len(items))
	for _, item := range items {
		conditions, err := ParseLegacyCondition(item.Condition)
		if err != nil {
			return RuleEngine{}, err
		}
		action, err := parseActionValue(item.Action)
		if err != nil {
			return RuleEngine{}, err
		}
		rules = append(rules, Rule{Conditions: conditions, Action: action})
	}
	return RuleEngine{Rules: rules, Default: NoActionRule()}, nil
}

// FormationRuleItem is one [formation_name, action] pair from the legacy
// enemy_formation_rules YAML list.
type FormationRuleItem struct {
	FormationName string
	Action        any
}

// ParseFormationRules builds a RuleEngine from the legacy
// enemy_formation_rules format: rules matched against the observed enemy
// formation name rather than ship-type counts.
func ParseFormationRules(items []FormationRuleItem) (RuleEngine, error) {
	rules := make([]Rule, 0, len(items))
	for _, item := range items {
		action, err := parseActionValue(item.Action)
		if err != nil {
			return RuleEngine{}, err
		}
		cond := Condition{Field: "_formation:" + item.FormationName, Op: "==", Value: 1}
		rules = append(rules, Rule{Conditions: []Condition{cond}, Action: action})
	}
	return RuleEngine{Rules: rules, Default: NoActionRule()}, nil
}

// ParseRuleItem parses one enemy_rules YAML entry, supporting both the
// "condition => action" arrow form and the two-element list form,
// grounded on original_source's plan.py:_parse_rule_item.
func ParseRuleItem(raw any) (LegacyRuleItem, error) {
	switch v := raw.(type) {
	case string:
		if idx := strings.Index(v, "=>"); idx >= 0 {
			cond := strings.TrimSpace(v[:idx])
			action := strings.TrimSpace(v[idx+2:])
			return LegacyRuleItem{Condition: cond, Action: action}, nil
		}
		return LegacyRuleItem{Condition: v, Action: "retreat"}, nil
	case []any:
		if len(v) < 2 {
			return LegacyRuleItem{}, fmt.Errorf("combat: rule item needs at least 2 elements, got %d", len(v))
		}
		cond, ok := v[0].(string)
		if !ok {
			return LegacyRuleItem{}, fmt.Errorf("combat: rule condition must be a string")
		}
		return LegacyRuleItem{Condition: cond, Action: v[1]}, nil
	default:
		return LegacyRuleItem{}, fmt.Errorf("combat: cannot parse rule item %v", raw)
	}
}
