package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConditionRejectsUnknownOperator(t *testing.T) {
	_, err := NewCondition("BB", "~=", 1)
	require.Error(t, err)
}

func TestConditionEvaluateMissingFieldIsZero(t *testing.T) {
	c, err := NewCondition("CV", "==", 0)
	require.NoError(t, err)
	assert.True(t, c.Evaluate(map[string]float64{"BB": 3}))
}

func TestRuleEngineFirstMatchWins(t *testing.T) {
	engine := RuleEngine{
		Rules: []Rule{
			{Conditions: []Condition{{Field: "BB", Op: ">=", Value: 2}}, Action: RetreatRule()},
			{Conditions: []Condition{{Field: "BB", Op: ">=", Value: 1}}, Action: DetourRule()},
		},
		Default: NoActionRule(),
	}

	action := engine.Evaluate(map[string]float64{"BB": 3})
	assert.Equal(t, RuleRetreat, action.Result)
}

func TestRuleEngineFallsBackToDefault(t *testing.T) {
	engine := RuleEngine{
		Rules:   []Rule{{Conditions: []Condition{{Field: "BB", Op: ">=", Value: 2}}, Action: RetreatRule()}},
		Default: NoActionRule(),
	}
	action := engine.Evaluate(map[string]float64{"BB": 0})
	assert.Equal(t, RuleNoAction, action.Result)
}

func TestRuleConditionsAreANDed(t *testing.T) {
	rule := Rule{Conditions: []Condition{
		{Field: "BB", Op: ">=", Value: 2},
		{Field: "CV", Op: ">", Value: 0},
	}, Action: RetreatRule()}

	assert.False(t, rule.Evaluate(map[string]float64{"BB": 3, "CV": 0}))
	assert.True(t, rule.Evaluate(map[string]float64{"BB": 3, "CV": 1}))
}

func TestParseLegacyConditionRejectsUnknownShipType(t *testing.T) {
	_, err := ParseLegacyCondition("(XX >= 2)")
	require.Error(t, err)
	var parseErr *RuleParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseLegacyConditionRejectsEmptyString(t *testing.T) {
	_, err := ParseLegacyCondition("")
	require.Error(t, err)
}

func TestParseLegacyConditionParsesMultiplePieces(t *testing.T) {
	conds, err := ParseLegacyCondition("(BB >= 2) and (CV > 0)")
	require.NoError(t, err)
	require.Len(t, conds, 2)
	assert.Equal(t, "BB", conds[0].Field)
	assert.Equal(t, ">=", conds[0].Op)
	assert.Equal(t, 2.0, conds[0].Value)
	assert.Equal(t, "CV", conds[1].Field)
}

func TestParseLegacyConditionHasNoOrSupport(t *testing.T) {
	// There is no disjunction semantics anywhere: a condition string
	// containing the literal token "or" must be rejected outright, not
	// silently parsed as two AND-joined pieces.
	_, err := ParseLegacyCondition("BB >= 2 or CV >= 2")
	require.Error(t, err)

	var parseErr *RuleParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseActionValueRecognizesKeywordsAndFormations(t *testing.T) {
	r, err := ParseRuleItem("(BB >= 2) => retreat")
	require.NoError(t, err)
	assert.Equal(t, "retreat", r.Action)

	r, err = ParseRuleItem([]any{"(CV >= 1)", "detour"})
	require.NoError(t, err)
	assert.Equal(t, "(CV >= 1)", r.Condition)
	assert.Equal(t, "detour", r.Action)

	r, err = ParseRuleItem([]any{"(SS >= 1)", 3})
	require.NoError(t, err)
	assert.Equal(t, 3, r.Action)
}

func TestParseRuleItemDefaultsToRetreatForBareCondition(t *testing.T) {
	r, err := ParseRuleItem("(BB >= 2)")
	require.NoError(t, err)
	assert.Equal(t, "retreat", r.Action)
}

func TestParseRuleItemRejectsTooFewElements(t *testing.T) {
	_, err := ParseRuleItem([]any{"only one"})
	require.Error(t, err)
}

func TestParseLegacyRulesBuildsEvaluableEngine(t *testing.T) {
	engine, err := ParseLegacyRules([]LegacyRuleItem{
		{Condition: "(BB >= 2)", Action: "retreat"},
		{Condition: "(CV >= 1)", Action: "detour"},
	})
	require.NoError(t, err)

	action := engine.Evaluate(map[string]float64{"BB": 2})
	assert.Equal(t, RuleRetreat, action.Result)

	action = engine.Evaluate(map[string]float64{"CV": 1})
	assert.Equal(t, RuleDetour, action.Result)

	action = engine.Evaluate(map[string]float64{"BB": 0, "CV": 0})
	assert.Equal(t, RuleNoAction, action.Result)
}

func TestParseLegacyRulesPropagatesParseErrors(t *testing.T) {
	_, err := ParseLegacyRules([]LegacyRuleItem{{Condition: "(ZZ >= 2)", Action: "retreat"}})
	require.Error(t, err)
}

func TestParseFormationRulesMatchesByFormationName(t *testing.T) {
	engine, err := ParseFormationRules([]FormationRuleItem{
		{FormationName: "line_ahead", Action: "retreat"},
	})
	require.NoError(t, err)

	action := engine.EvaluateFormation("line_ahead")
	assert.Equal(t, RuleRetreat, action.Result)

	action = engine.EvaluateFormation("echelon")
	assert.Equal(t, RuleNoAction, action.Result)
}

func TestSetFormationRuleCarriesFormationValue(t *testing.T) {
	action := SetFormationRule(Formation(4))
	assert.Equal(t, RuleFormation, action.Result)
	assert.Equal(t, Formation(4), action.Formation)
}
