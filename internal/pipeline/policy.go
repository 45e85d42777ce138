package pipeline

import "github.com/arcstats/demoaudit/internal/types"

// policyRule maps an impact threshold to a recommended action.
type policyRule struct {
	Threshold float64
	Action    string
}

// policyRules returns the threshold map in descending order; boundaries are
// exclusive-above and the first match wins.
func policyRules(p Params) []policyRule {
	return []policyRule{
		{Threshold: p.PolicyImmediate, Action: types.ActionImmediateAudit},
		{Threshold: p.PolicyInvestigate, Action: types.ActionInvestigation},
		{Threshold: p.PolicyMonitor, Action: types.ActionMonitor},
	}
}

// RecommendAction maps an impact score to one of the four fixed actions.
func RecommendAction(impactScore float64, p Params) string {
	for _, rule := range policyRules(p) {
		if impactScore > rule.Threshold {
			return rule.Action
		}
	}
	return types.ActionNone
}

// ApplyPolicy fills the recommended_action column.
func ApplyPolicy(records []types.ScoredRecord, p Params) {
	for i := range records {
		records[i].RecommendedAction = RecommendAction(records[i].ImpactScore, p)
	}
}
