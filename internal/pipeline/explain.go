package pipeline

import (
	"math"
	"strings"

	"github.com/arcstats/demoaudit/internal/types"
)

// fallbackReason is used when no rule triggers; the reason column is never
// empty.
const fallbackReason = "Multi-factor deviation"

// ReasonRule labels a record from its feature values only, independent of
// the model internals.
type ReasonRule struct {
	Label   string
	Applies func(rec *types.Record, p Params) bool
}

// reasonRules is the fixed check order; all matching labels are joined.
func reasonRules() []ReasonRule {
	return []ReasonRule{
		{
			Label: "Youth-heavy population",
			Applies: func(rec *types.Record, p Params) bool {
				return rec.YouthRatio > p.YouthHeavyThreshold
			},
		},
		{
			Label: "Ageing population",
			Applies: func(rec *types.Record, p Params) bool {
				return rec.YouthRatio < p.AgeingThreshold
			},
		},
		{
			Label: "Sudden demographic shock",
			Applies: func(rec *types.Record, p Params) bool {
				return math.Abs(rec.ShockScore) > p.ShockReasonLimit
			},
		},
		{
			Label: "Large population swing",
			Applies: func(rec *types.Record, p Params) bool {
				return math.Abs(rec.PopChange) > p.SwingFraction*rec.TotalPopulation
			},
		},
	}
}

// Explain derives the human-readable reason string for one record.
func Explain(rec *types.Record, p Params) string {
	var reasons []string
	for _, rule := range reasonRules() {
		if rule.Applies(rec, p) {
			reasons = append(reasons, rule.Label)
		}
	}
	if len(reasons) == 0 {
		return fallbackReason
	}
	return strings.Join(reasons, "; ")
}

// ExplainAll fills the reason column for the whole table.
func ExplainAll(records []types.ScoredRecord, p Params) {
	for i := range records {
		records[i].Reason = Explain(&records[i].Record, p)
	}
}
