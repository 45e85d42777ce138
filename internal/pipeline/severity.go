package pipeline

import (
	"github.com/arcstats/demoaudit/internal/anomaly"
	"github.com/arcstats/demoaudit/internal/types"
)

// SeverityRule promotes a record to a severity level. Rules run in fixed
// order and a later rule overrides an earlier one; the percentile rule is
// applied independent of the outlier flag, so an inlier scoring below the
// cutoff is still promoted to SEVERE.
type SeverityRule struct {
	Name    string
	Level   string
	Applies func(rec *types.ScoredRecord, cutoff float64) bool
}

// severityRules is the fixed, ordered rule list.
func severityRules() []SeverityRule {
	return []SeverityRule{
		{
			Name:  "outlier_flag",
			Level: types.SeveritySuspicious,
			Applies: func(rec *types.ScoredRecord, _ float64) bool {
				return rec.MLFlag
			},
		},
		{
			Name:  "score_below_percentile",
			Level: types.SeveritySevere,
			Applies: func(rec *types.ScoredRecord, cutoff float64) bool {
				return rec.MLScore < cutoff
			},
		},
	}
}

// ClassifySeverity assigns exactly one severity to every record. The cutoff
// is the percentile of ml_score across the whole table, computed once.
func ClassifySeverity(records []types.ScoredRecord, percentile float64) {
	scores := make([]float64, len(records))
	for i := range records {
		scores[i] = records[i].MLScore
	}
	cutoff := anomaly.Quantile(scores, percentile)

	rules := severityRules()
	for i := range records {
		records[i].Severity = types.SeverityNormal
		for _, rule := range rules {
			if rule.Applies(&records[i], cutoff) {
				records[i].Severity = rule.Level
			}
		}
	}
}
