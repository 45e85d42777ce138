package pipeline

import (
	"sort"

	"github.com/arcstats/demoaudit/internal/types"
)

// BuildDistrictRisk ranks districts by mean impact over their SEVERE
// records. Districts without a SEVERE record do not appear. The dominant
// reason is the most frequent reason string; equally frequent reasons are
// broken lexicographically so the ranking is deterministic.
func BuildDistrictRisk(records []types.ScoredRecord) []types.DistrictRisk {
	type acc struct {
		count   int
		impact  float64
		reasons map[string]int
	}

	byDistrict := make(map[string]*acc)
	for i := range records {
		if records[i].Severity != types.SeveritySevere {
			continue
		}
		a, ok := byDistrict[records[i].District]
		if !ok {
			a = &acc{reasons: make(map[string]int)}
			byDistrict[records[i].District] = a
		}
		a.count++
		a.impact += records[i].ImpactScore
		a.reasons[records[i].Reason]++
	}

	ranking := make([]types.DistrictRisk, 0, len(byDistrict))
	for district, a := range byDistrict {
		ranking = append(ranking, types.DistrictRisk{
			District:       district,
			SevereCases:    a.count,
			AvgImpact:      a.impact / float64(a.count),
			DominantReason: dominantReason(a.reasons),
		})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].AvgImpact != ranking[j].AvgImpact {
			return ranking[i].AvgImpact > ranking[j].AvgImpact
		}
		return ranking[i].District < ranking[j].District
	})

	return ranking
}

func dominantReason(counts map[string]int) string {
	best := ""
	bestCount := -1
	for reason, count := range counts {
		if count > bestCount || (count == bestCount && reason < best) {
			best = reason
			bestCount = count
		}
	}
	return best
}

// BuildPolicyAlerts returns all SEVERE records sorted by impact score
// descending. The sort is stable so equal scores keep table order.
func BuildPolicyAlerts(records []types.ScoredRecord) []types.ScoredRecord {
	alerts := make([]types.ScoredRecord, 0)
	for i := range records {
		if records[i].Severity == types.SeveritySevere {
			alerts = append(alerts, records[i])
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].ImpactScore > alerts[j].ImpactScore
	})
	return alerts
}

// BuildEarlyWarningZones returns all early-warning records in table order.
func BuildEarlyWarningZones(records []types.ScoredRecord) []types.ScoredRecord {
	zones := make([]types.ScoredRecord, 0)
	for i := range records {
		if records[i].EarlyWarning {
			zones = append(zones, records[i])
		}
	}
	return zones
}
