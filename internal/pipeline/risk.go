package pipeline

import (
	"math"

	"github.com/arcstats/demoaudit/internal/types"
)

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round3(x float64) float64 { return math.Round(x*1000) / 1000 }

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// ComputeConfidence normalizes ml_score by its run-wide maximum, rounded to
// 3 decimals. This is a normalized positional measure: the least-anomalous
// record defines the denominator. A zero maximum is a degenerate case
// defined as 0 for every record.
func ComputeConfidence(records []types.ScoredRecord) {
	if len(records) == 0 {
		return
	}
	max := records[0].MLScore
	for i := range records[1:] {
		if records[i+1].MLScore > max {
			max = records[i+1].MLScore
		}
	}
	for i := range records {
		if max == 0 {
			records[i].Confidence = 0
			continue
		}
		records[i].Confidence = round3(records[i].MLScore / max)
	}
}

// geoKey groups records by (district, pincode).
func geoKey(rec *types.ScoredRecord) string {
	return rec.District + "\x1f" + rec.Pincode
}

// ComputePersistence computes the mean SEVERE indicator per (district,
// pincode) over the whole run and broadcasts it back onto every matching
// record. A retrospective frequency, computed once, never mutated after the
// join.
func ComputePersistence(records []types.ScoredRecord) {
	severe := make(map[string]float64)
	total := make(map[string]float64)
	for i := range records {
		key := geoKey(&records[i])
		total[key]++
		if records[i].Severity == types.SeveritySevere {
			severe[key]++
		}
	}
	for i := range records {
		key := geoKey(&records[i])
		records[i].Persistence = severe[key] / total[key]
	}
}

// ComputeImpact combines model confidence, historical severity frequency
// and log-scaled population exposure with fixed linear weights.
func ComputeImpact(records []types.ScoredRecord, p Params) {
	for i := range records {
		records[i].ImpactScore = round3(
			p.ImpactConfidenceWeight*records[i].Confidence +
				p.ImpactPersistenceWeight*records[i].Persistence +
				p.ImpactPopulationWeight*math.Log1p(records[i].TotalPopulation),
		)
	}
}
