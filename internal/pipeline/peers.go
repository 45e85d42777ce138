package pipeline

import "github.com/arcstats/demoaudit/internal/types"

// ComputePeerDeviation computes the state-level youth-ratio baseline once
// over the complete table, broadcasts it onto every record of that state,
// and derives the signed deviation from peers, rounded to 3 decimals.
func ComputePeerDeviation(records []types.ScoredRecord) {
	sum := make(map[string]float64)
	count := make(map[string]float64)
	for i := range records {
		sum[records[i].State] += records[i].YouthRatio
		count[records[i].State]++
	}

	for i := range records {
		baseline := sum[records[i].State] / count[records[i].State]
		records[i].StateAvgYouthRatio = baseline
		records[i].PeerDeviation = round3(records[i].YouthRatio - baseline)
	}
}
