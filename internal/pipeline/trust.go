package pipeline

import "github.com/arcstats/demoaudit/internal/types"

// ComputeTrust derives the data-confidence discount: high historical
// persistence or current SEVERE status reduces trust in the geography's
// data, clipped to [0, 1] and rounded to 2 decimals.
func ComputeTrust(records []types.ScoredRecord, p Params) {
	for i := range records {
		severe := 0.0
		if records[i].Severity == types.SeveritySevere {
			severe = 1.0
		}
		raw := 1 - (p.TrustPersistenceWeight*records[i].Persistence + p.TrustSevereWeight*severe)
		records[i].DataTrustScore = round2(clip(raw, 0, 1))
	}
}
