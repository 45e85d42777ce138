package pipeline

import (
	"math"

	"github.com/arcstats/demoaudit/internal/types"
)

// warningSignal is one vote toward the early-warning flag.
type warningSignal struct {
	Name    string
	Applies func(rec *types.ScoredRecord, p Params) bool
}

// warningSignals is the fixed signal list for the vote.
func warningSignals() []warningSignal {
	return []warningSignal{
		{
			Name: "suspicious_severity",
			Applies: func(rec *types.ScoredRecord, p Params) bool {
				return rec.Severity == types.SeveritySuspicious
			},
		},
		{
			Name: "persistent_geography",
			Applies: func(rec *types.ScoredRecord, p Params) bool {
				return rec.Persistence >= p.WarningPersistence
			},
		},
		{
			Name: "elevated_shock",
			Applies: func(rec *types.ScoredRecord, p Params) bool {
				return math.Abs(rec.ShockScore) >= p.WarningShock
			},
		},
		{
			Name: "peer_divergence",
			Applies: func(rec *types.ScoredRecord, p Params) bool {
				return math.Abs(rec.PeerDeviation) >= p.WarningPeerDeviation
			},
		},
	}
}

// FlagEarlyWarnings raises the pre-severe alert when enough signals vote
// for it. SEVERE records are never early warnings: the flag is strictly a
// pre-severe signal, mutually exclusive with SEVERE.
func FlagEarlyWarnings(records []types.ScoredRecord, p Params) {
	signals := warningSignals()
	for i := range records {
		votes := 0
		for _, signal := range signals {
			if signal.Applies(&records[i], p) {
				votes++
			}
		}
		records[i].EarlyWarning = votes >= p.WarningVotes &&
			records[i].Severity != types.SeveritySevere
	}
}
