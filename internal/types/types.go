package types

import "time"

// Severity levels assigned to every scored record, exactly one per record.
const (
	SeverityNormal     = "NORMAL"
	SeveritySuspicious = "SUSPICIOUS"
	SeveritySevere     = "SEVERE"
)

// Recommended actions emitted by the policy engine.
const (
	ActionImmediateAudit = "Immediate audit & field verification"
	ActionInvestigation  = "Targeted demographic investigation"
	ActionMonitor        = "Monitor closely"
	ActionNone           = "No action"
)

// RawRecord is one row as delivered by the loader, before any coercion.
// Date and the two count columns stay as raw strings so the feature builder
// owns all parse/drop decisions.
type RawRecord struct {
	Date     string `json:"date"`
	State    string `json:"state"`
	District string `json:"district"`
	Pincode  string `json:"pincode"`
	AgeYouth string `json:"demo_age_5_17"`
	AgeAdult string `json:"demo_age_17_"`
}

// Record is one validated (geography, date) observation with its derived
// feature columns. Later pipeline stages only ever append columns.
type Record struct {
	Date     time.Time `json:"date"`
	State    string    `json:"state"`
	District string    `json:"district"`
	Pincode  string    `json:"pincode"`

	AgeYouth float64 `json:"demo_age_5_17"`
	AgeAdult float64 `json:"demo_age_17_"`

	TotalPopulation float64 `json:"total_population"`
	YouthRatio      float64 `json:"youth_ratio"`
	PopChange       float64 `json:"pop_change"`
	ShockScore      float64 `json:"shock_score"`
}

// ScoredRecord is the full output row: the validated record plus every
// column the scoring stages append.
type ScoredRecord struct {
	Record

	MLFlag  bool    `json:"ml_flag"` // true = outlier
	MLScore float64 `json:"ml_score"`

	Severity string `json:"severity"`
	Reason   string `json:"reason"`

	Confidence        float64 `json:"confidence"`
	Persistence       float64 `json:"persistence"`
	ImpactScore       float64 `json:"impact_score"`
	RecommendedAction string  `json:"recommended_action"`

	StateAvgYouthRatio float64 `json:"state_avg_youth_ratio"`
	PeerDeviation      float64 `json:"peer_deviation"`

	EarlyWarning   bool    `json:"early_warning"`
	DataTrustScore float64 `json:"data_trust_score"`
}

// DistrictRisk is one row of the per-district ranking, restricted to
// districts with at least one SEVERE record.
type DistrictRisk struct {
	District       string  `json:"district"`
	SevereCases    int     `json:"severe_cases"`
	AvgImpact      float64 `json:"avg_impact"`
	DominantReason string  `json:"dominant_reason"`
}

// Report is the complete output contract handed to the exporter and the
// report server: the scored table plus the three aggregate views.
type Report struct {
	Records       []ScoredRecord `json:"records"`
	DistrictRisk  []DistrictRisk `json:"district_risk"`
	PolicyAlerts  []ScoredRecord `json:"policy_alerts"`
	EarlyWarnings []ScoredRecord `json:"early_warnings"`
}

// SevereCount returns the number of SEVERE records in the report.
func (r *Report) SevereCount() int {
	n := 0
	for i := range r.Records {
		if r.Records[i].Severity == SeveritySevere {
			n++
		}
	}
	return n
}
