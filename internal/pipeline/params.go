package pipeline

// Params holds every tunable constant of the scoring pipeline. Production
// runs use DefaultParams; tests override individual fields.
type Params struct {
	// Anomaly model
	Trees         int
	Contamination float64
	Seed          int64

	// Severity classifier
	SeverityPercentile float64

	// Explainability thresholds
	YouthHeavyThreshold float64
	AgeingThreshold     float64
	ShockReasonLimit    float64
	SwingFraction       float64

	// Policy engine thresholds, evaluated descending with strict >
	PolicyImmediate   float64
	PolicyInvestigate float64
	PolicyMonitor     float64

	// Early-warning vote
	WarningVotes         int
	WarningPersistence   float64
	WarningShock         float64
	WarningPeerDeviation float64

	// Trust score weights
	TrustPersistenceWeight float64
	TrustSevereWeight      float64

	// Impact score weights
	ImpactConfidenceWeight  float64
	ImpactPersistenceWeight float64
	ImpactPopulationWeight  float64
}

// DefaultParams returns the fixed production configuration.
func DefaultParams() Params {
	return Params{
		Trees:         250,
		Contamination: 0.01,
		Seed:          42,

		SeverityPercentile: 0.01,

		YouthHeavyThreshold: 0.45,
		AgeingThreshold:     0.10,
		ShockReasonLimit:    5,
		SwingFraction:       0.20,

		PolicyImmediate:   0.85,
		PolicyInvestigate: 0.65,
		PolicyMonitor:     0.45,

		WarningVotes:         2,
		WarningPersistence:   0.10,
		WarningShock:         2,
		WarningPeerDeviation: 0.10,

		TrustPersistenceWeight: 0.5,
		TrustSevereWeight:      0.5,

		ImpactConfidenceWeight:  0.4,
		ImpactPersistenceWeight: 0.4,
		ImpactPopulationWeight:  0.2,
	}
}
