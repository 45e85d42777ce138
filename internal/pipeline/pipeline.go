// Package pipeline implements the anomaly-scoring core: feature derivation
// from raw counts, the unsupervised outlier model, the severity and
// explainability layer, and the composite risk and policy engine. One batch
// pass over a single in-memory table; every stage appends columns, none
// rewrites a previously computed value.
package pipeline

import (
	"time"

	"github.com/arcstats/demoaudit/internal/anomaly"
	apperrors "github.com/arcstats/demoaudit/internal/errors"
	"github.com/arcstats/demoaudit/internal/monitoring"
	"github.com/arcstats/demoaudit/internal/types"
)

// Pipeline orchestrates the scoring stages in fixed order.
type Pipeline struct {
	params   Params
	detector anomaly.Detector
	logger   *monitoring.Logger
}

// New creates a pipeline with the default isolation-forest detector.
func New(params Params, logger *monitoring.Logger) *Pipeline {
	detector := anomaly.NewIsolationForest(anomaly.ForestConfig{
		Trees:         params.Trees,
		Contamination: params.Contamination,
		Seed:          params.Seed,
	})
	return NewWithDetector(params, detector, logger)
}

// NewWithDetector creates a pipeline with a custom outlier model.
func NewWithDetector(params Params, detector anomaly.Detector, logger *monitoring.Logger) *Pipeline {
	if logger == nil {
		logger = monitoring.NewLogger()
	}
	return &Pipeline{params: params, detector: detector, logger: logger}
}

// Run scores one snapshot end to end and returns the full report. The only
// fatal condition is a total absence of usable records after cleaning;
// individual malformed rows are excluded locally.
func (p *Pipeline) Run(raw []types.RawRecord) (*types.Report, error) {
	start := time.Now()

	records, stats := CleanRecords(raw)
	p.logger.StageLogger("clean", stats.RawRecords, len(records), time.Since(start))
	if len(records) == 0 {
		return nil, apperrors.NewEmptyInputError(stats.RawRecords)
	}

	records = BuildFeatures(records)

	matrix := anomaly.Standardize(FeatureMatrix(records))
	scores, flags, err := p.detector.FitScore(matrix)
	if err != nil {
		return nil, apperrors.WrapError(err, "anomaly model fit failed")
	}

	scored := make([]types.ScoredRecord, len(records))
	for i := range records {
		scored[i] = types.ScoredRecord{
			Record:  records[i],
			MLScore: scores[i],
			MLFlag:  flags[i],
		}
	}

	ClassifySeverity(scored, p.params.SeverityPercentile)
	ExplainAll(scored, p.params)
	ComputeConfidence(scored)
	ComputePersistence(scored)
	ComputeImpact(scored, p.params)
	ApplyPolicy(scored, p.params)
	ComputePeerDeviation(scored)
	FlagEarlyWarnings(scored, p.params)
	ComputeTrust(scored, p.params)

	report := &types.Report{
		Records:       scored,
		DistrictRisk:  BuildDistrictRisk(scored),
		PolicyAlerts:  BuildPolicyAlerts(scored),
		EarlyWarnings: BuildEarlyWarningZones(scored),
	}

	p.logger.PipelineLogger(len(scored), report.SevereCount(), len(report.EarlyWarnings), time.Since(start))
	return report, nil
}
