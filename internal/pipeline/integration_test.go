package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/arcstats/demoaudit/internal/errors"
	"github.com/arcstats/demoaudit/internal/types"
)

// snapshotFixture builds a multi-month snapshot over ten pincodes in two
// states. Pincode 560001 gets a gross registration surge in the final month.
func snapshotFixture() []types.RawRecord {
	states := []struct {
		state    string
		district string
		pincode  string
	}{
		{"Karnataka", "Bengaluru Urban", "560001"},
		{"Karnataka", "Bengaluru Urban", "560034"},
		{"Karnataka", "Mysuru", "570001"},
		{"Karnataka", "Mysuru", "570008"},
		{"Karnataka", "Tumakuru", "572101"},
		{"Tamil Nadu", "Chennai", "600001"},
		{"Tamil Nadu", "Chennai", "600040"},
		{"Tamil Nadu", "Coimbatore", "641001"},
		{"Tamil Nadu", "Coimbatore", "641012"},
		{"Tamil Nadu", "Madurai", "625001"},
	}

	var raw []types.RawRecord
	for month := 1; month <= 6; month++ {
		for i, g := range states {
			youth := 1200 + 40*i + 13*month
			adult := 3800 + 60*i + 17*month
			if g.pincode == "560001" && month == 6 {
				youth = 52000
				adult = 8000
			}
			raw = append(raw, types.RawRecord{
				Date:     fmt.Sprintf("2025-%02d-15", month),
				State:    g.state,
				District: g.district,
				Pincode:  g.pincode,
				AgeYouth: fmt.Sprintf("%d", youth),
				AgeAdult: fmt.Sprintf("%d", adult),
			})
		}
	}
	return raw
}

func findRecord(records []types.ScoredRecord, pincode, date string) *types.ScoredRecord {
	for i := range records {
		if records[i].Pincode == pincode && records[i].Date.Format("2006-01-02") == date {
			return &records[i]
		}
	}
	return nil
}

func TestPipelineRunEndToEnd(t *testing.T) {
	p := New(DefaultParams(), nil)

	report, err := p.Run(snapshotFixture())
	require.NoError(t, err)
	require.Len(t, report.Records, 60)

	surge := findRecord(report.Records, "560001", "2025-06-15")
	require.NotNil(t, surge)

	// The injected surge is the most isolated point in the snapshot.
	assert.True(t, surge.MLFlag)
	assert.NotEqual(t, types.SeverityNormal, surge.Severity)
	assert.NotEmpty(t, surge.Reason)
	assert.NotEmpty(t, surge.RecommendedAction)

	for i := range report.Records {
		r := &report.Records[i]

		assert.GreaterOrEqual(t, r.YouthRatio, 0.0)
		assert.LessOrEqual(t, r.YouthRatio, 1.0)
		assert.LessOrEqual(t, r.Confidence, 1.0)
		assert.GreaterOrEqual(t, r.DataTrustScore, 0.0)
		assert.LessOrEqual(t, r.DataTrustScore, 1.0)

		// Early warning and SEVERE are mutually exclusive.
		if r.Severity == types.SeveritySevere {
			assert.False(t, r.EarlyWarning)
		}

		// Flagged outliers never stay NORMAL.
		if r.MLFlag {
			assert.NotEqual(t, types.SeverityNormal, r.Severity)
		}
	}
}

func TestPipelineRunPopChangeAcrossMonths(t *testing.T) {
	p := New(DefaultParams(), nil)

	report, err := p.Run(snapshotFixture())
	require.NoError(t, err)

	// 570001: total grows by 30/month (youth +13, adult +17).
	first := findRecord(report.Records, "570001", "2025-01-15")
	second := findRecord(report.Records, "570001", "2025-02-15")
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.InDelta(t, 0, first.PopChange, 1e-9)
	assert.InDelta(t, 30, second.PopChange, 1e-9)
}

func TestPipelineRunPersistenceBroadcast(t *testing.T) {
	p := New(DefaultParams(), nil)

	report, err := p.Run(snapshotFixture())
	require.NoError(t, err)

	seen := make(map[string]float64)
	for i := range report.Records {
		r := &report.Records[i]
		key := r.District + "/" + r.Pincode
		if prev, ok := seen[key]; ok {
			assert.Equal(t, prev, r.Persistence, "persistence differs within %s", key)
		} else {
			seen[key] = r.Persistence
		}
	}
}

func TestPipelineRunDeterministic(t *testing.T) {
	first, err := New(DefaultParams(), nil).Run(snapshotFixture())
	require.NoError(t, err)
	second, err := New(DefaultParams(), nil).Run(snapshotFixture())
	require.NoError(t, err)

	require.Equal(t, len(first.Records), len(second.Records))
	for i := range first.Records {
		assert.Equal(t, first.Records[i].MLScore, second.Records[i].MLScore)
		assert.Equal(t, first.Records[i].MLFlag, second.Records[i].MLFlag)
		assert.Equal(t, first.Records[i].Severity, second.Records[i].Severity)
		assert.Equal(t, first.Records[i].RecommendedAction, second.Records[i].RecommendedAction)
	}
	assert.Equal(t, first.DistrictRisk, second.DistrictRisk)
}

func TestPipelineRunReportViews(t *testing.T) {
	report, err := New(DefaultParams(), nil).Run(snapshotFixture())
	require.NoError(t, err)

	assert.Len(t, report.PolicyAlerts, report.SevereCount())
	for i := range report.PolicyAlerts {
		assert.Equal(t, types.SeveritySevere, report.PolicyAlerts[i].Severity)
	}
	for i := 1; i < len(report.PolicyAlerts); i++ {
		assert.GreaterOrEqual(t, report.PolicyAlerts[i-1].ImpactScore, report.PolicyAlerts[i].ImpactScore)
	}
	for i := range report.EarlyWarnings {
		assert.True(t, report.EarlyWarnings[i].EarlyWarning)
	}
}

func TestPipelineRunEmptyInput(t *testing.T) {
	p := New(DefaultParams(), nil)

	tests := []struct {
		name string
		raw  []types.RawRecord
	}{
		{name: "nil input", raw: nil},
		{
			name: "all rows dropped by cleaning",
			raw: []types.RawRecord{
				{Date: "not-a-date", State: "KA", District: "Mysuru", Pincode: "570001", AgeYouth: "10", AgeAdult: "20"},
				{Date: "2025-01-15", State: "KA", District: "Mysuru", Pincode: "570001", AgeYouth: "0", AgeAdult: "0"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := p.Run(tt.raw)

			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, apperrors.IsEmptyInput(err))
		})
	}
}
