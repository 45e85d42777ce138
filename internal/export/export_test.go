package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcstats/demoaudit/internal/types"
)

func sampleReport() *types.Report {
	severe := types.ScoredRecord{
		Record: types.Record{
			Date:            time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			State:           "Karnataka",
			District:        "Bengaluru Urban",
			Pincode:         "560001",
			AgeYouth:        52000,
			AgeAdult:        8000,
			TotalPopulation: 60000,
			YouthRatio:      0.867,
			PopChange:       54800,
			ShockScore:      7.2,
		},
		MLFlag:            true,
		MLScore:           -0.12,
		Severity:          types.SeveritySevere,
		Reason:            "Youth-heavy population; Sudden demographic shock",
		Confidence:        1,
		Persistence:       0.167,
		ImpactScore:       2.67,
		RecommendedAction: types.ActionImmediateAudit,
		DataTrustScore:    0.42,
	}
	normal := types.ScoredRecord{
		Record: types.Record{
			Date:            time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			State:           "Karnataka",
			District:        "Mysuru",
			Pincode:         "570001",
			TotalPopulation: 5230,
			YouthRatio:      0.247,
		},
		Severity:          types.SeverityNormal,
		RecommendedAction: types.ActionNone,
		EarlyWarning:      true,
		DataTrustScore:    1,
	}
	return &types.Report{
		Records: []types.ScoredRecord{severe, normal},
		DistrictRisk: []types.DistrictRisk{
			{District: "Bengaluru Urban", SevereCases: 1, AvgImpact: 2.67, DominantReason: "Youth-heavy population"},
		},
		PolicyAlerts:  []types.ScoredRecord{severe},
		EarlyWarnings: []types.ScoredRecord{normal},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExporterWriteAll(t *testing.T) {
	dir := t.TempDir()
	exporter, err := NewExporter(dir, nil)
	require.NoError(t, err)

	require.NoError(t, exporter.WriteAll(sampleReport()))

	for _, name := range []string{
		FileScoredData, FileDistrictRisk, FilePolicyAlerts, FileEarlyWarnings, FileReport,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "missing artifact %s", name)
	}
}

func TestExporterScoredData(t *testing.T) {
	dir := t.TempDir()
	exporter, err := NewExporter(dir, nil)
	require.NoError(t, err)
	require.NoError(t, exporter.WriteAll(sampleReport()))

	rows := readCSV(t, filepath.Join(dir, FileScoredData))

	require.Len(t, rows, 3)
	assert.Equal(t, recordHeader, rows[0])

	first := rows[1]
	assert.Equal(t, "2025-06-15", first[0])
	assert.Equal(t, "Bengaluru Urban", first[2])
	assert.Equal(t, "560001", first[3])
	assert.Equal(t, "true", first[10])
	assert.Equal(t, "SEVERE", first[12])
	assert.Equal(t, "Youth-heavy population; Sudden demographic shock", first[13])
	assert.Equal(t, types.ActionImmediateAudit, first[17])

	second := rows[2]
	assert.Equal(t, "NORMAL", second[12])
	assert.Equal(t, "true", second[20])
}

func TestExporterDistrictRisk(t *testing.T) {
	dir := t.TempDir()
	exporter, err := NewExporter(dir, nil)
	require.NoError(t, err)
	require.NoError(t, exporter.WriteAll(sampleReport()))

	rows := readCSV(t, filepath.Join(dir, FileDistrictRisk))

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"district", "severe_cases", "avg_impact", "dominant_reason"}, rows[0])
	assert.Equal(t, []string{"Bengaluru Urban", "1", "2.67", "Youth-heavy population"}, rows[1])
}

func TestExporterViewRowCounts(t *testing.T) {
	dir := t.TempDir()
	exporter, err := NewExporter(dir, nil)
	require.NoError(t, err)
	require.NoError(t, exporter.WriteAll(sampleReport()))

	alerts := readCSV(t, filepath.Join(dir, FilePolicyAlerts))
	warnings := readCSV(t, filepath.Join(dir, FileEarlyWarnings))

	assert.Len(t, alerts, 2)
	assert.Len(t, warnings, 2)
	assert.Equal(t, recordHeader, alerts[0])
	assert.Equal(t, recordHeader, warnings[0])
}

func TestExporterSummaryReport(t *testing.T) {
	dir := t.TempDir()
	exporter, err := NewExporter(dir, nil)
	require.NoError(t, err)
	require.NoError(t, exporter.WriteAll(sampleReport()))

	data, err := os.ReadFile(filepath.Join(dir, FileReport))
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "UIDAI DEMOGRAPHIC INTELLIGENCE REPORT\n"))
	assert.Contains(t, text, strings.Repeat("=", 65))
	assert.Contains(t, text, "Total records analysed: 2")
	assert.Contains(t, text, "Severe anomalies detected: 1")
	assert.Contains(t, text, "Early-warning zones detected: 1")
	assert.Contains(t, text, "Bengaluru Urban")
	assert.Contains(t, text, "dominant_reason=Youth-heavy population")
}

func TestNewExporterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	_, err := NewExporter(dir, nil)

	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
