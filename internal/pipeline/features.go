package pipeline

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/arcstats/demoaudit/internal/types"
)

// Accepted date layouts for the registration snapshots. Anything else is a
// parse failure and drops the row.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	time.RFC3339,
}

// CleanStats reports how many rows each validity filter removed.
type CleanStats struct {
	RawRecords       int
	DroppedBadDate   int
	DroppedZeroTotal int
}

// CleanRecords coerces raw rows into validated records. Invalid dates drop
// the row first; non-numeric counts are treated as missing and contribute 0
// to the total; rows with total population <= 0 are then dropped. The filter
// order matters: only fully valid rows feed the global pop-change statistics.
func CleanRecords(raw []types.RawRecord) ([]types.Record, CleanStats) {
	stats := CleanStats{RawRecords: len(raw)}
	records := make([]types.Record, 0, len(raw))

	for _, r := range raw {
		date, ok := parseDate(r.Date)
		if !ok {
			stats.DroppedBadDate++
			continue
		}

		youth := parseCount(r.AgeYouth)
		adult := parseCount(r.AgeAdult)
		total := youth + adult
		if total <= 0 {
			stats.DroppedZeroTotal++
			continue
		}

		records = append(records, types.Record{
			Date:            date,
			State:           strings.TrimSpace(r.State),
			District:        strings.TrimSpace(r.District),
			Pincode:         strings.TrimSpace(r.Pincode),
			AgeYouth:        youth,
			AgeAdult:        adult,
			TotalPopulation: total,
			YouthRatio:      youth / total,
		})
	}

	return records, stats
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseCount coerces a raw count to a non-negative float. Non-numeric and
// negative values are treated as missing, which feeds 0 into the total.
func parseCount(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// BuildFeatures sorts the table chronologically and derives the temporal
// columns. The stable sort is a correctness requirement: pop_change is
// "this minus previous within the same pincode, in chronological order",
// and the first observation of each pincode is 0 by definition.
func BuildFeatures(records []types.Record) []types.Record {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	lastTotal := make(map[string]float64)
	for i := range records {
		key := records[i].Pincode
		if prev, seen := lastTotal[key]; seen {
			records[i].PopChange = records[i].TotalPopulation - prev
		} else {
			records[i].PopChange = 0
		}
		lastTotal[key] = records[i].TotalPopulation
	}

	// Single global normalization, not per pincode.
	mu, sigma := meanStd(records)
	for i := range records {
		if sigma == 0 {
			records[i].ShockScore = 0
			continue
		}
		records[i].ShockScore = (records[i].PopChange - mu) / sigma
	}

	return records
}

// meanStd returns the global mean and sample standard deviation of
// pop_change. Fewer than two records is a degenerate case reported as
// sigma 0 so the shock score collapses to 0 instead of NaN.
func meanStd(records []types.Record) (float64, float64) {
	n := len(records)
	if n < 2 {
		return 0, 0
	}

	mu := 0.0
	for i := range records {
		mu += records[i].PopChange
	}
	mu /= float64(n)

	variance := 0.0
	for i := range records {
		d := records[i].PopChange - mu
		variance += d * d
	}
	variance /= float64(n - 1)

	sigma := math.Sqrt(variance)
	if math.IsNaN(sigma) {
		return mu, 0
	}
	return mu, sigma
}

// FeatureMatrix extracts the model input: exactly total_population,
// youth_ratio, pop_change and shock_score per record.
func FeatureMatrix(records []types.Record) [][]float64 {
	matrix := make([][]float64, len(records))
	for i := range records {
		matrix[i] = []float64{
			records[i].TotalPopulation,
			records[i].YouthRatio,
			records[i].PopChange,
			records[i].ShockScore,
		}
	}
	return matrix
}
