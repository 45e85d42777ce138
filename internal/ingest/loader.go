// Package ingest is the loader collaborator: it discovers the raw snapshot
// files and hands the core a single in-memory table of raw rows. All
// coercion and validity filtering belongs to the pipeline, not here.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/arcstats/demoaudit/internal/errors"
	"github.com/arcstats/demoaudit/internal/types"
)

// Required input columns after header normalization.
var requiredColumns = []string{"date", "state", "district", "pincode", "demo_age_5_17", "demo_age_17_"}

// Loader discovers and parses registration snapshot CSV files.
type Loader struct {
	dataDir string
	pattern string
}

// NewLoader creates a loader over a data directory and a glob pattern.
func NewLoader(dataDir, pattern string) *Loader {
	return &Loader{dataDir: dataDir, pattern: pattern}
}

// Load reads every matching file and concatenates the rows in sorted file
// order. No matching files is a valid, empty input.
func (l *Loader) Load() ([]types.RawRecord, error) {
	matches, err := filepath.Glob(filepath.Join(l.dataDir, l.pattern))
	if err != nil {
		return nil, apperrors.NewConfigurationError("invalid data file pattern", err)
	}
	sort.Strings(matches)

	var records []types.RawRecord
	for _, path := range matches {
		fileRecords, err := l.loadFile(path)
		if err != nil {
			return nil, apperrors.WrapError(err, "failed to load %s", path)
		}
		records = append(records, fileRecords...)
	}
	return records, nil
}

func (l *Loader) loadFile(path string) ([]types.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []types.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row is a local parse failure, not a fatal one.
			continue
		}
		records = append(records, types.RawRecord{
			Date:     field(row, index["date"]),
			State:    field(row, index["state"]),
			District: field(row, index["district"]),
			Pincode:  field(row, index["pincode"]),
			AgeYouth: field(row, index["demo_age_5_17"]),
			AgeAdult: field(row, index["demo_age_17_"]),
		})
	}
	return records, nil
}

// columnIndex normalizes headers (trim + lowercase) and maps the required
// columns to positions. A missing column is a configuration error.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, apperrors.NewConfigurationError("input is missing column "+name, nil)
		}
	}
	return index, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
