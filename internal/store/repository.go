package store

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/arcstats/demoaudit/internal/types"
)

// Run is one archived scoring run.
type Run struct {
	ID                string    `json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	RecordCount       int       `json:"record_count"`
	SevereCount       int       `json:"severe_count"`
	EarlyWarningCount int       `json:"early_warning_count"`
}

// Repository handles run-archive operations.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveReport archives one complete report and returns the run id. The whole
// report is written in a single transaction.
func (r *Repository) SaveReport(report *types.Report) (string, error) {
	runID := uuid.New().String()

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, created_at, record_count, severe_count, early_warning_count)
		VALUES (?, ?, ?, ?, ?)
	`, runID, time.Now(), len(report.Records), report.SevereCount(), len(report.EarlyWarnings))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	recordStmt, err := tx.Prepare(`
		INSERT INTO scored_records (
			id, run_id, date, state, district, pincode,
			demo_age_5_17, demo_age_17_, total_population, youth_ratio,
			pop_change, shock_score, ml_flag, ml_score, severity, reason,
			confidence, persistence, impact_score, recommended_action,
			state_avg_youth_ratio, peer_deviation, early_warning,
			data_trust_score, row_index
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer recordStmt.Close()

	for i := range report.Records {
		rec := &report.Records[i]
		_, err = recordStmt.Exec(
			uuid.New().String(), runID, rec.Date, rec.State, rec.District, rec.Pincode,
			rec.AgeYouth, rec.AgeAdult, rec.TotalPopulation, rec.YouthRatio,
			rec.PopChange, rec.ShockScore, rec.MLFlag, rec.MLScore, rec.Severity, rec.Reason,
			rec.Confidence, rec.Persistence, rec.ImpactScore, rec.RecommendedAction,
			rec.StateAvgYouthRatio, rec.PeerDeviation, rec.EarlyWarning,
			rec.DataTrustScore, i,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert record: %w", err)
		}
	}

	for rank, row := range report.DistrictRisk {
		_, err = tx.Exec(`
			INSERT INTO district_risk (id, run_id, district, severe_cases, avg_impact, dominant_reason, rank)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), runID, row.District, row.SevereCases, row.AvgImpact, row.DominantReason, rank)
		if err != nil {
			return "", fmt.Errorf("failed to insert district risk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// LatestRun returns the most recently archived run, or nil when the archive
// is empty.
func (r *Repository) LatestRun() (*Run, error) {
	stmt, err := r.db.GetPreparedStatement("latest_run")
	if err != nil {
		return nil, err
	}

	var run Run
	err = stmt.QueryRow().Scan(
		&run.ID, &run.CreatedAt, &run.RecordCount, &run.SevereCount, &run.EarlyWarningCount,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return &run, nil
}

// LoadReport reconstructs the archived report for a run. The aggregate
// views are stored projections: nothing is re-scored here.
func (r *Repository) LoadReport(runID string) (*types.Report, error) {
	records, err := r.loadRecords(runID)
	if err != nil {
		return nil, err
	}

	risk, err := r.loadDistrictRisk(runID)
	if err != nil {
		return nil, err
	}

	report := &types.Report{
		Records:      records,
		DistrictRisk: risk,
	}
	for i := range records {
		if records[i].Severity == types.SeveritySevere {
			report.PolicyAlerts = append(report.PolicyAlerts, records[i])
		}
		if records[i].EarlyWarning {
			report.EarlyWarnings = append(report.EarlyWarnings, records[i])
		}
	}
	// Alerts were archived in table order; restore impact-descending order.
	sortAlerts(report.PolicyAlerts)

	return report, nil
}

func (r *Repository) loadRecords(runID string) ([]types.ScoredRecord, error) {
	rows, err := r.db.Query(`
		SELECT date, state, district, pincode,
			demo_age_5_17, demo_age_17_, total_population, youth_ratio,
			pop_change, shock_score, ml_flag, ml_score, severity, reason,
			confidence, persistence, impact_score, recommended_action,
			state_avg_youth_ratio, peer_deviation, early_warning, data_trust_score
		FROM scored_records
		WHERE run_id = ?
		ORDER BY row_index ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []types.ScoredRecord
	for rows.Next() {
		var rec types.ScoredRecord
		err = rows.Scan(
			&rec.Date, &rec.State, &rec.District, &rec.Pincode,
			&rec.AgeYouth, &rec.AgeAdult, &rec.TotalPopulation, &rec.YouthRatio,
			&rec.PopChange, &rec.ShockScore, &rec.MLFlag, &rec.MLScore, &rec.Severity, &rec.Reason,
			&rec.Confidence, &rec.Persistence, &rec.ImpactScore, &rec.RecommendedAction,
			&rec.StateAvgYouthRatio, &rec.PeerDeviation, &rec.EarlyWarning, &rec.DataTrustScore,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Repository) loadDistrictRisk(runID string) ([]types.DistrictRisk, error) {
	rows, err := r.db.Query(`
		SELECT district, severe_cases, avg_impact, dominant_reason
		FROM district_risk
		WHERE run_id = ?
		ORDER BY rank ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query district risk: %w", err)
	}
	defer rows.Close()

	var risk []types.DistrictRisk
	for rows.Next() {
		var row types.DistrictRisk
		if err := rows.Scan(&row.District, &row.SevereCases, &row.AvgImpact, &row.DominantReason); err != nil {
			return nil, fmt.Errorf("failed to scan district risk: %w", err)
		}
		risk = append(risk, row)
	}
	return risk, rows.Err()
}

func sortAlerts(alerts []types.ScoredRecord) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].ImpactScore > alerts[j].ImpactScore
	})
}
