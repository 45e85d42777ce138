package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/arcstats/demoaudit/internal/config"
	apperrors "github.com/arcstats/demoaudit/internal/errors"
	"github.com/arcstats/demoaudit/internal/export"
	"github.com/arcstats/demoaudit/internal/ingest"
	"github.com/arcstats/demoaudit/internal/monitoring"
	"github.com/arcstats/demoaudit/internal/pipeline"
	"github.com/arcstats/demoaudit/internal/server"
	"github.com/arcstats/demoaudit/internal/store"
)

func main() {
	logger := monitoring.NewLogger()
	slog.SetDefault(logger.Logger)

	cfg := config.Load()
	params := loadParams()

	// Load the snapshot.
	loader := ingest.NewLoader(cfg.DataDir, cfg.DataPattern)
	raw, err := loader.Load()
	if err != nil {
		slog.Error("Failed to load input data", "error", err)
		os.Exit(1)
	}
	slog.Info("Input loaded", "raw_records", len(raw), "data_dir", cfg.DataDir)

	// Score it.
	pipe := pipeline.New(params, logger)
	report, err := pipe.Run(raw)
	if err != nil {
		if apperrors.IsEmptyInput(err) {
			slog.Error("No usable records after cleaning", "raw_records", len(raw))
		} else {
			slog.Error("Pipeline failed", "error", err)
		}
		os.Exit(1)
	}

	// Export the artifacts.
	exporter, err := export.NewExporter(cfg.OutputDir, logger)
	if err != nil {
		slog.Error("Failed to initialize exporter", "error", err)
		os.Exit(1)
	}
	if err := exporter.WriteAll(report); err != nil {
		slog.Error("Failed to export report", "error", err)
		os.Exit(1)
	}

	// Archive the run.
	db, err := store.NewDB(cfg.DBDir)
	if err != nil {
		slog.Error("Failed to initialize run archive", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := store.NewRepository(db)
	runID, err := repo.SaveReport(report)
	if err != nil {
		slog.Error("Failed to archive run", "error", err)
		os.Exit(1)
	}
	slog.Info("Run archived", "run_id", runID, "records", len(report.Records))

	if !cfg.Serve {
		return
	}

	// Serve the archived report until interrupted.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(repo, logger)
	slog.Info("Report server starting", "port", cfg.Port)
	if err := srv.Run(ctx, cfg.Port); err != nil {
		slog.Error("Report server failed", "error", err)
		os.Exit(1)
	}
}

// loadParams applies environment overrides on top of the fixed defaults.
// Every pipeline constant is overridable for testability.
func loadParams() pipeline.Params {
	p := pipeline.DefaultParams()

	p.Trees = config.GetEnvInt("MODEL_TREES", p.Trees)
	p.Contamination = config.GetEnvFloat("MODEL_CONTAMINATION", p.Contamination)
	p.Seed = int64(config.GetEnvInt("MODEL_SEED", int(p.Seed)))
	p.SeverityPercentile = config.GetEnvFloat("SEVERITY_PERCENTILE", p.SeverityPercentile)

	p.YouthHeavyThreshold = config.GetEnvFloat("REASON_YOUTH_HEAVY", p.YouthHeavyThreshold)
	p.AgeingThreshold = config.GetEnvFloat("REASON_AGEING", p.AgeingThreshold)
	p.ShockReasonLimit = config.GetEnvFloat("REASON_SHOCK", p.ShockReasonLimit)
	p.SwingFraction = config.GetEnvFloat("REASON_SWING_FRACTION", p.SwingFraction)

	p.PolicyImmediate = config.GetEnvFloat("POLICY_IMMEDIATE", p.PolicyImmediate)
	p.PolicyInvestigate = config.GetEnvFloat("POLICY_INVESTIGATE", p.PolicyInvestigate)
	p.PolicyMonitor = config.GetEnvFloat("POLICY_MONITOR", p.PolicyMonitor)

	p.WarningVotes = config.GetEnvInt("WARNING_VOTES", p.WarningVotes)
	p.WarningPersistence = config.GetEnvFloat("WARNING_PERSISTENCE", p.WarningPersistence)
	p.WarningShock = config.GetEnvFloat("WARNING_SHOCK", p.WarningShock)
	p.WarningPeerDeviation = config.GetEnvFloat("WARNING_PEER_DEVIATION", p.WarningPeerDeviation)

	return p
}
