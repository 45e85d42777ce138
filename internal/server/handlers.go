package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arcstats/demoaudit/internal/store"
	"github.com/arcstats/demoaudit/internal/types"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// latest loads the most recent archived run, or reports 404 when the
// archive is empty.
func (s *Server) latest(c *gin.Context) (*store.Run, *types.Report, bool) {
	run, err := s.repo.LatestRun()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load latest run"})
		return nil, nil, false
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no archived runs"})
		return nil, nil, false
	}

	report, err := s.repo.LoadReport(run.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return nil, nil, false
	}
	return run, report, true
}

func (s *Server) handleSummary(c *gin.Context) {
	run, report, ok := s.latest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":              run.ID,
		"created_at":          run.CreatedAt,
		"record_count":        len(report.Records),
		"severe_count":        report.SevereCount(),
		"early_warning_count": len(report.EarlyWarnings),
		"district_risk_count": len(report.DistrictRisk),
	})
}

func (s *Server) handleDistricts(c *gin.Context) {
	_, report, ok := s.latest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"districts": report.DistrictRisk})
}

func (s *Server) handleAlerts(c *gin.Context) {
	_, report, ok := s.latest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": report.PolicyAlerts})
}

func (s *Server) handleEarlyWarnings(c *gin.Context) {
	_, report, ok := s.latest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"early_warnings": report.EarlyWarnings})
}
