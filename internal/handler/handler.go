package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maxviazov/gps-performance-service/internal/service"
)

// Register mounts all public routes on the given engine.
// Accepts service layer dependencies for API endpoints.
func Register(r *gin.Engine, repo Pinger, profileSvc service.ProfileService, reportSvc service.ReportService, matchSvc service.MatchingService, analysisSvc service.AnalysisService) {
	h := NewHealthHandler(repo)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	api := r.Group(APIV1Prefix) // Versioning added via single source of truth
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewProfileHandler(profileSvc).Register(api)
		NewReportHandler(reportSvc).Register(api)
		NewMatchingHandler(matchSvc).Register(api)
		NewAnalysisHandler(analysisSvc).Register(api)
	}
}
