package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/gps-performance-service/internal/service"
	"github.com/maxviazov/gps-performance-service/pkg/response"
)

type AnalysisHandler struct {
	svc service.AnalysisService
}

func NewAnalysisHandler(svc service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

func (h *AnalysisHandler) Register(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/:id/averages", h.averages)
		reports.GET("/:id/comparison", h.comparison)
	}
	r.Group("/players").GET("/:id/game-model", h.gameModel)
}

func (h *AnalysisHandler) averages(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	avgs, err := h.svc.ComputeAverages(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, avgs)
}

func (h *AnalysisHandler) comparison(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	comparisons, status, err := h.svc.CompareReport(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{
		"baseline_status": status,
		"metrics":         comparisons,
	})
}

func (h *AnalysisHandler) gameModel(c *gin.Context) {
	playerID, ok := pathID(c)
	if !ok {
		return
	}
	reportID, err := strconv.ParseInt(c.Query("report_id"), 10, 64)
	if err != nil || reportID <= 0 {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "report_id", Message: "must be a valid integer > 0"}}))
		return
	}
	entries, err := h.svc.PlayerGameModel(c.Request.Context(), playerID, reportID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, entries)
}
