package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/service"
	"github.com/maxviazov/gps-performance-service/pkg/response"
)

type ReportHandler struct {
	svc service.ReportService
}

func NewReportHandler(svc service.ReportService) *ReportHandler { return &ReportHandler{svc: svc} }

func (h *ReportHandler) Register(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.POST("", h.ingest)
		reports.GET("/:id", h.get)
	}
}

type ingestRequest struct {
	ProfileID int64          `json:"profile_id"`
	TeamID    int64          `json:"team_id"`
	EventID   int64          `json:"event_id"`
	EventType string         `json:"event_type"`
	EventDate time.Time      `json:"event_date"`
	RawData   []model.RawRow `json:"raw_data"`
}

func (h *ReportHandler) ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	rep, err := h.svc.Ingest(c.Request.Context(), model.GpsReport{
		ProfileID: req.ProfileID,
		TeamID:    req.TeamID,
		EventID:   req.EventID,
		EventType: model.EventType(req.EventType),
		EventDate: req.EventDate,
		RawData:   req.RawData,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, rep)
}

func (h *ReportHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rep, err := h.svc.GetReport(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, rep)
}
