package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/service"
	"github.com/maxviazov/gps-performance-service/pkg/response"
)

type MatchingHandler struct {
	svc service.MatchingService
}

func NewMatchingHandler(svc service.MatchingService) *MatchingHandler {
	return &MatchingHandler{svc: svc}
}

func (h *MatchingHandler) Register(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.POST("/:id/match", h.suggest)
		reports.PUT("/:id/player-mappings", h.save)
		reports.GET("/:id/player-mappings", h.list)
	}
}

type suggestRequest struct {
	NameColumn string `json:"name_column"`
}

func (h *MatchingHandler) suggest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	results, err := h.svc.Suggest(c.Request.Context(), id, req.NameColumn)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, results)
}

type saveMappingsRequest struct {
	Mappings []struct {
		RowIndex int    `json:"row_index"`
		PlayerID *int64 `json:"player_id"`
	} `json:"mappings"`
}

func (h *MatchingHandler) save(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req saveMappingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	mappings := make([]model.PlayerMapping, 0, len(req.Mappings))
	for _, m := range req.Mappings {
		mappings = append(mappings, model.PlayerMapping{ReportID: id, RowIndex: m.RowIndex, PlayerID: m.PlayerID})
	}
	if err := h.svc.SaveMappings(c.Request.Context(), id, mappings); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"saved": len(mappings)})
}

func (h *MatchingHandler) list(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	mappings, err := h.svc.GetMappings(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, mappings)
}
