package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/repository"
	"github.com/maxviazov/gps-performance-service/internal/service"
	"github.com/maxviazov/gps-performance-service/pkg/response"
)

type ProfileHandler struct {
	svc service.ProfileService
}

func NewProfileHandler(svc service.ProfileService) *ProfileHandler { return &ProfileHandler{svc: svc} }

func (h *ProfileHandler) Register(r *gin.RouterGroup) {
	profiles := r.Group("/profiles")
	{
		profiles.POST("", h.create)
		profiles.GET("", h.list)
		profiles.GET("/:id", h.get)
		profiles.GET("/:id/mappings", h.listMappings)
		profiles.POST("/:id/mappings", h.addMapping)
		profiles.POST("/:id/activate", h.activate)
		profiles.POST("/:id/deactivate", h.deactivate)
	}
	mappings := r.Group("/mappings")
	{
		mappings.PATCH("/:id", h.updateMapping)
		mappings.DELETE("/:id", h.removeMapping)
	}
	r.GET("/catalog/metrics", h.metricChoices)
}

type createProfileRequest struct {
	ClubID       int64  `json:"club_id"`
	Name         string `json:"name"`
	VendorSystem string `json:"vendor_system"`
}

func (h *ProfileHandler) create(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	p, err := h.svc.CreateProfile(c.Request.Context(), req.ClubID, req.Name, req.VendorSystem)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, p)
}

func (h *ProfileHandler) list(c *gin.Context) {
	clubID, err := strconv.ParseInt(c.Query("club_id"), 10, 64)
	if err != nil || clubID <= 0 {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "club_id", Message: "must be a valid integer > 0"}}))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	res, err := h.svc.ListProfiles(c.Request.Context(), clubID, repository.Page{Limit: limit, Offset: offset})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"items": res.Items, "total": res.Total})
}

func (h *ProfileHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.svc.GetProfile(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, p)
}

type addMappingRequest struct {
	SourceColumn    string `json:"source_column"`
	CanonicalMetric string `json:"canonical_metric"`
	CustomName      string `json:"custom_name"`
	DisplayUnit     string `json:"display_unit"`
	DisplayOrder    int    `json:"display_order"`
	IsVisible       *bool  `json:"is_visible"`
	Description     string `json:"description"`
}

func (h *ProfileHandler) addMapping(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req addMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}
	m, err := h.svc.AddMapping(c.Request.Context(), model.ColumnMapping{
		ProfileID:       id,
		SourceColumn:    req.SourceColumn,
		CanonicalMetric: req.CanonicalMetric,
		CustomName:      req.CustomName,
		DisplayUnit:     req.DisplayUnit,
		DisplayOrder:    req.DisplayOrder,
		IsVisible:       visible,
		Description:     req.Description,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, m)
}

func (h *ProfileHandler) listMappings(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ms, err := h.svc.ListMappings(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, ms)
}

func (h *ProfileHandler) updateMapping(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var patch model.MappingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	m, err := h.svc.UpdateMapping(c.Request.Context(), id, patch)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

func (h *ProfileHandler) removeMapping(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveMapping(c.Request.Context(), id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProfileHandler) activate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.ActivateProfile(c.Request.Context(), id); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"status": "active"})
}

func (h *ProfileHandler) deactivate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeactivateProfile(c.Request.Context(), id); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"status": "inactive"})
}

func (h *ProfileHandler) metricChoices(c *gin.Context) {
	locale := c.DefaultQuery("locale", "en")
	response.WriteData(c, http.StatusOK, h.svc.MetricChoices(locale))
}

// pathID parses the :id path parameter, writing the error response itself
// so handlers stay one-liners.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "id", Message: "must be a valid integer > 0"}}))
		return 0, false
	}
	return id, true
}
