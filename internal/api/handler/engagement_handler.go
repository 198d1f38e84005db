package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/service"
	"github.com/Hems566/eter-projectv1.0/pkg/response"
)

// EngagementHandler engagement endpoints.
type EngagementHandler struct {
	engagementSvc service.EngagementService
}

func NewEngagementHandler(engagementSvc service.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagementSvc: engagementSvc}
}

// Create
// POST /api/v1/engagements
func (h *EngagementHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.engagementSvc.Create(c.Request.Context(), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}

// Get
// GET /api/v1/engagements/:id
func (h *EngagementHandler) Get(c *gin.Context) {
	result, err := h.engagementSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// List
// GET /api/v1/engagements
func (h *EngagementHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		badRequest(c, err)
		return
	}

	list, total, err := h.engagementSvc.List(c.Request.Context(), &page)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// Update
// PUT /api/v1/engagements/:id
func (h *EngagementHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.UpdateEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.engagementSvc.Update(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// Totals
// GET /api/v1/engagements/:id/totals
func (h *EngagementHandler) Totals(c *gin.Context) {
	result, err := h.engagementSvc.GetTotals(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// ListExpiring
// GET /api/v1/engagements/expiring?within_days=
func (h *EngagementHandler) ListExpiring(c *gin.Context) {
	var req dto.ExpiringListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	list, err := h.engagementSvc.ListExpiring(c.Request.Context(), req.WithinDays)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, list)
}

// ListExpired
// GET /api/v1/engagements/expired
func (h *EngagementHandler) ListExpired(c *gin.Context) {
	list, err := h.engagementSvc.ListExpired(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, list)
}

// Stats
// GET /api/v1/engagements/stats
func (h *EngagementHandler) Stats(c *gin.Context) {
	stats, err := h.engagementSvc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, stats)
}
