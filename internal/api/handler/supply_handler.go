package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/service"
	"github.com/Hems566/eter-projectv1.0/pkg/response"
)

// SupplyHandler supply assignment endpoints.
type SupplyHandler struct {
	supplySvc service.SupplyService
}

func NewSupplyHandler(supplySvc service.SupplyService) *SupplyHandler {
	return &SupplyHandler{supplySvc: supplySvc}
}

type complianceRequest struct {
	Compliant *bool `json:"compliant" binding:"required"`
}

// Create
// POST /api/v1/assignments
func (h *SupplyHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateSupplyAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.supplySvc.Create(c.Request.Context(), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}

// Get
// GET /api/v1/assignments/:id
func (h *SupplyHandler) Get(c *gin.Context) {
	result, err := h.supplySvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// List
// GET /api/v1/assignments
func (h *SupplyHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		badRequest(c, err)
		return
	}

	list, total, err := h.supplySvc.List(c.Request.Context(), &page)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// ListReady compliant assignments still waiting for an engagement.
// GET /api/v1/assignments/ready
func (h *SupplyHandler) ListReady(c *gin.Context) {
	list, err := h.supplySvc.ListReady(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, list)
}

// Update
// PUT /api/v1/assignments/:id
func (h *SupplyHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.UpdateSupplyAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.supplySvc.Update(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// MarkCompliant
// PUT /api/v1/assignments/:id/compliance
func (h *SupplyHandler) MarkCompliant(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req complianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.supplySvc.MarkCompliant(c.Request.Context(), c.Param("id"), *req.Compliant, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}
