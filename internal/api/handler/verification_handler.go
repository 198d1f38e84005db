package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/service"
	"github.com/Hems566/eter-projectv1.0/pkg/response"
)

// VerificationHandler verification sheet endpoints.
type VerificationHandler struct {
	verificationSvc service.VerificationService
}

func NewVerificationHandler(verificationSvc service.VerificationService) *VerificationHandler {
	return &VerificationHandler{verificationSvc: verificationSvc}
}

// Create
// POST /api/v1/verifications
func (h *VerificationHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.verificationSvc.Create(c.Request.Context(), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}

// Get
// GET /api/v1/verifications/:id
func (h *VerificationHandler) Get(c *gin.Context) {
	result, err := h.verificationSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// GetByLogSheet
// GET /api/v1/log-sheets/:id/verification
func (h *VerificationHandler) GetByLogSheet(c *gin.Context) {
	result, err := h.verificationSvc.GetByLogSheet(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// Discrepancy
// GET /api/v1/verifications/:id/discrepancy
func (h *VerificationHandler) Discrepancy(c *gin.Context) {
	result, err := h.verificationSvc.Discrepancy(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}
