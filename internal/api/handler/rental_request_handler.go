package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/service"
	"github.com/Hems566/eter-projectv1.0/pkg/response"
)

// RentalRequestHandler request and validation workflow endpoints.
type RentalRequestHandler struct {
	requestSvc service.RentalRequestService
}

func NewRentalRequestHandler(requestSvc service.RentalRequestService) *RentalRequestHandler {
	return &RentalRequestHandler{requestSvc: requestSvc}
}

// Create
// POST /api/v1/requests
func (h *RentalRequestHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateRentalRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.requestSvc.Create(c.Request.Context(), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}

// Get
// GET /api/v1/requests/:id
func (h *RentalRequestHandler) Get(c *gin.Context) {
	result, err := h.requestSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// List filters by status; requesters only see their department.
// GET /api/v1/requests?status=&mine=&page=&page_size=
func (h *RentalRequestHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.RentalRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	list, total, err := h.requestSvc.List(c.Request.Context(), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListPending requests awaiting a validation decision.
// GET /api/v1/requests/pending
func (h *RentalRequestHandler) ListPending(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	list, err := h.requestSvc.ListPending(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, list)
}

// Stats
// GET /api/v1/requests/stats
func (h *RentalRequestHandler) Stats(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	stats, err := h.requestSvc.Stats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, stats)
}

// Update
// PUT /api/v1/requests/:id
func (h *RentalRequestHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.UpdateRentalRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.requestSvc.Update(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete
// DELETE /api/v1/requests/:id
func (h *RentalRequestHandler) Delete(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	if err := h.requestSvc.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, nil)
}

// Submit
// POST /api/v1/requests/:id/submit
func (h *RentalRequestHandler) Submit(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.requestSvc.Submit(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// Withdraw
// POST /api/v1/requests/:id/withdraw
func (h *RentalRequestHandler) Withdraw(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.requestSvc.Withdraw(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// Decide approves or rejects.
// POST /api/v1/requests/:id/decision
func (h *RentalRequestHandler) Decide(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.requestSvc.Decide(c.Request.Context(), c.Param("id"), actor, req.Outcome, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}
