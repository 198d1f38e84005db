package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/service"
	"github.com/Hems566/eter-projectv1.0/pkg/response"
)

// LogSheetHandler log sheet and daily entry endpoints.
type LogSheetHandler struct {
	logSheetSvc service.LogSheetService
}

func NewLogSheetHandler(logSheetSvc service.LogSheetService) *LogSheetHandler {
	return &LogSheetHandler{logSheetSvc: logSheetSvc}
}

// CreateSheet
// POST /api/v1/log-sheets
func (h *LogSheetHandler) CreateSheet(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateLogSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.logSheetSvc.CreateSheet(c.Request.Context(), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}

// GetSheet
// GET /api/v1/log-sheets/:id
func (h *LogSheetHandler) GetSheet(c *gin.Context) {
	result, err := h.logSheetSvc.GetSheet(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// ListByEngagement
// GET /api/v1/engagements/:id/log-sheets
func (h *LogSheetHandler) ListByEngagement(c *gin.Context) {
	list, err := h.logSheetSvc.ListByEngagement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, list)
}

// RecordEntry
// POST /api/v1/log-sheets/:id/entries
func (h *LogSheetHandler) RecordEntry(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.DailyEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.logSheetSvc.RecordEntry(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}

// BulkRecord
// POST /api/v1/log-sheets/:id/entries/bulk
func (h *LogSheetHandler) BulkRecord(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.BulkEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.logSheetSvc.BulkRecord(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}

// FillPeriod
// POST /api/v1/log-sheets/:id/fill
func (h *LogSheetHandler) FillPeriod(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.logSheetSvc.FillPeriod(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateEntry
// PUT /api/v1/entries/:id
func (h *LogSheetHandler) UpdateEntry(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.DailyEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.logSheetSvc.UpdateEntry(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteEntry
// DELETE /api/v1/entries/:id
func (h *LogSheetHandler) DeleteEntry(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	if err := h.logSheetSvc.DeleteEntry(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, nil)
}

// MonthlyReport
// GET /api/v1/reports/monthly?month=2025-03&engagement_id=
func (h *LogSheetHandler) MonthlyReport(c *gin.Context) {
	var req dto.MonthlyReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.logSheetSvc.MonthlyReport(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}
