package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Hems566/eter-projectv1.0/internal/service"
	"github.com/Hems566/eter-projectv1.0/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler Excel export endpoints.
type ExportHandler struct {
	exportSvc service.ExportService
}

func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportLogSheet streams the workbook.
// GET /api/v1/log-sheets/:id/export
func (h *ExportHandler) ExportLogSheet(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportLogSheet(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ArchiveLogSheet stores the workbook and returns a presigned link.
// POST /api/v1/log-sheets/:id/archive
func (h *ExportHandler) ArchiveLogSheet(c *gin.Context) {
	result, err := h.exportSvc.ArchiveLogSheet(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}
