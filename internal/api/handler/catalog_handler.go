package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/service"
	"github.com/Hems566/eter-projectv1.0/pkg/response"
)

// CatalogHandler equipment catalog and supplier endpoints.
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// activeOnly reads ?all=true; lists default to active records.
func activeOnly(c *gin.Context) bool {
	return c.Query("all") != "true"
}

// ── catalog items ──

// CreateItem
// POST /api/v1/catalog/items
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.catalogSvc.CreateItem(c.Request.Context(), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, item)
}

// ListItems
// GET /api/v1/catalog/items
func (h *CatalogHandler) ListItems(c *gin.Context) {
	items, err := h.catalogSvc.ListItems(c.Request.Context(), activeOnly(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, items)
}

// GetItem
// GET /api/v1/catalog/items/:id
func (h *CatalogHandler) GetItem(c *gin.Context) {
	item, err := h.catalogSvc.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, item)
}

// UpdateItem
// PUT /api/v1/catalog/items/:id
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.UpdateCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.catalogSvc.UpdateItem(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, item)
}

// ── suppliers ──

// CreateSupplier
// POST /api/v1/suppliers
func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	supplier, err := h.catalogSvc.CreateSupplier(c.Request.Context(), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, supplier)
}

// ListSuppliers
// GET /api/v1/suppliers
func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.catalogSvc.ListSuppliers(c.Request.Context(), activeOnly(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, suppliers)
}

// GetSupplier
// GET /api/v1/suppliers/:id
func (h *CatalogHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.catalogSvc.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, supplier)
}

// UpdateSupplier
// PUT /api/v1/suppliers/:id
func (h *CatalogHandler) UpdateSupplier(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	supplier, err := h.catalogSvc.UpdateSupplier(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, supplier)
}
