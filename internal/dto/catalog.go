package dto

import (
	"github.com/shopspring/decimal"

	"github.com/Hems566/eter-projectv1.0/internal/model"
)

// ── catalog items ──

type CreateCatalogItemRequest struct {
	Category    model.EquipmentCategory `json:"category"     binding:"required"`
	BillingMode model.BillingMode       `json:"billing_mode" binding:"required"`
	UnitPrice   decimal.Decimal         `json:"unit_price"`
	Notes       string                  `json:"notes"`
}

type UpdateCatalogItemRequest struct {
	BillingMode *model.BillingMode `json:"billing_mode"`
	UnitPrice   *decimal.Decimal   `json:"unit_price"`
	Notes       *string            `json:"notes"`
	IsActive    *bool              `json:"is_active"`
}

type CatalogItemResponse struct {
	ID          string                  `json:"id"`
	Category    model.EquipmentCategory `json:"category"`
	BillingMode model.BillingMode       `json:"billing_mode"`
	UnitPrice   string                  `json:"unit_price"`
	Notes       string                  `json:"notes"`
	IsActive    bool                    `json:"is_active"`
}

// ── suppliers ──

type CreateSupplierRequest struct {
	TaxID   string `json:"tax_id"  binding:"required,len=8,number"`
	Name    string `json:"name"    binding:"required,max=200"`
	Phone   string `json:"phone"   binding:"omitempty,max=20"`
	Address string `json:"address"`
	Email   string `json:"email"   binding:"omitempty,email"`
}

type UpdateSupplierRequest struct {
	Name     *string `json:"name"     binding:"omitempty,max=200"`
	Phone    *string `json:"phone"    binding:"omitempty,max=20"`
	Address  *string `json:"address"`
	Email    *string `json:"email"    binding:"omitempty,email"`
	IsActive *bool   `json:"is_active"`
}

type SupplierResponse struct {
	ID       string `json:"id"`
	TaxID    string `json:"tax_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}
