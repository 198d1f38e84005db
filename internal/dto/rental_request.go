package dto

import "github.com/Hems566/eter-projectv1.0/internal/model"

// RequestLineInput one equipment line of a request.
type RequestLineInput struct {
	CatalogItemID string `json:"catalog_item_id" binding:"required,uuid"`
	Quantity      int    `json:"quantity"        binding:"required,min=1"`
	Notes         string `json:"notes"`
}

type CreateRentalRequestRequest struct {
	Site           string             `json:"site"            binding:"required,max=200"`
	DurationMonths int                `json:"duration_months" binding:"required,min=1,max=6"`
	Lines          []RequestLineInput `json:"lines"           binding:"required,min=1,dive"`
}

// UpdateRentalRequestRequest replaces the header and, when Lines is non-nil, every line.
type UpdateRentalRequestRequest struct {
	Site           *string            `json:"site"            binding:"omitempty,max=200"`
	DurationMonths *int               `json:"duration_months" binding:"omitempty,min=1,max=6"`
	Lines          []RequestLineInput `json:"lines"           binding:"omitempty,dive"`
}

// DecisionOutcome of a validation decision.
type DecisionOutcome string

const (
	DecisionApprove DecisionOutcome = "approve"
	DecisionReject  DecisionOutcome = "reject"
)

type DecideRequest struct {
	Outcome DecisionOutcome `json:"outcome" binding:"required,oneof=approve reject"`
	Note    string          `json:"note"    binding:"max=2000"`
}

type RentalRequestListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=DRAFT SUBMITTED VALIDATED REJECTED SUPPLIED CONTRACTED"`
	Mine   bool   `form:"mine"`
	PaginationRequest
}

type RequestLineResponse struct {
	ID            string                  `json:"id"`
	CatalogItemID string                  `json:"catalog_item_id"`
	Category      model.EquipmentCategory `json:"category,omitempty"`
	BillingMode   model.BillingMode       `json:"billing_mode,omitempty"`
	Quantity      int                     `json:"quantity"`
	UnitPrice     string                  `json:"unit_price"`
	Subtotal      string                  `json:"subtotal"`
	Notes         string                  `json:"notes"`
}

type RentalRequestResponse struct {
	ID                string                `json:"id"`
	Number            string                `json:"number"`
	RequestDate       string                `json:"request_date"`
	Owner             *UserBrief            `json:"owner,omitempty"`
	OwnerID           string                `json:"owner_id"`
	Department        string                `json:"department"`
	Site              string                `json:"site"`
	DurationMonths    int                   `json:"duration_months"`
	ProvisionalBudget string                `json:"provisional_budget"`
	Status            model.RequestStatus   `json:"status"`
	Observations      string                `json:"observations"`
	ValidatedAt       *string               `json:"validated_at,omitempty"`
	ValidatorID       *string               `json:"validator_id,omitempty"`
	Lines             []RequestLineResponse `json:"lines,omitempty"`
	Version           int                   `json:"version"`
	CreatedAt         string                `json:"created_at"`
}

// RequestStatsResponse counts per status.
type RequestStatsResponse struct {
	Total    int64                         `json:"total"`
	ByStatus map[model.RequestStatus]int64 `json:"by_status"`
}
