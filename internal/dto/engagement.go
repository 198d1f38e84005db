package dto

type CreateEngagementRequest struct {
	AssignmentID      string `json:"assignment_id"      binding:"required,uuid"`
	StartDate         string `json:"start_date"         binding:"required,datetime=2006-01-02"`
	ResponsibleID     string `json:"responsible_id"     binding:"omitempty,uuid"`
	SpecialConditions string `json:"special_conditions"`
}

type UpdateEngagementRequest struct {
	StartDate         *string `json:"start_date"         binding:"omitempty,datetime=2006-01-02"`
	SpecialConditions *string `json:"special_conditions"`
}

type ExpiringListRequest struct {
	WithinDays *int `form:"within_days" binding:"omitempty,min=0,max=365"`
}

type EngagementResponse struct {
	ID                string `json:"id"`
	Number            string `json:"number"`
	AssignmentID      string `json:"assignment_id"`
	RequestNumber     string `json:"request_number,omitempty"`
	SupplierName      string `json:"supplier_name,omitempty"`
	UnitID            string `json:"unit_id,omitempty"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	ProvisionalBudget string `json:"provisional_budget"`
	CurrentAmount     string `json:"current_amount"`
	DaysRemaining     int    `json:"days_remaining"`
	ResponsibleID     string `json:"responsible_id"`
	SpecialConditions string `json:"special_conditions"`
	CreatedAt         string `json:"created_at"`
}

// EngagementTotalsResponse budget snapshot next to the live amount.
type EngagementTotalsResponse struct {
	EngagementID      string `json:"engagement_id"`
	ProvisionalBudget string `json:"provisional_budget"`
	CurrentAmount     string `json:"current_amount"`
	BilledAmount      string `json:"billed_amount"`
	DaysRemaining     int    `json:"days_remaining"`
}

type EngagementStatsResponse struct {
	Total         int64  `json:"total"`
	Active        int64  `json:"active"`
	Expired       int64  `json:"expired"`
	ExpiringSoon  int64  `json:"expiring_soon"`
	CurrentAmount string `json:"current_amount"`
}
