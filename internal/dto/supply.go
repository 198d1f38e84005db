package dto

type CreateSupplyAssignmentRequest struct {
	RequestID     string `json:"request_id"     binding:"required,uuid"`
	SupplierID    string `json:"supplier_id"    binding:"required,uuid"`
	AssignedOn    string `json:"assigned_on"    binding:"required,datetime=2006-01-02"`
	UnitID        string `json:"unit_id"        binding:"required,max=20"`
	Compliant     bool   `json:"compliant"`
	ResponsibleID string `json:"responsible_id" binding:"omitempty,uuid"`
	Notes         string `json:"notes"`
}

type UpdateSupplyAssignmentRequest struct {
	SupplierID *string `json:"supplier_id" binding:"omitempty,uuid"`
	AssignedOn *string `json:"assigned_on" binding:"omitempty,datetime=2006-01-02"`
	UnitID     *string `json:"unit_id"     binding:"omitempty,max=20"`
	Compliant  *bool   `json:"compliant"`
	Notes      *string `json:"notes"`
}

type SupplyAssignmentResponse struct {
	ID            string            `json:"id"`
	RequestID     string            `json:"request_id"`
	RequestNumber string            `json:"request_number,omitempty"`
	Supplier      *SupplierResponse `json:"supplier,omitempty"`
	AssignedOn    string            `json:"assigned_on"`
	UnitID        string            `json:"unit_id"`
	Compliant     bool              `json:"compliant"`
	ResponsibleID string            `json:"responsible_id"`
	Notes         string            `json:"notes"`
	HasEngagement bool              `json:"has_engagement"`
	CreatedAt     string            `json:"created_at"`
}
