package model

import "time"

// SupplyAssignment table supply_assignments. One per validated request.
type SupplyAssignment struct {
	AssignmentID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	RequestID     string    `gorm:"type:uuid;not null;uniqueIndex"                 json:"request_id"`
	SupplierID    string    `gorm:"type:uuid;not null;index"                       json:"supplier_id"`
	AssignedOn    time.Time `gorm:"type:date;not null"                             json:"assigned_on"`
	UnitID        string    `gorm:"type:varchar(20);not null"                      json:"unit_id"`
	Compliant     bool      `gorm:"not null;default:false"                         json:"compliant"`
	ResponsibleID string    `gorm:"type:uuid;not null"                             json:"responsible_id"`
	Notes         string    `gorm:"type:text"                                      json:"notes"`
	BaseModel

	Request  *RentalRequest `gorm:"foreignKey:RequestID;references:RequestID"   json:"request,omitempty"`
	Supplier *Supplier      `gorm:"foreignKey:SupplierID;references:SupplierID" json:"supplier,omitempty"`
}

func (SupplyAssignment) TableName() string { return "supply_assignments" }
