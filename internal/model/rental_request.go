package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus is the workflow state of a rental request.
type RequestStatus string

const (
	RequestDraft      RequestStatus = "DRAFT"
	RequestSubmitted  RequestStatus = "SUBMITTED"
	RequestValidated  RequestStatus = "VALIDATED"
	RequestRejected   RequestStatus = "REJECTED"
	RequestSupplied   RequestStatus = "SUPPLIED"
	RequestContracted RequestStatus = "CONTRACTED"
)

// AllRequestStatuses in workflow order.
var AllRequestStatuses = []RequestStatus{
	RequestDraft, RequestSubmitted, RequestValidated, RequestRejected, RequestSupplied, RequestContracted,
}

// LinesEditable reports whether lines and header fields may still change.
func (s RequestStatus) LinesEditable() bool {
	return s == RequestDraft || s == RequestRejected
}

// DaysPerMonth is the fixed month length used for every duration computation.
const DaysPerMonth = 30

// Duration bounds in months.
const (
	MinDurationMonths = 1
	MaxDurationMonths = 6
)

// RentalRequest table rental_requests.
type RentalRequest struct {
	RequestID         string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	Number            string          `gorm:"type:varchar(20);not null;uniqueIndex"          json:"number"`
	RequestDate       time.Time       `gorm:"type:date;not null"                             json:"request_date"`
	OwnerID           string          `gorm:"type:uuid;not null;index"                       json:"owner_id"`
	Department        string          `gorm:"type:varchar(3)"                                json:"department"`
	Site              string          `gorm:"type:varchar(200);not null"                     json:"site"`
	DurationMonths    int             `gorm:"not null"                                       json:"duration_months"`
	ProvisionalBudget decimal.Decimal `gorm:"type:numeric(15,3);not null;default:0"          json:"provisional_budget"`
	Status            RequestStatus   `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Observations      string          `gorm:"type:text"                                      json:"observations"`
	ValidatedAt       *time.Time      `json:"validated_at,omitempty"`
	ValidatorID       *string         `gorm:"type:uuid"                                      json:"validator_id,omitempty"`
	VersionedModel

	Owner *User         `gorm:"foreignKey:OwnerID;references:UserID"     json:"owner,omitempty"`
	Lines []RequestLine `gorm:"foreignKey:RequestID;references:RequestID" json:"lines,omitempty"`
}

func (RentalRequest) TableName() string { return "rental_requests" }

// RequestLine table request_lines. UnitPrice is copied from the catalog when the line is created.
type RequestLine struct {
	LineID        string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"line_id"`
	RequestID     string          `gorm:"type:uuid;not null;index"                       json:"request_id"`
	CatalogItemID string          `gorm:"type:uuid;not null"                             json:"catalog_item_id"`
	Quantity      int             `gorm:"not null"                                       json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(15,3);not null"                    json:"unit_price"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(15,3);not null;default:0"          json:"subtotal"`
	Notes         string          `gorm:"type:text"                                      json:"notes"`
	BaseModel

	CatalogItem *CatalogItem `gorm:"foreignKey:CatalogItemID;references:CatalogItemID" json:"catalog_item,omitempty"`
}

func (RequestLine) TableName() string { return "request_lines" }
