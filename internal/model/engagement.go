package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Engagement table engagements.
//
// ProvisionalBudget is frozen from the request at creation. CurrentAmount is the
// live sum of log sheet totals and is never written from the budget.
type Engagement struct {
	EngagementID      string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"engagement_id"`
	AssignmentID      string          `gorm:"type:uuid;not null;uniqueIndex"                 json:"assignment_id"`
	Number            string          `gorm:"type:varchar(20);not null;uniqueIndex"          json:"number"`
	StartDate         time.Time       `gorm:"type:date;not null"                             json:"start_date"`
	EndDate           time.Time       `gorm:"type:date;not null;index"                       json:"end_date"`
	ProvisionalBudget decimal.Decimal `gorm:"type:numeric(15,3);not null"                    json:"provisional_budget"`
	CurrentAmount     decimal.Decimal `gorm:"type:numeric(15,3);not null;default:0"          json:"current_amount"`
	ResponsibleID     string          `gorm:"type:uuid;not null"                             json:"responsible_id"`
	SpecialConditions string          `gorm:"type:text"                                      json:"special_conditions"`
	BaseModel

	Assignment *SupplyAssignment `gorm:"foreignKey:AssignmentID;references:AssignmentID" json:"assignment,omitempty"`
}

func (Engagement) TableName() string { return "engagements" }

// DisplayedAmount is the live rollup, or the budget snapshot while nothing has been billed.
func (e *Engagement) DisplayedAmount() decimal.Decimal {
	if e.CurrentAmount.IsZero() {
		return e.ProvisionalBudget
	}
	return e.CurrentAmount
}

// EndDateFor derives the end date from a start date and a duration in months.
func EndDateFor(start time.Time, durationMonths int) time.Time {
	return start.AddDate(0, 0, durationMonths*DaysPerMonth)
}
