package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// VerificationSheet table verification_sheets. Totals are declared by the verifier.
type VerificationSheet struct {
	VerificationID        string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"verification_id"`
	LogSheetID            string          `gorm:"type:uuid;not null;uniqueIndex"                 json:"log_sheet_id"`
	Site                  string          `gorm:"type:varchar(200);not null"                     json:"site"`
	MonthYear             string          `gorm:"type:varchar(7);not null"                       json:"month_year"`
	VerifiedOn            time.Time       `gorm:"type:date;not null"                             json:"verified_on"`
	VerifierName          string          `gorm:"type:varchar(150);not null"                     json:"verifier_name"`
	DeclaredFuel          decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"          json:"declared_fuel"`
	DeclaredBillableHours int             `gorm:"not null;default:0"                             json:"declared_billable_hours"`
	Conforming            bool            `gorm:"not null;default:false"                         json:"conforming"`
	Notes                 string          `gorm:"type:text"                                      json:"notes"`
	BaseModel

	LogSheet *DailyLogSheet `gorm:"foreignKey:LogSheetID;references:LogSheetID" json:"log_sheet,omitempty"`
}

func (VerificationSheet) TableName() string { return "verification_sheets" }
