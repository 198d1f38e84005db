package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxDailyHours caps work + breakdown + idle hours of one entry.
var MaxDailyHours = decimal.NewFromInt(10)

// DailyLogSheet table daily_log_sheets. One per (engagement, line, period start).
type DailyLogSheet struct {
	LogSheetID   string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_sheet_id"`
	EngagementID string          `gorm:"type:uuid;not null;index"                       json:"engagement_id"`
	LineID       string          `gorm:"type:uuid;not null"                             json:"line_id"`
	SheetNumber  string          `gorm:"type:varchar(50);not null"                      json:"sheet_number"`
	PeriodStart  time.Time       `gorm:"type:date;not null"                             json:"period_start"`
	PeriodEnd    time.Time       `gorm:"type:date;not null"                             json:"period_end"`
	TotalAmount  decimal.Decimal `gorm:"type:numeric(15,3);not null;default:0"          json:"total_amount"`
	BaseModel

	Engagement *Engagement  `gorm:"foreignKey:EngagementID;references:EngagementID" json:"engagement,omitempty"`
	Line       *RequestLine `gorm:"foreignKey:LineID;references:LineID"             json:"line,omitempty"`
	Entries    []DailyEntry `gorm:"foreignKey:LogSheetID;references:LogSheetID"     json:"entries,omitempty"`
}

func (DailyLogSheet) TableName() string { return "daily_log_sheets" }

// Contains reports whether d falls inside the sheet period.
func (s *DailyLogSheet) Contains(d time.Time) bool {
	return !d.Before(s.PeriodStart) && !d.After(s.PeriodEnd)
}

// DailyEntry table daily_entries. One per (log sheet, date).
type DailyEntry struct {
	EntryID        string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	LogSheetID     string          `gorm:"type:uuid;not null;index"                       json:"log_sheet_id"`
	EntryDate      time.Time       `gorm:"type:date;not null"                             json:"entry_date"`
	Weekday        string          `gorm:"type:varchar(10);not null"                      json:"weekday"`
	MeterStart     *int            `json:"meter_start,omitempty"`
	MeterEnd       *int            `json:"meter_end,omitempty"`
	WorkHours      decimal.Decimal `gorm:"type:numeric(4,2);not null;default:0"           json:"work_hours"`
	BreakdownHours decimal.Decimal `gorm:"type:numeric(4,2);not null;default:0"           json:"breakdown_hours"`
	IdleHours      decimal.Decimal `gorm:"type:numeric(4,2);not null;default:0"           json:"idle_hours"`
	FuelLiters     decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0"           json:"fuel_liters"`
	Amount         decimal.Decimal `gorm:"type:numeric(15,3);not null;default:0"          json:"amount"`
	Notes          string          `gorm:"type:text"                                      json:"notes"`
	BaseModel
}

func (DailyEntry) TableName() string { return "daily_entries" }

// TotalHours is work + breakdown + idle.
func (e *DailyEntry) TotalHours() decimal.Decimal {
	return e.WorkHours.Add(e.BreakdownHours).Add(e.IdleHours)
}

// WeekdayName returns the upper-case English day name of d.
func WeekdayName(d time.Time) string {
	switch d.Weekday() {
	case time.Monday:
		return "MONDAY"
	case time.Tuesday:
		return "TUESDAY"
	case time.Wednesday:
		return "WEDNESDAY"
	case time.Thursday:
		return "THURSDAY"
	case time.Friday:
		return "FRIDAY"
	case time.Saturday:
		return "SATURDAY"
	}
	return "SUNDAY"
}
