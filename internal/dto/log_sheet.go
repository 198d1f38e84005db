package dto

import "github.com/shopspring/decimal"

type CreateLogSheetRequest struct {
	EngagementID string `json:"engagement_id" binding:"required,uuid"`
	LineID       string `json:"line_id"       binding:"required,uuid"`
	SheetNumber  string `json:"sheet_number"  binding:"required,max=50"`
	PeriodStart  string `json:"period_start"  binding:"required,datetime=2006-01-02"`
	PeriodEnd    string `json:"period_end"    binding:"required,datetime=2006-01-02"`
}

// DailyEntryRequest one day of a log sheet. Hours default to zero.
type DailyEntryRequest struct {
	EntryDate      string          `json:"entry_date"      binding:"required,datetime=2006-01-02"`
	MeterStart     *int            `json:"meter_start"     binding:"omitempty,min=0"`
	MeterEnd       *int            `json:"meter_end"       binding:"omitempty,min=0"`
	WorkHours      decimal.Decimal `json:"work_hours"`
	BreakdownHours decimal.Decimal `json:"breakdown_hours"`
	IdleHours      decimal.Decimal `json:"idle_hours"`
	FuelLiters     decimal.Decimal `json:"fuel_liters"`
	Notes          string          `json:"notes"`
}

type BulkEntriesRequest struct {
	Entries []DailyEntryRequest `json:"entries" binding:"required,min=1,dive"`
}

type MonthlyReportRequest struct {
	Month        string `form:"month"         binding:"required,datetime=2006-01"`
	EngagementID string `form:"engagement_id" binding:"omitempty,uuid"`
}

type DailyEntryResponse struct {
	ID             string `json:"id"`
	LogSheetID     string `json:"log_sheet_id"`
	EntryDate      string `json:"entry_date"`
	Weekday        string `json:"weekday"`
	MeterStart     *int   `json:"meter_start,omitempty"`
	MeterEnd       *int   `json:"meter_end,omitempty"`
	WorkHours      string `json:"work_hours"`
	BreakdownHours string `json:"breakdown_hours"`
	IdleHours      string `json:"idle_hours"`
	FuelLiters     string `json:"fuel_liters"`
	Amount         string `json:"amount"`
	Notes          string `json:"notes"`
}

type LogSheetResponse struct {
	ID           string               `json:"id"`
	EngagementID string               `json:"engagement_id"`
	LineID       string               `json:"line_id"`
	SheetNumber  string               `json:"sheet_number"`
	PeriodStart  string               `json:"period_start"`
	PeriodEnd    string               `json:"period_end"`
	TotalAmount  string               `json:"total_amount"`
	Entries      []DailyEntryResponse `json:"entries,omitempty"`
	CreatedAt    string               `json:"created_at"`
}

// MonthlyReportResponse totals for one calendar month.
type MonthlyReportResponse struct {
	Month          string `json:"month"`
	EngagementID   string `json:"engagement_id,omitempty"`
	EntryCount     int    `json:"entry_count"`
	WorkedDays     int    `json:"worked_days"`
	WorkHours      string `json:"work_hours"`
	BreakdownHours string `json:"breakdown_hours"`
	IdleHours      string `json:"idle_hours"`
	FuelLiters     string `json:"fuel_liters"`
	Amount         string `json:"amount"`
}

// ArchiveResponse location of an archived export.
type ArchiveResponse struct {
	ObjectName string `json:"object_name"`
	URL        string `json:"url"`
	ExpiresAt  string `json:"expires_at"`
}
