package dto

import "github.com/shopspring/decimal"

type CreateVerificationRequest struct {
	LogSheetID            string          `json:"log_sheet_id"            binding:"required,uuid"`
	Site                  string          `json:"site"                    binding:"required,max=200"`
	MonthYear             string          `json:"month_year"              binding:"required,datetime=2006-01"`
	VerifiedOn            string          `json:"verified_on"             binding:"required,datetime=2006-01-02"`
	VerifierName          string          `json:"verifier_name"           binding:"required,max=150"`
	DeclaredFuel          decimal.Decimal `json:"declared_fuel"`
	DeclaredBillableHours int             `json:"declared_billable_hours" binding:"min=0"`
	Conforming            bool            `json:"conforming"`
	Notes                 string          `json:"notes"`
}

type VerificationResponse struct {
	ID                    string `json:"id"`
	LogSheetID            string `json:"log_sheet_id"`
	Site                  string `json:"site"`
	MonthYear             string `json:"month_year"`
	VerifiedOn            string `json:"verified_on"`
	VerifierName          string `json:"verifier_name"`
	DeclaredFuel          string `json:"declared_fuel"`
	DeclaredBillableHours int    `json:"declared_billable_hours"`
	Conforming            bool   `json:"conforming"`
	Notes                 string `json:"notes"`
}

// DiscrepancyResponse declared totals next to the totals computed from entries.
type DiscrepancyResponse struct {
	VerificationID     string `json:"verification_id"`
	LogSheetID         string `json:"log_sheet_id"`
	ComputedWorkedDays int    `json:"computed_worked_days"`
	ComputedWorkHours  string `json:"computed_work_hours"`
	ComputedFuel       string `json:"computed_fuel"`
	DeclaredHours      int    `json:"declared_billable_hours"`
	DeclaredFuel       string `json:"declared_fuel"`
	HoursMatch         bool   `json:"hours_match"`
	FuelMatch          bool   `json:"fuel_match"`
	DeclaredConforming bool   `json:"declared_conforming"`
}
