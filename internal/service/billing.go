package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hems566/eter-projectv1.0/internal/model"
	"github.com/Hems566/eter-projectv1.0/pkg/clock"
	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

const (
	moneyScale = 3
	hoursScale = 2
)

// roundMoney rounds half away from zero to 3 decimals.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}

// LineSubtotal is unit price × quantity × duration in days.
func LineSubtotal(unitPrice decimal.Decimal, quantity, durationMonths int) decimal.Decimal {
	days := decimal.NewFromInt(int64(durationMonths * model.DaysPerMonth))
	return roundMoney(unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Mul(days))
}

// EntryAmount dispatches on the billing mode.
//
//	PER_DAY   unit price when any work hour was logged, else 0
//	PER_HOUR  unit price × work hours
//	FLAT_RATE unit price spread evenly over every day of the engagement
func EntryAmount(mode model.BillingMode, unitPrice, workHours decimal.Decimal, engagementStart, engagementEnd time.Time) (decimal.Decimal, error) {
	switch mode {
	case model.BillingPerDay:
		if workHours.IsPositive() {
			return roundMoney(unitPrice), nil
		}
		return decimal.Zero, nil
	case model.BillingPerHour:
		return roundMoney(unitPrice.Mul(workHours)), nil
	case model.BillingFlatRate:
		days := clock.DaysBetween(engagementStart, engagementEnd) + 1
		if days <= 0 {
			return decimal.Zero, pkgerrors.Validation("engagement_dates",
				"engagement end date %s is before start date %s",
				engagementEnd.Format(model.DateLayout), engagementStart.Format(model.DateLayout))
		}
		return roundMoney(unitPrice.Div(decimal.NewFromInt(int64(days)))), nil
	}
	return decimal.Zero, pkgerrors.Validation("billing_mode", "unknown billing mode %q", mode)
}

// validateHours enforces each bucket in [0, 10] and their sum ≤ 10.
func validateHours(work, breakdown, idle decimal.Decimal) error {
	buckets := []struct {
		name  string
		value decimal.Decimal
	}{
		{"work_hours", work},
		{"breakdown_hours", breakdown},
		{"idle_hours", idle},
	}
	for _, b := range buckets {
		if b.value.IsNegative() || b.value.GreaterThan(model.MaxDailyHours) {
			return pkgerrors.Validation(b.name, "%s must be between 0 and 10, got %s", b.name, b.value.StringFixed(hoursScale))
		}
		if !b.value.Equal(b.value.Round(hoursScale)) {
			return pkgerrors.Validation(b.name, "%s allows at most 2 decimals", b.name)
		}
	}
	total := work.Add(breakdown).Add(idle)
	if total.GreaterThan(model.MaxDailyHours) {
		return pkgerrors.Validation("hours_total",
			"total hours (%s) exceed the 10 hour daily limit", total.StringFixed(hoursScale))
	}
	return nil
}
