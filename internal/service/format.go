package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/model"
	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

func formatMoney(d decimal.Decimal) string { return d.StringFixed(moneyScale) }

func formatHours(d decimal.Decimal) string { return d.StringFixed(hoursScale) }

func formatDate(t time.Time) string { return t.Format(model.DateLayout) }

func formatTimestamp(t time.Time) string { return t.Format(time.RFC3339) }

// parseDate reads a YYYY-MM-DD field into a UTC-midnight date.
func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, value)
	if err != nil {
		return time.Time{}, pkgerrors.Validation(field, "%s must be a date in YYYY-MM-DD format", field)
	}
	return t, nil
}

// parseMonth reads a YYYY-MM field and returns the first and last day of that month.
func parseMonth(field, value string) (time.Time, time.Time, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return time.Time{}, time.Time{}, pkgerrors.Validation(field, "%s must be a month in YYYY-MM format", field)
	}
	return t, t.AddDate(0, 1, -1), nil
}

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{
		ID:         u.UserID,
		Username:   u.Username,
		FullName:   u.FullName,
		Department: u.Department,
	}
}
