package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

const (
	requestNumberPrefix    = "DL"
	engagementNumberPrefix = "CTL"
)

var errNumberTaken = pkgerrors.Conflict(pkgerrors.RuleDuplicateNumber, "")

// formatNumber renders PREFIX-YEAR-NNNN.
func formatNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

// nextNumber returns the number after the highest one issued for prefix and year.
func nextNumber(ctx context.Context, latest func(context.Context, string) (string, error), prefix string, year int) (string, error) {
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, year)
	last, err := latest(ctx, yearPrefix)
	if err != nil {
		return "", err
	}
	if last == "" {
		return formatNumber(prefix, year, 1), nil
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(last, yearPrefix))
	if err != nil {
		return "", fmt.Errorf("parse number %q: %w", last, err)
	}
	return formatNumber(prefix, year, seq+1), nil
}

// withNumberRetry re-runs fn while it fails on a generated-number collision.
// Each attempt must recompute the number inside its own transaction.
func withNumberRetry(attempts int, logger *zap.Logger, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, errNumberTaken) {
			return err
		}
		logger.Warn("generated number collided, retrying", zap.Int("attempt", attempt), zap.Error(err))
	}
	return err
}
