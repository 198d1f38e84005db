package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Hems566/eter-projectv1.0/internal/model"
	"github.com/Hems566/eter-projectv1.0/internal/repository"
)

// AggregationService recomputes derived amounts bottom-up.
//
// Every method runs on the caller's transaction repository, locks the parent
// row before reading child values, and writes only when the stored value
// differs. The bool result reports whether a write happened.
type AggregationService interface {
	// RecomputeLine refreshes line.Subtotal from its unit price snapshot.
	RecomputeLine(ctx context.Context, tx *repository.Repository, line *model.RequestLine, durationMonths int) (bool, error)
	// RecomputeRequestBudget sums line subtotals into the request budget.
	RecomputeRequestBudget(ctx context.Context, tx *repository.Repository, requestID string) (bool, error)
	// RefreshRequest recomputes every line of the request, then its budget.
	RefreshRequest(ctx context.Context, tx *repository.Repository, requestID string) (bool, error)
	// RecomputeEntry sets entry.Amount from the billing mode. It does not persist.
	RecomputeEntry(entry *model.DailyEntry, item *model.CatalogItem, engagement *model.Engagement) (bool, error)
	// RecomputeLogSheetTotal sums entry amounts into the sheet total.
	RecomputeLogSheetTotal(ctx context.Context, tx *repository.Repository, logSheetID string) (bool, error)
	// RecomputeEngagementAmount sums sheet totals into the engagement current amount.
	RecomputeEngagementAmount(ctx context.Context, tx *repository.Repository, engagementID string) (bool, error)
	// RefreshLogSheet recomputes the sheet total, then the engagement amount.
	RefreshLogSheet(ctx context.Context, tx *repository.Repository, logSheetID string) (bool, error)
}

type aggregationService struct {
	logger *zap.Logger
}

func NewAggregationService(logger *zap.Logger) AggregationService {
	return &aggregationService{logger: logger}
}

// ────────────────────── request side ──────────────────────

func (s *aggregationService) RecomputeLine(ctx context.Context, tx *repository.Repository, line *model.RequestLine, durationMonths int) (bool, error) {
	subtotal := LineSubtotal(line.UnitPrice, line.Quantity, durationMonths)
	if subtotal.Equal(line.Subtotal) {
		return false, nil
	}
	if err := tx.RequestLine.UpdateSubtotal(ctx, line.LineID, subtotal); err != nil {
		return false, fmt.Errorf("update line subtotal: %w", err)
	}
	line.Subtotal = subtotal
	return true, nil
}

func (s *aggregationService) RecomputeRequestBudget(ctx context.Context, tx *repository.Repository, requestID string) (bool, error) {
	request, err := tx.RentalRequest.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		return false, fmt.Errorf("lock request: %w", err)
	}

	sum, err := tx.RequestLine.SumSubtotals(ctx, requestID)
	if err != nil {
		return false, fmt.Errorf("sum line subtotals: %w", err)
	}
	sum = roundMoney(sum)

	if sum.Equal(request.ProvisionalBudget) {
		return false, nil
	}
	if err := tx.RentalRequest.UpdateBudget(ctx, requestID, sum); err != nil {
		return false, fmt.Errorf("update request budget: %w", err)
	}
	s.logger.Debug("request budget recomputed",
		zap.String("request_id", requestID),
		zap.String("budget", sum.StringFixed(moneyScale)),
	)
	return true, nil
}

func (s *aggregationService) RefreshRequest(ctx context.Context, tx *repository.Repository, requestID string) (bool, error) {
	request, err := tx.RentalRequest.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		return false, fmt.Errorf("lock request: %w", err)
	}

	lines, err := tx.RequestLine.ListByRequest(ctx, requestID)
	if err != nil {
		return false, fmt.Errorf("list lines: %w", err)
	}

	changed := false
	for i := range lines {
		wrote, err := s.RecomputeLine(ctx, tx, &lines[i], request.DurationMonths)
		if err != nil {
			return false, err
		}
		changed = changed || wrote
	}

	wrote, err := s.RecomputeRequestBudget(ctx, tx, requestID)
	if err != nil {
		return false, err
	}
	return changed || wrote, nil
}

// ────────────────────── billing side ──────────────────────

func (s *aggregationService) RecomputeEntry(entry *model.DailyEntry, item *model.CatalogItem, engagement *model.Engagement) (bool, error) {
	amount, err := EntryAmount(item.BillingMode, item.UnitPrice, entry.WorkHours, engagement.StartDate, engagement.EndDate)
	if err != nil {
		return false, err
	}
	if amount.Equal(entry.Amount) {
		return false, nil
	}
	entry.Amount = amount
	return true, nil
}

func (s *aggregationService) RecomputeLogSheetTotal(ctx context.Context, tx *repository.Repository, logSheetID string) (bool, error) {
	sheet, err := tx.LogSheet.GetByIDForUpdate(ctx, logSheetID)
	if err != nil {
		return false, fmt.Errorf("lock log sheet: %w", err)
	}

	sum, err := tx.DailyEntry.SumAmounts(ctx, logSheetID)
	if err != nil {
		return false, fmt.Errorf("sum entry amounts: %w", err)
	}
	sum = roundMoney(sum)

	if sum.Equal(sheet.TotalAmount) {
		return false, nil
	}
	if err := tx.LogSheet.UpdateTotal(ctx, logSheetID, sum); err != nil {
		return false, fmt.Errorf("update log sheet total: %w", err)
	}
	return true, nil
}

func (s *aggregationService) RecomputeEngagementAmount(ctx context.Context, tx *repository.Repository, engagementID string) (bool, error) {
	engagement, err := tx.Engagement.GetByIDForUpdate(ctx, engagementID)
	if err != nil {
		return false, fmt.Errorf("lock engagement: %w", err)
	}

	sum, err := tx.LogSheet.SumTotals(ctx, engagementID)
	if err != nil {
		return false, fmt.Errorf("sum log sheet totals: %w", err)
	}
	sum = roundMoney(sum)

	if sum.Equal(engagement.CurrentAmount) {
		return false, nil
	}
	if err := tx.Engagement.UpdateCurrentAmount(ctx, engagementID, sum); err != nil {
		return false, fmt.Errorf("update engagement amount: %w", err)
	}
	s.logger.Debug("engagement amount recomputed",
		zap.String("engagement_id", engagementID),
		zap.String("current_amount", sum.StringFixed(moneyScale)),
	)
	return true, nil
}

func (s *aggregationService) RefreshLogSheet(ctx context.Context, tx *repository.Repository, logSheetID string) (bool, error) {
	sheetChanged, err := s.RecomputeLogSheetTotal(ctx, tx, logSheetID)
	if err != nil {
		return false, err
	}

	sheet, err := tx.LogSheet.GetByIDForUpdate(ctx, logSheetID)
	if err != nil {
		return false, fmt.Errorf("lock log sheet: %w", err)
	}

	engagementChanged, err := s.RecomputeEngagementAmount(ctx, tx, sheet.EngagementID)
	if err != nil {
		return false, err
	}
	return sheetChanged || engagementChanged, nil
}
