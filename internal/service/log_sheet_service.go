package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/model"
	"github.com/Hems566/eter-projectv1.0/internal/repository"
	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

// ── log sheet errors ──

var (
	ErrLogSheetNotFound   = pkgerrors.NotFound("log_sheet_not_found", "log sheet not found")
	ErrEntryNotFound      = pkgerrors.NotFound("daily_entry_not_found", "daily entry not found")
	ErrSheetNumberTaken   = pkgerrors.Conflict("sheet_number_taken", "this sheet number is already used")
	ErrSheetPeriodExists  = pkgerrors.Conflict("sheet_period_exists", "a log sheet already starts on this date for this line")
	ErrEntryDateTaken     = pkgerrors.Conflict("entry_date_taken", "an entry already exists for this date")
	ErrCannotKeepLogSheet = pkgerrors.Forbidden("cannot_keep_log_sheet", "only buyers and administrators record daily activity")
)

// LogSheetService records daily equipment activity and keeps billed amounts current.
type LogSheetService interface {
	CreateSheet(ctx context.Context, req *dto.CreateLogSheetRequest, actor Actor) (*dto.LogSheetResponse, error)
	// GetSheet returns the sheet with its entries in date order.
	GetSheet(ctx context.Context, id string) (*dto.LogSheetResponse, error)
	ListByEngagement(ctx context.Context, engagementID string) ([]dto.LogSheetResponse, error)

	RecordEntry(ctx context.Context, sheetID string, req *dto.DailyEntryRequest, actor Actor) (*dto.DailyEntryResponse, error)
	UpdateEntry(ctx context.Context, entryID string, req *dto.DailyEntryRequest, actor Actor) (*dto.DailyEntryResponse, error)
	DeleteEntry(ctx context.Context, entryID string, actor Actor) error
	// BulkRecord creates several entries in one transaction. Dates must be distinct.
	BulkRecord(ctx context.Context, sheetID string, req *dto.BulkEntriesRequest, actor Actor) (*dto.LogSheetResponse, error)
	// FillPeriod adds an empty entry for every day of the period that has none.
	FillPeriod(ctx context.Context, sheetID string, actor Actor) (*dto.LogSheetResponse, error)

	MonthlyReport(ctx context.Context, req *dto.MonthlyReportRequest) (*dto.MonthlyReportResponse, error)
}

type logSheetService struct {
	repo   *repository.Repository
	agg    AggregationService
	opts   Options
	logger *zap.Logger
}

func NewLogSheetService(repo *repository.Repository, agg AggregationService, opts Options, logger *zap.Logger) LogSheetService {
	return &logSheetService{repo: repo, agg: agg, opts: opts, logger: logger}
}

// ────────────────────── Sheets ──────────────────────

func (s *logSheetService) CreateSheet(ctx context.Context, req *dto.CreateLogSheetRequest, actor Actor) (*dto.LogSheetResponse, error) {
	if !actor.Capabilities.CanCreateEngagement {
		return nil, ErrCannotKeepLogSheet
	}
	periodStart, err := parseDate("period_start", req.PeriodStart)
	if err != nil {
		return nil, err
	}
	periodEnd, err := parseDate("period_end", req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	if periodEnd.Before(periodStart) {
		return nil, pkgerrors.Validation("period_end", "period end cannot be before period start")
	}
	sheetNumber := strings.TrimSpace(req.SheetNumber)
	if sheetNumber == "" {
		return nil, pkgerrors.Validation("sheet_number", "sheet number is required")
	}

	sheet := &model.DailyLogSheet{
		LogSheetID:   uuid.NewString(),
		EngagementID: req.EngagementID,
		LineID:       req.LineID,
		SheetNumber:  sheetNumber,
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
	}
	sheet.CreatedBy = &actor.UserID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		engagement, err := tx.Engagement.GetByIDForUpdate(ctx, req.EngagementID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEngagementNotFound
			}
			return err
		}
		if periodStart.Before(engagement.StartDate) || periodEnd.After(engagement.EndDate) {
			return pkgerrors.Validation("period",
				"the period must fall within the engagement (%s to %s)",
				formatDate(engagement.StartDate), formatDate(engagement.EndDate))
		}

		if err := s.checkLineBelongs(ctx, tx, engagement, req.LineID); err != nil {
			return err
		}

		taken, err := tx.LogSheet.SheetNumberTaken(ctx, sheetNumber)
		if err != nil {
			return fmt.Errorf("check sheet number: %w", err)
		}
		if taken {
			return ErrSheetNumberTaken
		}
		exists, err := tx.LogSheet.ExistsForPeriod(ctx, req.EngagementID, req.LineID, periodStart)
		if err != nil {
			return fmt.Errorf("check sheet period: %w", err)
		}
		if exists {
			return ErrSheetPeriodExists
		}

		return tx.LogSheet.Create(ctx, sheet)
	})
	if err != nil {
		s.logFailure("create log sheet failed", req.EngagementID, err)
		return nil, err
	}

	s.logger.Info("log sheet created",
		zap.String("log_sheet_id", sheet.LogSheetID),
		zap.String("engagement_id", req.EngagementID),
		zap.String("sheet_number", sheetNumber),
	)
	return s.GetSheet(ctx, sheet.LogSheetID)
}

func (s *logSheetService) GetSheet(ctx context.Context, id string) (*dto.LogSheetResponse, error) {
	sheet, err := s.repo.LogSheet.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLogSheetNotFound
		}
		s.logger.Error("get log sheet failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	entries, err := s.repo.DailyEntry.ListBySheet(ctx, id)
	if err != nil {
		s.logger.Error("list daily entries failed", zap.String("log_sheet_id", id), zap.Error(err))
		return nil, err
	}
	sheet.Entries = entries
	return toLogSheetResponse(sheet), nil
}

func (s *logSheetService) ListByEngagement(ctx context.Context, engagementID string) ([]dto.LogSheetResponse, error) {
	if _, err := s.repo.Engagement.GetByID(ctx, engagementID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEngagementNotFound
		}
		return nil, err
	}

	sheets, err := s.repo.LogSheet.ListByEngagement(ctx, engagementID)
	if err != nil {
		s.logger.Error("list log sheets failed", zap.String("engagement_id", engagementID), zap.Error(err))
		return nil, err
	}

	list := make([]dto.LogSheetResponse, 0, len(sheets))
	for i := range sheets {
		list = append(list, *toLogSheetResponse(&sheets[i]))
	}
	return list, nil
}

// ────────────────────── Entries ──────────────────────

func (s *logSheetService) RecordEntry(ctx context.Context, sheetID string, req *dto.DailyEntryRequest, actor Actor) (*dto.DailyEntryResponse, error) {
	if !actor.Capabilities.CanCreateEngagement {
		return nil, ErrCannotKeepLogSheet
	}
	input, err := parseEntryInput(req)
	if err != nil {
		return nil, err
	}

	var entry *model.DailyEntry
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		sheet, err := s.lockSheet(ctx, tx, sheetID)
		if err != nil {
			return err
		}
		if err := s.checkDateFree(ctx, tx, sheetID, input.date, ""); err != nil {
			return err
		}

		entry = &model.DailyEntry{EntryID: uuid.NewString(), LogSheetID: sheetID}
		entry.CreatedBy = &actor.UserID
		if err := s.applyEntry(sheet, entry, input); err != nil {
			return err
		}
		if err := tx.DailyEntry.Create(ctx, entry); err != nil {
			return err
		}

		_, err = s.agg.RefreshLogSheet(ctx, tx, sheetID)
		return err
	})
	if err != nil {
		s.logFailure("record daily entry failed", sheetID, err)
		return nil, err
	}

	return toDailyEntryResponse(entry), nil
}

func (s *logSheetService) UpdateEntry(ctx context.Context, entryID string, req *dto.DailyEntryRequest, actor Actor) (*dto.DailyEntryResponse, error) {
	if !actor.Capabilities.CanCreateEngagement {
		return nil, ErrCannotKeepLogSheet
	}
	input, err := parseEntryInput(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.getEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	var entry *model.DailyEntry
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		sheet, err := s.lockSheet(ctx, tx, existing.LogSheetID)
		if err != nil {
			return err
		}
		entry, err = tx.DailyEntry.GetByID(ctx, entryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return err
		}
		if formatDate(input.date) != formatDate(entry.EntryDate) {
			if err := s.checkDateFree(ctx, tx, sheet.LogSheetID, input.date, entryID); err != nil {
				return err
			}
		}

		entry.UpdatedBy = &actor.UserID
		if err := s.applyEntry(sheet, entry, input); err != nil {
			return err
		}
		if err := tx.DailyEntry.Update(ctx, entry); err != nil {
			return err
		}

		_, err = s.agg.RefreshLogSheet(ctx, tx, sheet.LogSheetID)
		return err
	})
	if err != nil {
		s.logFailure("update daily entry failed", entryID, err)
		return nil, err
	}

	return toDailyEntryResponse(entry), nil
}

func (s *logSheetService) DeleteEntry(ctx context.Context, entryID string, actor Actor) error {
	if !actor.Capabilities.CanCreateEngagement {
		return ErrCannotKeepLogSheet
	}
	existing, err := s.getEntry(ctx, entryID)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := s.lockSheet(ctx, tx, existing.LogSheetID); err != nil {
			return err
		}
		if err := tx.DailyEntry.Delete(ctx, entryID); err != nil {
			return err
		}
		_, err := s.agg.RefreshLogSheet(ctx, tx, existing.LogSheetID)
		return err
	})
	if err != nil {
		s.logFailure("delete daily entry failed", entryID, err)
		return err
	}

	s.logger.Info("daily entry deleted", zap.String("entry_id", entryID), zap.String("by", actor.UserID))
	return nil
}

func (s *logSheetService) BulkRecord(ctx context.Context, sheetID string, req *dto.BulkEntriesRequest, actor Actor) (*dto.LogSheetResponse, error) {
	if !actor.Capabilities.CanCreateEngagement {
		return nil, ErrCannotKeepLogSheet
	}
	if len(req.Entries) == 0 {
		return nil, pkgerrors.Validation("entries", "at least one entry is required")
	}

	inputs := make([]entryInput, 0, len(req.Entries))
	seen := make(map[string]bool, len(req.Entries))
	for i := range req.Entries {
		input, err := parseEntryInput(&req.Entries[i])
		if err != nil {
			return nil, err
		}
		day := formatDate(input.date)
		if seen[day] {
			return nil, pkgerrors.Validation("entries", "date %s appears more than once", day)
		}
		seen[day] = true
		inputs = append(inputs, input)
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		sheet, err := s.lockSheet(ctx, tx, sheetID)
		if err != nil {
			return err
		}
		for _, input := range inputs {
			if err := s.checkDateFree(ctx, tx, sheetID, input.date, ""); err != nil {
				return err
			}
			entry := &model.DailyEntry{EntryID: uuid.NewString(), LogSheetID: sheetID}
			entry.CreatedBy = &actor.UserID
			if err := s.applyEntry(sheet, entry, input); err != nil {
				return err
			}
			if err := tx.DailyEntry.Create(ctx, entry); err != nil {
				return err
			}
		}
		_, err = s.agg.RefreshLogSheet(ctx, tx, sheetID)
		return err
	})
	if err != nil {
		s.logFailure("bulk record entries failed", sheetID, err)
		return nil, err
	}

	s.logger.Info("daily entries recorded", zap.String("log_sheet_id", sheetID), zap.Int("count", len(inputs)))
	return s.GetSheet(ctx, sheetID)
}

func (s *logSheetService) FillPeriod(ctx context.Context, sheetID string, actor Actor) (*dto.LogSheetResponse, error) {
	if !actor.Capabilities.CanCreateEngagement {
		return nil, ErrCannotKeepLogSheet
	}

	created := 0
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		sheet, err := s.lockSheet(ctx, tx, sheetID)
		if err != nil {
			return err
		}
		entries, err := tx.DailyEntry.ListBySheet(ctx, sheetID)
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}
		have := make(map[string]bool, len(entries))
		for _, e := range entries {
			have[formatDate(e.EntryDate)] = true
		}

		for d := sheet.PeriodStart; !d.After(sheet.PeriodEnd); d = d.AddDate(0, 0, 1) {
			if have[formatDate(d)] {
				continue
			}
			entry := &model.DailyEntry{EntryID: uuid.NewString(), LogSheetID: sheetID}
			entry.CreatedBy = &actor.UserID
			if err := s.applyEntry(sheet, entry, entryInput{date: d}); err != nil {
				return err
			}
			if err := tx.DailyEntry.Create(ctx, entry); err != nil {
				return err
			}
			created++
		}
		_, err = s.agg.RefreshLogSheet(ctx, tx, sheetID)
		return err
	})
	if err != nil {
		s.logFailure("fill log sheet period failed", sheetID, err)
		return nil, err
	}

	s.logger.Info("log sheet period filled", zap.String("log_sheet_id", sheetID), zap.Int("created", created))
	return s.GetSheet(ctx, sheetID)
}

// ────────────────────── Reports ──────────────────────

func (s *logSheetService) MonthlyReport(ctx context.Context, req *dto.MonthlyReportRequest) (*dto.MonthlyReportResponse, error) {
	from, to, err := parseMonth("month", req.Month)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.DailyEntry.ListBetween(ctx, from, to, req.EngagementID)
	if err != nil {
		s.logger.Error("list entries for month failed", zap.String("month", req.Month), zap.Error(err))
		return nil, err
	}

	var work, breakdown, idle, fuel, amount decimal.Decimal
	worked := 0
	for _, e := range entries {
		work = work.Add(e.WorkHours)
		breakdown = breakdown.Add(e.BreakdownHours)
		idle = idle.Add(e.IdleHours)
		fuel = fuel.Add(e.FuelLiters)
		amount = amount.Add(e.Amount)
		if e.WorkHours.IsPositive() {
			worked++
		}
	}

	return &dto.MonthlyReportResponse{
		Month:          req.Month,
		EngagementID:   req.EngagementID,
		EntryCount:     len(entries),
		WorkedDays:     worked,
		WorkHours:      formatHours(work),
		BreakdownHours: formatHours(breakdown),
		IdleHours:      formatHours(idle),
		FuelLiters:     formatHours(fuel),
		Amount:         formatMoney(roundMoney(amount)),
	}, nil
}

// ── helpers ──

// entryInput is a validated DailyEntryRequest.
type entryInput struct {
	date       time.Time
	meterStart *int
	meterEnd   *int
	work       decimal.Decimal
	breakdown  decimal.Decimal
	idle       decimal.Decimal
	fuel       decimal.Decimal
	notes      string
}

func parseEntryInput(req *dto.DailyEntryRequest) (entryInput, error) {
	date, err := parseDate("entry_date", req.EntryDate)
	if err != nil {
		return entryInput{}, err
	}
	if err := validateHours(req.WorkHours, req.BreakdownHours, req.IdleHours); err != nil {
		return entryInput{}, err
	}
	if req.FuelLiters.IsNegative() {
		return entryInput{}, pkgerrors.Validation("fuel_liters", "fuel cannot be negative")
	}
	if req.MeterStart != nil && req.MeterEnd != nil && *req.MeterEnd < *req.MeterStart {
		return entryInput{}, pkgerrors.Validation("meter_end", "meter end cannot be lower than meter start")
	}
	return entryInput{
		date:       date,
		meterStart: req.MeterStart,
		meterEnd:   req.MeterEnd,
		work:       req.WorkHours,
		breakdown:  req.BreakdownHours,
		idle:       req.IdleHours,
		fuel:       req.FuelLiters,
		notes:      req.Notes,
	}, nil
}

// applyEntry copies the input onto entry and recomputes its amount. sheet must carry Line.CatalogItem and Engagement.
func (s *logSheetService) applyEntry(sheet *model.DailyLogSheet, entry *model.DailyEntry, in entryInput) error {
	if !sheet.Contains(in.date) {
		return pkgerrors.Validation("entry_date", "%s is outside the sheet period (%s to %s)",
			formatDate(in.date), formatDate(sheet.PeriodStart), formatDate(sheet.PeriodEnd))
	}
	entry.EntryDate = in.date
	entry.Weekday = model.WeekdayName(in.date)
	entry.MeterStart = in.meterStart
	entry.MeterEnd = in.meterEnd
	entry.WorkHours = in.work
	entry.BreakdownHours = in.breakdown
	entry.IdleHours = in.idle
	entry.FuelLiters = in.fuel
	entry.Notes = in.notes

	_, err := s.agg.RecomputeEntry(entry, sheet.Line.CatalogItem, sheet.Engagement)
	return err
}

// lockSheet takes the row lock, then loads the line and engagement needed for billing.
func (s *logSheetService) lockSheet(ctx context.Context, tx *repository.Repository, id string) (*model.DailyLogSheet, error) {
	if _, err := tx.LogSheet.GetByIDForUpdate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLogSheetNotFound
		}
		return nil, err
	}
	sheet, err := tx.LogSheet.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load log sheet: %w", err)
	}
	if sheet.Line == nil || sheet.Line.CatalogItem == nil || sheet.Engagement == nil {
		return nil, fmt.Errorf("log sheet %s is missing its line or engagement", id)
	}
	return sheet, nil
}

func (s *logSheetService) checkDateFree(ctx context.Context, tx *repository.Repository, sheetID string, date time.Time, excludeEntryID string) error {
	entries, err := tx.DailyEntry.ListBySheet(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	for _, e := range entries {
		if formatDate(e.EntryDate) == formatDate(date) && e.EntryID != excludeEntryID {
			return ErrEntryDateTaken
		}
	}
	return nil
}

func (s *logSheetService) checkLineBelongs(ctx context.Context, tx *repository.Repository, engagement *model.Engagement, lineID string) error {
	line, err := tx.RequestLine.GetByID(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Validation("line_id", "request line %s does not exist", lineID)
		}
		return err
	}
	assignment, err := tx.SupplyAssignment.GetByID(ctx, engagement.AssignmentID)
	if err != nil {
		return fmt.Errorf("load assignment: %w", err)
	}
	if line.RequestID != assignment.RequestID {
		return pkgerrors.Validation("line_id", "the line does not belong to the engaged request")
	}
	return nil
}

func (s *logSheetService) getEntry(ctx context.Context, id string) (*model.DailyEntry, error) {
	entry, err := s.repo.DailyEntry.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		s.logger.Error("get daily entry failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return entry, nil
}

func (s *logSheetService) logFailure(msg, id string, err error) {
	if pkgerrors.KindOf(err) != "" {
		return
	}
	s.logger.Error(msg, zap.String("id", id), zap.Error(err))
}

func toDailyEntryResponse(e *model.DailyEntry) *dto.DailyEntryResponse {
	return &dto.DailyEntryResponse{
		ID:             e.EntryID,
		LogSheetID:     e.LogSheetID,
		EntryDate:      formatDate(e.EntryDate),
		Weekday:        e.Weekday,
		MeterStart:     e.MeterStart,
		MeterEnd:       e.MeterEnd,
		WorkHours:      formatHours(e.WorkHours),
		BreakdownHours: formatHours(e.BreakdownHours),
		IdleHours:      formatHours(e.IdleHours),
		FuelLiters:     formatHours(e.FuelLiters),
		Amount:         formatMoney(e.Amount),
		Notes:          e.Notes,
	}
}

func toLogSheetResponse(sheet *model.DailyLogSheet) *dto.LogSheetResponse {
	resp := &dto.LogSheetResponse{
		ID:           sheet.LogSheetID,
		EngagementID: sheet.EngagementID,
		LineID:       sheet.LineID,
		SheetNumber:  sheet.SheetNumber,
		PeriodStart:  formatDate(sheet.PeriodStart),
		PeriodEnd:    formatDate(sheet.PeriodEnd),
		TotalAmount:  formatMoney(sheet.TotalAmount),
		CreatedAt:    formatTimestamp(sheet.CreatedAt),
	}
	for i := range sheet.Entries {
		resp.Entries = append(resp.Entries, *toDailyEntryResponse(&sheet.Entries[i]))
	}
	return resp
}
