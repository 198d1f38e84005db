package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Hems566/eter-projectv1.0/internal/model"
)

// LogSheetRepository daily log sheet data access.
type LogSheetRepository interface {
	Create(ctx context.Context, sheet *model.DailyLogSheet) error
	// GetByID loads the sheet with its engagement and billed line (with catalog item).
	GetByID(ctx context.Context, id string) (*model.DailyLogSheet, error)
	GetByIDForUpdate(ctx context.Context, id string) (*model.DailyLogSheet, error)
	ExistsForPeriod(ctx context.Context, engagementID, lineID string, periodStart time.Time) (bool, error)
	SheetNumberTaken(ctx context.Context, sheetNumber string) (bool, error)
	CountByEngagement(ctx context.Context, engagementID string) (int64, error)
	ListByEngagement(ctx context.Context, engagementID string) ([]model.DailyLogSheet, error)
	UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error
	SumTotals(ctx context.Context, engagementID string) (decimal.Decimal, error)
}

// DailyEntryRepository daily entry data access.
type DailyEntryRepository interface {
	Create(ctx context.Context, entry *model.DailyEntry) error
	GetByID(ctx context.Context, id string) (*model.DailyEntry, error)
	ListBySheet(ctx context.Context, logSheetID string) ([]model.DailyEntry, error)
	CountBySheet(ctx context.Context, logSheetID string) (int64, error)
	// ListBetween returns entries dated in [from, to], optionally restricted to one engagement.
	ListBetween(ctx context.Context, from, to time.Time, engagementID string) ([]model.DailyEntry, error)
	Update(ctx context.Context, entry *model.DailyEntry) error
	Delete(ctx context.Context, id string) error
	SumAmounts(ctx context.Context, logSheetID string) (decimal.Decimal, error)
}

// ── DailyLogSheet ──

type logSheetRepo struct {
	db *gorm.DB
}

func NewLogSheetRepo(db *gorm.DB) LogSheetRepository {
	return &logSheetRepo{db: db}
}

func (r *logSheetRepo) Create(ctx context.Context, sheet *model.DailyLogSheet) error {
	return translateError(r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(sheet).Error)
}

func (r *logSheetRepo) GetByID(ctx context.Context, id string) (*model.DailyLogSheet, error) {
	var sheet model.DailyLogSheet
	err := r.db.WithContext(ctx).
		Preload("Engagement").
		Preload("Engagement.Assignment").
		Preload("Engagement.Assignment.Supplier").
		Preload("Line").
		Preload("Line.CatalogItem").
		Where("log_sheet_id = ?", id).
		First(&sheet).Error
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (r *logSheetRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.DailyLogSheet, error) {
	var sheet model.DailyLogSheet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("log_sheet_id = ?", id).
		First(&sheet).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &sheet, nil
}

func (r *logSheetRepo) ExistsForPeriod(ctx context.Context, engagementID, lineID string, periodStart time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.DailyLogSheet{}).
		Where("engagement_id = ? AND line_id = ? AND period_start = ?", engagementID, lineID, periodStart).
		Count(&n).Error
	return n > 0, err
}

func (r *logSheetRepo) SheetNumberTaken(ctx context.Context, sheetNumber string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.DailyLogSheet{}).
		Where("UPPER(sheet_number) = ?", strings.ToUpper(sheetNumber)).
		Count(&n).Error
	return n > 0, err
}

func (r *logSheetRepo) CountByEngagement(ctx context.Context, engagementID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.DailyLogSheet{}).
		Where("engagement_id = ?", engagementID).
		Count(&n).Error
	return n, err
}

func (r *logSheetRepo) ListByEngagement(ctx context.Context, engagementID string) ([]model.DailyLogSheet, error) {
	var sheets []model.DailyLogSheet
	err := r.db.WithContext(ctx).
		Preload("Line").
		Preload("Line.CatalogItem").
		Where("engagement_id = ?", engagementID).
		Order("period_start ASC").
		Find(&sheets).Error
	return sheets, err
}

func (r *logSheetRepo) UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error {
	return translateError(r.db.WithContext(ctx).
		Model(&model.DailyLogSheet{}).
		Where("log_sheet_id = ?", id).
		Update("total_amount", total).Error)
}

func (r *logSheetRepo) SumTotals(ctx context.Context, engagementID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.DailyLogSheet{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("engagement_id = ?", engagementID).
		Row().Scan(&sum)
	return sum, err
}

// ── DailyEntry ──

type dailyEntryRepo struct {
	db *gorm.DB
}

func NewDailyEntryRepo(db *gorm.DB) DailyEntryRepository {
	return &dailyEntryRepo{db: db}
}

func (r *dailyEntryRepo) Create(ctx context.Context, entry *model.DailyEntry) error {
	return translateError(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *dailyEntryRepo) GetByID(ctx context.Context, id string) (*model.DailyEntry, error) {
	var entry model.DailyEntry
	err := r.db.WithContext(ctx).
		Where("entry_id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *dailyEntryRepo) ListBySheet(ctx context.Context, logSheetID string) ([]model.DailyEntry, error) {
	var entries []model.DailyEntry
	err := r.db.WithContext(ctx).
		Where("log_sheet_id = ?", logSheetID).
		Order("entry_date ASC").
		Find(&entries).Error
	return entries, err
}

func (r *dailyEntryRepo) CountBySheet(ctx context.Context, logSheetID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.DailyEntry{}).
		Where("log_sheet_id = ?", logSheetID).
		Count(&n).Error
	return n, err
}

func (r *dailyEntryRepo) ListBetween(ctx context.Context, from, to time.Time, engagementID string) ([]model.DailyEntry, error) {
	var entries []model.DailyEntry
	db := r.db.WithContext(ctx).
		Where("daily_entries.entry_date BETWEEN ? AND ?", from, to)
	if engagementID != "" {
		db = db.Joins("JOIN daily_log_sheets s ON s.log_sheet_id = daily_entries.log_sheet_id").
			Where("s.engagement_id = ?", engagementID)
	}
	err := db.Order("daily_entries.entry_date ASC").Find(&entries).Error
	return entries, err
}

func (r *dailyEntryRepo) Update(ctx context.Context, entry *model.DailyEntry) error {
	return translateError(r.db.WithContext(ctx).
		Model(&model.DailyEntry{}).
		Where("entry_id = ?", entry.EntryID).
		Updates(map[string]interface{}{
			"entry_date":      entry.EntryDate,
			"weekday":         entry.Weekday,
			"meter_start":     entry.MeterStart,
			"meter_end":       entry.MeterEnd,
			"work_hours":      entry.WorkHours,
			"breakdown_hours": entry.BreakdownHours,
			"idle_hours":      entry.IdleHours,
			"fuel_liters":     entry.FuelLiters,
			"amount":          entry.Amount,
			"notes":           entry.Notes,
			"updated_by":      entry.UpdatedBy,
		}).Error)
}

func (r *dailyEntryRepo) Delete(ctx context.Context, id string) error {
	return translateError(r.db.WithContext(ctx).
		Where("entry_id = ?", id).
		Delete(&model.DailyEntry{}).Error)
}

func (r *dailyEntryRepo) SumAmounts(ctx context.Context, logSheetID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.DailyEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("log_sheet_id = ?", logSheetID).
		Row().Scan(&sum)
	return sum, err
}
