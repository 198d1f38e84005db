package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Hems566/eter-projectv1.0/internal/model"
)

// EngagementSummary aggregate counters for the engagement dashboard.
type EngagementSummary struct {
	Total         int64
	Active        int64
	Expired       int64
	ExpiringSoon  int64
	CurrentAmount decimal.Decimal // sum of displayed amounts
}

// EngagementRepository engagement data access.
type EngagementRepository interface {
	Create(ctx context.Context, engagement *model.Engagement) error
	// GetByID loads the engagement with assignment, request and supplier.
	GetByID(ctx context.Context, id string) (*model.Engagement, error)
	GetByIDForUpdate(ctx context.Context, id string) (*model.Engagement, error)
	GetByAssignment(ctx context.Context, assignmentID string) (*model.Engagement, error)
	// Update writes dates and conditions. CurrentAmount is not touched.
	Update(ctx context.Context, engagement *model.Engagement) error
	UpdateCurrentAmount(ctx context.Context, id string, amount decimal.Decimal) error
	List(ctx context.Context, offset, limit int) ([]model.Engagement, int64, error)
	// ListEndingBetween returns engagements whose end date is in [from, to], soonest first.
	ListEndingBetween(ctx context.Context, from, to time.Time) ([]model.Engagement, error)
	// ListEndedBefore returns engagements whose end date is strictly before day.
	ListEndedBefore(ctx context.Context, day time.Time) ([]model.Engagement, error)
	Summary(ctx context.Context, today, soon time.Time) (*EngagementSummary, error)
	LatestNumber(ctx context.Context, prefix string) (string, error)
}

type engagementRepo struct {
	db *gorm.DB
}

func NewEngagementRepo(db *gorm.DB) EngagementRepository {
	return &engagementRepo{db: db}
}

func (r *engagementRepo) Create(ctx context.Context, engagement *model.Engagement) error {
	return translateError(r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(engagement).Error)
}

func (r *engagementRepo) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Assignment").
		Preload("Assignment.Request").
		Preload("Assignment.Supplier")
}

func (r *engagementRepo) GetByID(ctx context.Context, id string) (*model.Engagement, error) {
	var engagement model.Engagement
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("engagement_id = ?", id).
		First(&engagement).Error
	if err != nil {
		return nil, err
	}
	return &engagement, nil
}

func (r *engagementRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Engagement, error) {
	var engagement model.Engagement
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("engagement_id = ?", id).
		First(&engagement).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &engagement, nil
}

func (r *engagementRepo) GetByAssignment(ctx context.Context, assignmentID string) (*model.Engagement, error) {
	var engagement model.Engagement
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		First(&engagement).Error
	if err != nil {
		return nil, err
	}
	return &engagement, nil
}

func (r *engagementRepo) Update(ctx context.Context, engagement *model.Engagement) error {
	return translateError(r.db.WithContext(ctx).
		Model(&model.Engagement{}).
		Where("engagement_id = ?", engagement.EngagementID).
		Updates(map[string]interface{}{
			"start_date":         engagement.StartDate,
			"end_date":           engagement.EndDate,
			"responsible_id":     engagement.ResponsibleID,
			"special_conditions": engagement.SpecialConditions,
			"updated_by":         engagement.UpdatedBy,
		}).Error)
}

func (r *engagementRepo) UpdateCurrentAmount(ctx context.Context, id string, amount decimal.Decimal) error {
	return translateError(r.db.WithContext(ctx).
		Model(&model.Engagement{}).
		Where("engagement_id = ?", id).
		Update("current_amount", amount).Error)
}

func (r *engagementRepo) List(ctx context.Context, offset, limit int) ([]model.Engagement, int64, error) {
	var engagements []model.Engagement
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Engagement{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.withDetails(db).
		Offset(offset).Limit(limit).
		Order("start_date DESC").
		Find(&engagements).Error; err != nil {
		return nil, 0, err
	}

	return engagements, total, nil
}

func (r *engagementRepo) ListEndingBetween(ctx context.Context, from, to time.Time) ([]model.Engagement, error) {
	var engagements []model.Engagement
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("end_date BETWEEN ? AND ?", from, to).
		Order("end_date ASC").
		Find(&engagements).Error
	return engagements, err
}

func (r *engagementRepo) ListEndedBefore(ctx context.Context, day time.Time) ([]model.Engagement, error) {
	var engagements []model.Engagement
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("end_date < ?", day).
		Order("end_date DESC").
		Find(&engagements).Error
	return engagements, err
}

func (r *engagementRepo) Summary(ctx context.Context, today, soon time.Time) (*EngagementSummary, error) {
	var row struct {
		Total        int64
		Active       int64
		Expired      int64
		ExpiringSoon int64
		Amount       decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&model.Engagement{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE end_date >= ?) AS active,
			COUNT(*) FILTER (WHERE end_date < ?) AS expired,
			COUNT(*) FILTER (WHERE end_date BETWEEN ? AND ?) AS expiring_soon,
			COALESCE(SUM(CASE WHEN current_amount = 0 THEN provisional_budget ELSE current_amount END), 0) AS amount`,
			today, today, today, soon).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &EngagementSummary{
		Total:         row.Total,
		Active:        row.Active,
		Expired:       row.Expired,
		ExpiringSoon:  row.ExpiringSoon,
		CurrentAmount: row.Amount,
	}, nil
}

func (r *engagementRepo) LatestNumber(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&model.Engagement{}).
		Where("number LIKE ?", prefix+"%").
		Order("LENGTH(number) DESC, number DESC").
		Limit(1).
		Pluck("number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}
