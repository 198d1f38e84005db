package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Hems566/eter-projectv1.0/internal/model"
	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

// RequestFilter narrows request listings. Empty fields are ignored.
type RequestFilter struct {
	OwnerID    string
	Department string
	Status     model.RequestStatus
}

// RentalRequestRepository rental request data access.
type RentalRequestRepository interface {
	Create(ctx context.Context, request *model.RentalRequest) error
	// GetByID loads the request with its owner and lines.
	GetByID(ctx context.Context, id string) (*model.RentalRequest, error)
	// GetByIDForUpdate locks the request row (SELECT ... FOR UPDATE). Call inside Transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*model.RentalRequest, error)
	// Update writes header fields with an optimistic version check. Budget is not touched.
	Update(ctx context.Context, request *model.RentalRequest) error
	UpdateBudget(ctx context.Context, id string, budget decimal.Decimal) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter RequestFilter, offset, limit int) ([]model.RentalRequest, int64, error)
	CountByStatus(ctx context.Context, filter RequestFilter) (map[model.RequestStatus]int64, error)
	// LatestNumber returns the highest number starting with prefix, or "" when none exists.
	LatestNumber(ctx context.Context, prefix string) (string, error)
}

// RequestLineRepository request line data access.
type RequestLineRepository interface {
	Create(ctx context.Context, line *model.RequestLine) error
	GetByID(ctx context.Context, id string) (*model.RequestLine, error)
	ListByRequest(ctx context.Context, requestID string) ([]model.RequestLine, error)
	UpdateSubtotal(ctx context.Context, id string, subtotal decimal.Decimal) error
	DeleteByRequest(ctx context.Context, requestID string) error
	SumSubtotals(ctx context.Context, requestID string) (decimal.Decimal, error)
}

// ── RentalRequest ──

type rentalRequestRepo struct {
	db *gorm.DB
}

func NewRentalRequestRepo(db *gorm.DB) RentalRequestRepository {
	return &rentalRequestRepo{db: db}
}

func (r *rentalRequestRepo) Create(ctx context.Context, request *model.RentalRequest) error {
	return translateError(r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(request).Error)
}

func (r *rentalRequestRepo) GetByID(ctx context.Context, id string) (*model.RentalRequest, error) {
	var request model.RentalRequest
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Lines.CatalogItem").
		Where("request_id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *rentalRequestRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.RentalRequest, error) {
	var request model.RentalRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &request, nil
}

func (r *rentalRequestRepo) Update(ctx context.Context, request *model.RentalRequest) error {
	oldVersion := request.Version
	result := r.db.WithContext(ctx).
		Model(&model.RentalRequest{}).
		Where("request_id = ? AND version = ?", request.RequestID, oldVersion).
		Updates(map[string]interface{}{
			"department":      request.Department,
			"site":            request.Site,
			"duration_months": request.DurationMonths,
			"status":          request.Status,
			"observations":    request.Observations,
			"validated_at":    request.ValidatedAt,
			"validator_id":    request.ValidatorID,
			"updated_by":      request.UpdatedBy,
			"version":         oldVersion + 1,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	request.Version = oldVersion + 1
	return nil
}

func (r *rentalRequestRepo) UpdateBudget(ctx context.Context, id string, budget decimal.Decimal) error {
	return translateError(r.db.WithContext(ctx).
		Model(&model.RentalRequest{}).
		Where("request_id = ?", id).
		Update("provisional_budget", budget).Error)
}

func (r *rentalRequestRepo) Delete(ctx context.Context, id string) error {
	return translateError(r.db.WithContext(ctx).
		Where("request_id = ?", id).
		Delete(&model.RentalRequest{}).Error)
}

func (r *rentalRequestRepo) List(ctx context.Context, filter RequestFilter, offset, limit int) ([]model.RentalRequest, int64, error) {
	var requests []model.RentalRequest
	var total int64

	db := applyRequestFilter(r.db.WithContext(ctx).Model(&model.RentalRequest{}), filter)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Owner").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *rentalRequestRepo) CountByStatus(ctx context.Context, filter RequestFilter) (map[model.RequestStatus]int64, error) {
	var rows []struct {
		Status model.RequestStatus
		Count  int64
	}
	err := applyRequestFilter(r.db.WithContext(ctx).Model(&model.RentalRequest{}), filter).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.RequestStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *rentalRequestRepo) LatestNumber(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&model.RentalRequest{}).
		Where("number LIKE ?", prefix+"%").
		Order("LENGTH(number) DESC, number DESC").
		Limit(1).
		Pluck("number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}

func applyRequestFilter(db *gorm.DB, filter RequestFilter) *gorm.DB {
	if filter.OwnerID != "" {
		db = db.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Department != "" {
		db = db.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	return db
}

// ── RequestLine ──

type requestLineRepo struct {
	db *gorm.DB
}

func NewRequestLineRepo(db *gorm.DB) RequestLineRepository {
	return &requestLineRepo{db: db}
}

func (r *requestLineRepo) Create(ctx context.Context, line *model.RequestLine) error {
	return translateError(r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(line).Error)
}

func (r *requestLineRepo) GetByID(ctx context.Context, id string) (*model.RequestLine, error) {
	var line model.RequestLine
	err := r.db.WithContext(ctx).
		Preload("CatalogItem").
		Where("line_id = ?", id).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *requestLineRepo) ListByRequest(ctx context.Context, requestID string) ([]model.RequestLine, error) {
	var lines []model.RequestLine
	err := r.db.WithContext(ctx).
		Preload("CatalogItem").
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *requestLineRepo) UpdateSubtotal(ctx context.Context, id string, subtotal decimal.Decimal) error {
	return translateError(r.db.WithContext(ctx).
		Model(&model.RequestLine{}).
		Where("line_id = ?", id).
		Update("subtotal", subtotal).Error)
}

func (r *requestLineRepo) DeleteByRequest(ctx context.Context, requestID string) error {
	return translateError(r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Delete(&model.RequestLine{}).Error)
}

func (r *requestLineRepo) SumSubtotals(ctx context.Context, requestID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.RequestLine{}).
		Select("COALESCE(SUM(subtotal), 0)").
		Where("request_id = ?", requestID).
		Row().Scan(&sum)
	return sum, err
}
