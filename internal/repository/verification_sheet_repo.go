package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Hems566/eter-projectv1.0/internal/model"
)

// VerificationSheetRepository verification sheet data access.
type VerificationSheetRepository interface {
	Create(ctx context.Context, sheet *model.VerificationSheet) error
	GetByID(ctx context.Context, id string) (*model.VerificationSheet, error)
	GetByLogSheet(ctx context.Context, logSheetID string) (*model.VerificationSheet, error)
}

type verificationSheetRepo struct {
	db *gorm.DB
}

func NewVerificationSheetRepo(db *gorm.DB) VerificationSheetRepository {
	return &verificationSheetRepo{db: db}
}

func (r *verificationSheetRepo) Create(ctx context.Context, sheet *model.VerificationSheet) error {
	return translateError(r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(sheet).Error)
}

func (r *verificationSheetRepo) GetByID(ctx context.Context, id string) (*model.VerificationSheet, error) {
	var sheet model.VerificationSheet
	err := r.db.WithContext(ctx).
		Where("verification_id = ?", id).
		First(&sheet).Error
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (r *verificationSheetRepo) GetByLogSheet(ctx context.Context, logSheetID string) (*model.VerificationSheet, error) {
	var sheet model.VerificationSheet
	err := r.db.WithContext(ctx).
		Where("log_sheet_id = ?", logSheetID).
		First(&sheet).Error
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}
