package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/model"
	"github.com/Hems566/eter-projectv1.0/internal/repository"
	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

var (
	ErrVerificationNotFound = pkgerrors.NotFound("verification_not_found", "verification sheet not found")
	ErrVerificationExists   = pkgerrors.Conflict("verification_exists", "the log sheet already has a verification sheet")
	ErrCannotVerify         = pkgerrors.Forbidden("cannot_verify", "only buyers and administrators verify log sheets")
	ErrLogSheetEmpty        = pkgerrors.Precondition("log_sheet_empty", "the log sheet must contain at least one daily entry")
)

// VerificationService stores the monthly on-site verification of a log sheet.
type VerificationService interface {
	Create(ctx context.Context, req *dto.CreateVerificationRequest, actor Actor) (*dto.VerificationResponse, error)
	Get(ctx context.Context, id string) (*dto.VerificationResponse, error)
	GetByLogSheet(ctx context.Context, logSheetID string) (*dto.VerificationResponse, error)
	// Discrepancy compares the declared totals with the totals of the sheet entries.
	Discrepancy(ctx context.Context, id string) (*dto.DiscrepancyResponse, error)
}

type verificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewVerificationService(repo *repository.Repository, logger *zap.Logger) VerificationService {
	return &verificationService{repo: repo, logger: logger}
}

func (s *verificationService) Create(ctx context.Context, req *dto.CreateVerificationRequest, actor Actor) (*dto.VerificationResponse, error) {
	if !actor.Capabilities.CanValidate {
		return nil, ErrCannotVerify
	}
	verifiedOn, err := parseDate("verified_on", req.VerifiedOn)
	if err != nil {
		return nil, err
	}
	if _, _, err := parseMonth("month_year", req.MonthYear); err != nil {
		return nil, err
	}
	if req.DeclaredFuel.IsNegative() {
		return nil, pkgerrors.Validation("declared_fuel", "declared fuel cannot be negative")
	}
	if req.DeclaredBillableHours < 0 {
		return nil, pkgerrors.Validation("declared_billable_hours", "declared hours cannot be negative")
	}

	sheet := &model.VerificationSheet{
		VerificationID:        uuid.NewString(),
		LogSheetID:            req.LogSheetID,
		Site:                  strings.TrimSpace(req.Site),
		MonthYear:             req.MonthYear,
		VerifiedOn:            verifiedOn,
		VerifierName:          strings.TrimSpace(req.VerifierName),
		DeclaredFuel:          req.DeclaredFuel,
		DeclaredBillableHours: req.DeclaredBillableHours,
		Conforming:            req.Conforming,
		Notes:                 req.Notes,
	}
	sheet.CreatedBy = &actor.UserID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.LogSheet.GetByIDForUpdate(ctx, req.LogSheetID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLogSheetNotFound
			}
			return err
		}
		count, err := tx.DailyEntry.CountBySheet(ctx, req.LogSheetID)
		if err != nil {
			return fmt.Errorf("count daily entries: %w", err)
		}
		if count == 0 {
			return ErrLogSheetEmpty
		}
		if _, err := tx.VerificationSheet.GetByLogSheet(ctx, req.LogSheetID); err == nil {
			return ErrVerificationExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check existing verification: %w", err)
		}
		return tx.VerificationSheet.Create(ctx, sheet)
	})
	if err != nil {
		if pkgerrors.KindOf(err) == "" {
			s.logger.Error("create verification failed", zap.String("log_sheet_id", req.LogSheetID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("verification sheet created",
		zap.String("verification_id", sheet.VerificationID),
		zap.String("log_sheet_id", req.LogSheetID),
	)
	return toVerificationResponse(sheet), nil
}

func (s *verificationService) Get(ctx context.Context, id string) (*dto.VerificationResponse, error) {
	sheet, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toVerificationResponse(sheet), nil
}

func (s *verificationService) GetByLogSheet(ctx context.Context, logSheetID string) (*dto.VerificationResponse, error) {
	sheet, err := s.repo.VerificationSheet.GetByLogSheet(ctx, logSheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}
	return toVerificationResponse(sheet), nil
}

func (s *verificationService) Discrepancy(ctx context.Context, id string) (*dto.DiscrepancyResponse, error) {
	sheet, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.DailyEntry.ListBySheet(ctx, sheet.LogSheetID)
	if err != nil {
		s.logger.Error("list entries for verification failed", zap.String("log_sheet_id", sheet.LogSheetID), zap.Error(err))
		return nil, err
	}

	var hours, fuel decimal.Decimal
	worked := 0
	for _, e := range entries {
		hours = hours.Add(e.WorkHours)
		fuel = fuel.Add(e.FuelLiters)
		if e.WorkHours.IsPositive() {
			worked++
		}
	}

	declaredHours := decimal.NewFromInt(int64(sheet.DeclaredBillableHours))
	return &dto.DiscrepancyResponse{
		VerificationID:     sheet.VerificationID,
		LogSheetID:         sheet.LogSheetID,
		ComputedWorkedDays: worked,
		ComputedWorkHours:  formatHours(hours),
		ComputedFuel:       formatHours(fuel),
		DeclaredHours:      sheet.DeclaredBillableHours,
		DeclaredFuel:       formatHours(sheet.DeclaredFuel),
		HoursMatch:         hours.Equal(declaredHours),
		FuelMatch:          fuel.Equal(sheet.DeclaredFuel),
		DeclaredConforming: sheet.Conforming,
	}, nil
}

func (s *verificationService) get(ctx context.Context, id string) (*model.VerificationSheet, error) {
	sheet, err := s.repo.VerificationSheet.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVerificationNotFound
		}
		s.logger.Error("get verification failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return sheet, nil
}

func toVerificationResponse(v *model.VerificationSheet) *dto.VerificationResponse {
	return &dto.VerificationResponse{
		ID:                    v.VerificationID,
		LogSheetID:            v.LogSheetID,
		Site:                  v.Site,
		MonthYear:             v.MonthYear,
		VerifiedOn:            formatDate(v.VerifiedOn),
		VerifierName:          v.VerifierName,
		DeclaredFuel:          formatHours(v.DeclaredFuel),
		DeclaredBillableHours: v.DeclaredBillableHours,
		Conforming:            v.Conforming,
		Notes:                 v.Notes,
	}
}
