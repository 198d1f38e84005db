package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/model"
	"github.com/Hems566/eter-projectv1.0/internal/repository"
	"github.com/Hems566/eter-projectv1.0/pkg/clock"
	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

// ── engagement errors ──

var (
	ErrEngagementNotFound     = pkgerrors.NotFound("engagement_not_found", "engagement not found")
	ErrEngagementExists       = pkgerrors.Conflict("engagement_exists", "the assignment already has an engagement")
	ErrAssignmentNotCompliant = pkgerrors.Precondition("assignment_not_compliant", "the supplied unit has not been marked compliant")
	ErrRequestNotSupplied     = pkgerrors.Precondition("request_not_supplied", "the request must be supplied before an engagement is created")
	ErrEngagementHasSheets    = pkgerrors.Precondition("engagement_has_log_sheets", "the start date cannot change once log sheets exist")
	ErrCannotEngage           = pkgerrors.Forbidden("cannot_create_engagement", "only buyers and administrators manage engagements")
)

// EngagementService manages contracts created from supplied requests.
type EngagementService interface {
	// Create snapshots the request budget, numbers the engagement and moves the request to CONTRACTED.
	Create(ctx context.Context, req *dto.CreateEngagementRequest, actor Actor) (*dto.EngagementResponse, error)
	Get(ctx context.Context, id string) (*dto.EngagementResponse, error)
	List(ctx context.Context, req *dto.PaginationRequest) ([]dto.EngagementResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateEngagementRequest, actor Actor) (*dto.EngagementResponse, error)
	// GetTotals shows the budget snapshot next to the billed amount.
	GetTotals(ctx context.Context, id string) (*dto.EngagementTotalsResponse, error)
	// ListExpiring returns engagements ending within the window. nil uses the configured default.
	ListExpiring(ctx context.Context, withinDays *int) ([]dto.EngagementResponse, error)
	ListExpired(ctx context.Context) ([]dto.EngagementResponse, error)
	Stats(ctx context.Context) (*dto.EngagementStatsResponse, error)
}

type engagementService struct {
	repo   *repository.Repository
	opts   Options
	logger *zap.Logger
}

func NewEngagementService(repo *repository.Repository, opts Options, logger *zap.Logger) EngagementService {
	return &engagementService{repo: repo, opts: opts, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *engagementService) Create(ctx context.Context, req *dto.CreateEngagementRequest, actor Actor) (*dto.EngagementResponse, error) {
	if !actor.Capabilities.CanCreateEngagement {
		return nil, ErrCannotEngage
	}
	start, err := s.validateStart(req.StartDate)
	if err != nil {
		return nil, err
	}
	responsible := req.ResponsibleID
	if responsible == "" {
		responsible = actor.UserID
	}

	var engagementID string

	err = withNumberRetry(s.opts.NumberRetryAttempts, s.logger, func() error {
		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			assignment, err := tx.SupplyAssignment.GetByIDForUpdate(ctx, req.AssignmentID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrAssignmentNotFound
				}
				return err
			}
			request, err := tx.RentalRequest.GetByIDForUpdate(ctx, assignment.RequestID)
			if err != nil {
				return fmt.Errorf("lock request: %w", err)
			}

			next, err := NextStatus(request.Status, TransitionAttachEngagement)
			if err != nil {
				return ErrRequestNotSupplied
			}
			if !assignment.Compliant {
				return ErrAssignmentNotCompliant
			}
			if _, err := tx.Engagement.GetByAssignment(ctx, assignment.AssignmentID); err == nil {
				return ErrEngagementExists
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("check existing engagement: %w", err)
			}

			number, err := nextNumber(ctx, tx.Engagement.LatestNumber, engagementNumberPrefix, s.opts.today().Year())
			if err != nil {
				return fmt.Errorf("next engagement number: %w", err)
			}

			engagement := &model.Engagement{
				EngagementID:      uuid.NewString(),
				AssignmentID:      assignment.AssignmentID,
				Number:            number,
				StartDate:         start,
				EndDate:           model.EndDateFor(start, request.DurationMonths),
				ProvisionalBudget: request.ProvisionalBudget,
				ResponsibleID:     responsible,
				SpecialConditions: req.SpecialConditions,
			}
			engagement.CreatedBy = &actor.UserID
			if err := tx.Engagement.Create(ctx, engagement); err != nil {
				return err
			}

			request.Status = next
			request.UpdatedBy = &actor.UserID
			if err := tx.RentalRequest.Update(ctx, request); err != nil {
				return err
			}

			engagementID = engagement.EngagementID
			return nil
		})
	})
	if err != nil {
		if pkgerrors.KindOf(err) == "" {
			s.logger.Error("create engagement failed", zap.String("assignment_id", req.AssignmentID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("engagement created",
		zap.String("engagement_id", engagementID),
		zap.String("assignment_id", req.AssignmentID),
	)
	return s.Get(ctx, engagementID)
}

// ────────────────────── Read ──────────────────────

func (s *engagementService) Get(ctx context.Context, id string) (*dto.EngagementResponse, error) {
	engagement, err := s.getEngagement(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEngagementResponse(engagement, s.opts.today()), nil
}

func (s *engagementService) List(ctx context.Context, req *dto.PaginationRequest) ([]dto.EngagementResponse, int64, error) {
	engagements, total, err := s.repo.Engagement.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list engagements failed", zap.Error(err))
		return nil, 0, err
	}
	return s.toResponses(engagements), total, nil
}

func (s *engagementService) GetTotals(ctx context.Context, id string) (*dto.EngagementTotalsResponse, error) {
	engagement, err := s.getEngagement(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.EngagementTotalsResponse{
		EngagementID:      engagement.EngagementID,
		ProvisionalBudget: formatMoney(engagement.ProvisionalBudget),
		CurrentAmount:     formatMoney(engagement.DisplayedAmount()),
		BilledAmount:      formatMoney(engagement.CurrentAmount),
		DaysRemaining:     daysRemaining(engagement, s.opts.today()),
	}, nil
}

func (s *engagementService) ListExpiring(ctx context.Context, withinDays *int) ([]dto.EngagementResponse, error) {
	days := s.opts.ExpiringWithinDays
	if withinDays != nil {
		days = *withinDays
	}
	if days < 0 {
		return nil, pkgerrors.Validation("within_days", "within_days must not be negative")
	}

	today := s.opts.today()
	engagements, err := s.repo.Engagement.ListEndingBetween(ctx, today, today.AddDate(0, 0, days))
	if err != nil {
		s.logger.Error("list expiring engagements failed", zap.Error(err))
		return nil, err
	}
	return s.toResponses(engagements), nil
}

func (s *engagementService) ListExpired(ctx context.Context) ([]dto.EngagementResponse, error) {
	engagements, err := s.repo.Engagement.ListEndedBefore(ctx, s.opts.today())
	if err != nil {
		s.logger.Error("list expired engagements failed", zap.Error(err))
		return nil, err
	}
	return s.toResponses(engagements), nil
}

func (s *engagementService) Stats(ctx context.Context) (*dto.EngagementStatsResponse, error) {
	today := s.opts.today()
	summary, err := s.repo.Engagement.Summary(ctx, today, today.AddDate(0, 0, s.opts.ExpiringWithinDays))
	if err != nil {
		s.logger.Error("engagement summary failed", zap.Error(err))
		return nil, err
	}
	return &dto.EngagementStatsResponse{
		Total:         summary.Total,
		Active:        summary.Active,
		Expired:       summary.Expired,
		ExpiringSoon:  summary.ExpiringSoon,
		CurrentAmount: formatMoney(summary.CurrentAmount),
	}, nil
}

// ────────────────────── Update ──────────────────────

func (s *engagementService) Update(ctx context.Context, id string, req *dto.UpdateEngagementRequest, actor Actor) (*dto.EngagementResponse, error) {
	if !actor.Capabilities.CanCreateEngagement {
		return nil, ErrCannotEngage
	}

	var start *time.Time
	if req.StartDate != nil {
		d, err := s.validateStart(*req.StartDate)
		if err != nil {
			return nil, err
		}
		start = &d
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		engagement, err := tx.Engagement.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEngagementNotFound
			}
			return err
		}

		if start != nil && !start.Equal(engagement.StartDate) {
			sheets, err := tx.LogSheet.CountByEngagement(ctx, id)
			if err != nil {
				return fmt.Errorf("count log sheets: %w", err)
			}
			if sheets > 0 {
				return ErrEngagementHasSheets
			}

			assignment, err := tx.SupplyAssignment.GetByID(ctx, engagement.AssignmentID)
			if err != nil {
				return fmt.Errorf("load assignment: %w", err)
			}
			if assignment.Request == nil {
				return fmt.Errorf("assignment %s has no request", assignment.AssignmentID)
			}
			engagement.StartDate = *start
			engagement.EndDate = model.EndDateFor(*start, assignment.Request.DurationMonths)
		}
		if req.SpecialConditions != nil {
			engagement.SpecialConditions = *req.SpecialConditions
		}

		engagement.UpdatedBy = &actor.UserID
		return tx.Engagement.Update(ctx, engagement)
	})
	if err != nil {
		if pkgerrors.KindOf(err) == "" {
			s.logger.Error("update engagement failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	return s.Get(ctx, id)
}

// ── helpers ──

// validateStart requires a start date within [today, today + start window].
func (s *engagementService) validateStart(value string) (time.Time, error) {
	start, err := parseDate("start_date", value)
	if err != nil {
		return start, err
	}
	today := s.opts.today()
	if start.Before(today) {
		return start, pkgerrors.Validation("start_date", "start date cannot be in the past")
	}
	if start.After(today.AddDate(0, 0, s.opts.StartWindowDays)) {
		return start, pkgerrors.Validation("start_date",
			"start date must be within %d days from today", s.opts.StartWindowDays)
	}
	return start, nil
}

func (s *engagementService) getEngagement(ctx context.Context, id string) (*model.Engagement, error) {
	engagement, err := s.repo.Engagement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEngagementNotFound
		}
		s.logger.Error("get engagement failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return engagement, nil
}

func (s *engagementService) toResponses(engagements []model.Engagement) []dto.EngagementResponse {
	today := s.opts.today()
	list := make([]dto.EngagementResponse, 0, len(engagements))
	for i := range engagements {
		list = append(list, *toEngagementResponse(&engagements[i], today))
	}
	return list
}

// daysRemaining never goes below zero.
func daysRemaining(e *model.Engagement, today time.Time) int {
	if d := clock.DaysBetween(today, e.EndDate); d > 0 {
		return d
	}
	return 0
}

func toEngagementResponse(e *model.Engagement, today time.Time) *dto.EngagementResponse {
	resp := &dto.EngagementResponse{
		ID:                e.EngagementID,
		Number:            e.Number,
		AssignmentID:      e.AssignmentID,
		StartDate:         formatDate(e.StartDate),
		EndDate:           formatDate(e.EndDate),
		ProvisionalBudget: formatMoney(e.ProvisionalBudget),
		CurrentAmount:     formatMoney(e.DisplayedAmount()),
		DaysRemaining:     daysRemaining(e, today),
		ResponsibleID:     e.ResponsibleID,
		SpecialConditions: e.SpecialConditions,
		CreatedAt:         formatTimestamp(e.CreatedAt),
	}
	if a := e.Assignment; a != nil {
		resp.UnitID = a.UnitID
		if a.Request != nil {
			resp.RequestNumber = a.Request.Number
		}
		if a.Supplier != nil {
			resp.SupplierName = a.Supplier.Name
		}
	}
	return resp
}
