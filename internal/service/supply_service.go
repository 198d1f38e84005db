package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/model"
	"github.com/Hems566/eter-projectv1.0/internal/repository"
	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

// ── supply errors ──

var (
	ErrAssignmentNotFound = pkgerrors.NotFound("assignment_not_found", "supply assignment not found")
	ErrAssignmentExists   = pkgerrors.Conflict("assignment_exists", "the request already has a supply assignment")
	ErrAssignmentEngaged  = pkgerrors.Precondition("assignment_engaged", "the assignment is already covered by an engagement")
	ErrUnitIDTaken        = pkgerrors.Conflict("unit_id_taken", "this unit id is already assigned")
	ErrCannotSupply       = pkgerrors.Forbidden("cannot_supply", "only buyers and administrators record supply")
)

// SupplyService records which supplier unit fulfils a validated request.
type SupplyService interface {
	// Create attaches a supply assignment and moves the request to SUPPLIED.
	Create(ctx context.Context, req *dto.CreateSupplyAssignmentRequest, actor Actor) (*dto.SupplyAssignmentResponse, error)
	Get(ctx context.Context, id string) (*dto.SupplyAssignmentResponse, error)
	List(ctx context.Context, req *dto.PaginationRequest) ([]dto.SupplyAssignmentResponse, int64, error)
	// ListReady returns compliant assignments that have no engagement yet.
	ListReady(ctx context.Context) ([]dto.SupplyAssignmentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSupplyAssignmentRequest, actor Actor) (*dto.SupplyAssignmentResponse, error)
	MarkCompliant(ctx context.Context, id string, compliant bool, actor Actor) (*dto.SupplyAssignmentResponse, error)
}

type supplyService struct {
	repo   *repository.Repository
	opts   Options
	logger *zap.Logger
}

func NewSupplyService(repo *repository.Repository, opts Options, logger *zap.Logger) SupplyService {
	return &supplyService{repo: repo, opts: opts, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *supplyService) Create(ctx context.Context, req *dto.CreateSupplyAssignmentRequest, actor Actor) (*dto.SupplyAssignmentResponse, error) {
	if !actor.Capabilities.CanValidate {
		return nil, ErrCannotSupply
	}
	assignedOn, err := s.validateAssignedOn(req.AssignedOn)
	if err != nil {
		return nil, err
	}
	unitID, err := normalizeUnitID(req.UnitID)
	if err != nil {
		return nil, err
	}
	responsible := req.ResponsibleID
	if responsible == "" {
		responsible = actor.UserID
	}

	assignment := &model.SupplyAssignment{
		AssignmentID:  uuid.NewString(),
		RequestID:     req.RequestID,
		SupplierID:    req.SupplierID,
		AssignedOn:    assignedOn,
		UnitID:        unitID,
		Compliant:     req.Compliant,
		ResponsibleID: responsible,
		Notes:         req.Notes,
	}
	assignment.CreatedBy = &actor.UserID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		request, err := tx.RentalRequest.GetByIDForUpdate(ctx, req.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		if _, err := tx.SupplyAssignment.GetByRequest(ctx, req.RequestID); err == nil {
			return ErrAssignmentExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check existing assignment: %w", err)
		}

		next, err := NextStatus(request.Status, TransitionAttachSupply)
		if err != nil {
			return err
		}

		lines, err := tx.RequestLine.ListByRequest(ctx, request.RequestID)
		if err != nil {
			return fmt.Errorf("list lines: %w", err)
		}
		if len(lines) == 0 {
			return ErrRequestHasNoLines
		}

		if err := s.checkSupplier(ctx, tx, req.SupplierID); err != nil {
			return err
		}
		if err := s.checkUnitID(ctx, tx, unitID, ""); err != nil {
			return err
		}

		if err := tx.SupplyAssignment.Create(ctx, assignment); err != nil {
			return err
		}

		request.Status = next
		request.UpdatedBy = &actor.UserID
		return tx.RentalRequest.Update(ctx, request)
	})
	if err != nil {
		if pkgerrors.KindOf(err) == "" {
			s.logger.Error("create supply assignment failed", zap.String("request_id", req.RequestID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("supply assignment created",
		zap.String("assignment_id", assignment.AssignmentID),
		zap.String("request_id", req.RequestID),
		zap.String("unit_id", unitID),
	)
	return s.Get(ctx, assignment.AssignmentID)
}

// ────────────────────── Read ──────────────────────

func (s *supplyService) Get(ctx context.Context, id string) (*dto.SupplyAssignmentResponse, error) {
	assignment, err := s.repo.SupplyAssignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("get supply assignment failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	engaged, err := s.hasEngagement(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return toSupplyAssignmentResponse(assignment, engaged), nil
}

func (s *supplyService) List(ctx context.Context, req *dto.PaginationRequest) ([]dto.SupplyAssignmentResponse, int64, error) {
	assignments, total, err := s.repo.SupplyAssignment.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list supply assignments failed", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.SupplyAssignmentResponse, 0, len(assignments))
	for i := range assignments {
		engaged, err := s.hasEngagement(ctx, s.repo, assignments[i].AssignmentID)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *toSupplyAssignmentResponse(&assignments[i], engaged))
	}
	return list, total, nil
}

func (s *supplyService) ListReady(ctx context.Context) ([]dto.SupplyAssignmentResponse, error) {
	assignments, err := s.repo.SupplyAssignment.ListReady(ctx)
	if err != nil {
		s.logger.Error("list ready assignments failed", zap.Error(err))
		return nil, err
	}

	list := make([]dto.SupplyAssignmentResponse, 0, len(assignments))
	for i := range assignments {
		list = append(list, *toSupplyAssignmentResponse(&assignments[i], false))
	}
	return list, nil
}

// ────────────────────── Update ──────────────────────

func (s *supplyService) Update(ctx context.Context, id string, req *dto.UpdateSupplyAssignmentRequest, actor Actor) (*dto.SupplyAssignmentResponse, error) {
	if !actor.Capabilities.CanValidate {
		return nil, ErrCannotSupply
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		assignment, err := s.lockUnengaged(ctx, tx, id)
		if err != nil {
			return err
		}

		if req.SupplierID != nil && *req.SupplierID != assignment.SupplierID {
			if err := s.checkSupplier(ctx, tx, *req.SupplierID); err != nil {
				return err
			}
			assignment.SupplierID = *req.SupplierID
		}
		if req.AssignedOn != nil {
			assignedOn, err := s.validateAssignedOn(*req.AssignedOn)
			if err != nil {
				return err
			}
			assignment.AssignedOn = assignedOn
		}
		if req.UnitID != nil {
			unitID, err := normalizeUnitID(*req.UnitID)
			if err != nil {
				return err
			}
			if err := s.checkUnitID(ctx, tx, unitID, id); err != nil {
				return err
			}
			assignment.UnitID = unitID
		}
		if req.Compliant != nil {
			assignment.Compliant = *req.Compliant
		}
		if req.Notes != nil {
			assignment.Notes = *req.Notes
		}

		assignment.UpdatedBy = &actor.UserID
		return tx.SupplyAssignment.Update(ctx, assignment)
	})
	if err != nil {
		if pkgerrors.KindOf(err) == "" {
			s.logger.Error("update supply assignment failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *supplyService) MarkCompliant(ctx context.Context, id string, compliant bool, actor Actor) (*dto.SupplyAssignmentResponse, error) {
	return s.Update(ctx, id, &dto.UpdateSupplyAssignmentRequest{Compliant: &compliant}, actor)
}

// ── helpers ──

func (s *supplyService) validateAssignedOn(value string) (time.Time, error) {
	d, err := parseDate("assigned_on", value)
	if err != nil {
		return d, err
	}
	if d.After(s.opts.today()) {
		return d, pkgerrors.Validation("assigned_on", "assignment date cannot be in the future")
	}
	return d, nil
}

func (s *supplyService) lockUnengaged(ctx context.Context, tx *repository.Repository, id string) (*model.SupplyAssignment, error) {
	assignment, err := tx.SupplyAssignment.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	engaged, err := s.hasEngagement(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if engaged {
		return nil, ErrAssignmentEngaged
	}
	return assignment, nil
}

func (s *supplyService) checkSupplier(ctx context.Context, tx *repository.Repository, supplierID string) error {
	supplier, err := tx.Supplier.GetByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Validation("supplier_id", "supplier %s does not exist", supplierID)
		}
		return err
	}
	if !supplier.IsActive {
		return pkgerrors.Validation("supplier_id", "supplier %s is not active", supplier.Name)
	}
	return nil
}

func (s *supplyService) checkUnitID(ctx context.Context, tx *repository.Repository, unitID, excludeID string) error {
	taken, err := tx.SupplyAssignment.UnitIDTaken(ctx, unitID, excludeID)
	if err != nil {
		return fmt.Errorf("check unit id: %w", err)
	}
	if taken {
		return ErrUnitIDTaken
	}
	return nil
}

func (s *supplyService) hasEngagement(ctx context.Context, repo *repository.Repository, assignmentID string) (bool, error) {
	_, err := repo.Engagement.GetByAssignment(ctx, assignmentID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	s.logger.Error("check assignment engagement failed", zap.String("assignment_id", assignmentID), zap.Error(err))
	return false, err
}

// normalizeUnitID trims and upper-cases; unit ids are unique case-insensitively.
func normalizeUnitID(value string) (string, error) {
	unitID := strings.ToUpper(strings.TrimSpace(value))
	if unitID == "" {
		return "", pkgerrors.Validation("unit_id", "unit id is required")
	}
	if len(unitID) > 20 {
		return "", pkgerrors.Validation("unit_id", "unit id must be at most 20 characters")
	}
	return unitID, nil
}

func toSupplyAssignmentResponse(a *model.SupplyAssignment, engaged bool) *dto.SupplyAssignmentResponse {
	resp := &dto.SupplyAssignmentResponse{
		ID:            a.AssignmentID,
		RequestID:     a.RequestID,
		AssignedOn:    formatDate(a.AssignedOn),
		UnitID:        a.UnitID,
		Compliant:     a.Compliant,
		ResponsibleID: a.ResponsibleID,
		Notes:         a.Notes,
		HasEngagement: engaged,
		CreatedAt:     formatTimestamp(a.CreatedAt),
	}
	if a.Request != nil {
		resp.RequestNumber = a.Request.Number
	}
	if a.Supplier != nil {
		resp.Supplier = toSupplierResponse(a.Supplier)
	}
	return resp
}
