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

// ── rental request errors ──

var (
	ErrRequestNotFound     = pkgerrors.NotFound("rental_request_not_found", "rental request not found")
	ErrRequestHasNoLines   = pkgerrors.Precondition("request_has_no_lines", "a request needs at least one equipment line")
	ErrRequestNotEditable  = pkgerrors.Precondition("request_not_editable", "only draft or rejected requests can be modified")
	ErrRequestNotDraft     = pkgerrors.Precondition("request_not_draft", "only draft requests can be deleted")
	ErrNotRequestOwner     = pkgerrors.Forbidden("not_request_owner", "only the request owner can perform this action")
	ErrCannotCreateRequest = pkgerrors.Forbidden("cannot_create_request", "this account cannot create rental requests")
	ErrCannotValidate      = pkgerrors.Forbidden("cannot_validate", "this account cannot validate rental requests")
)

// RentalRequestService drives rental requests through the approval workflow.
type RentalRequestService interface {
	Create(ctx context.Context, req *dto.CreateRentalRequestRequest, actor Actor) (*dto.RentalRequestResponse, error)
	Get(ctx context.Context, id string) (*dto.RentalRequestResponse, error)
	List(ctx context.Context, req *dto.RentalRequestListRequest, actor Actor) ([]dto.RentalRequestResponse, int64, error)
	ListPending(ctx context.Context, actor Actor) ([]dto.RentalRequestResponse, error)
	Stats(ctx context.Context, actor Actor) (*dto.RequestStatsResponse, error)
	// Update edits header fields and, when given, replaces every line. DRAFT or REJECTED only.
	Update(ctx context.Context, id string, req *dto.UpdateRentalRequestRequest, actor Actor) (*dto.RentalRequestResponse, error)
	Delete(ctx context.Context, id string, actor Actor) error

	// Submit moves DRAFT to SUBMITTED.
	Submit(ctx context.Context, id string, actor Actor) (*dto.RentalRequestResponse, error)
	// Withdraw moves SUBMITTED back to DRAFT.
	Withdraw(ctx context.Context, id string, actor Actor) (*dto.RentalRequestResponse, error)
	// Decide approves or rejects a SUBMITTED request and appends the note to the observations.
	Decide(ctx context.Context, id string, actor Actor, outcome dto.DecisionOutcome, note string) (*dto.RentalRequestResponse, error)
}

type rentalRequestService struct {
	repo   *repository.Repository
	agg    AggregationService
	opts   Options
	logger *zap.Logger
}

func NewRentalRequestService(repo *repository.Repository, agg AggregationService, opts Options, logger *zap.Logger) RentalRequestService {
	return &rentalRequestService{repo: repo, agg: agg, opts: opts, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *rentalRequestService) Create(ctx context.Context, req *dto.CreateRentalRequestRequest, actor Actor) (*dto.RentalRequestResponse, error) {
	if !actor.Capabilities.CanCreateRequest {
		return nil, ErrCannotCreateRequest
	}
	if err := validateDuration(req.DurationMonths); err != nil {
		return nil, err
	}
	if len(req.Lines) == 0 {
		return nil, pkgerrors.Validation("lines", "a request needs at least one equipment line")
	}
	if err := validateLineInputs(req.Lines); err != nil {
		return nil, err
	}
	site := strings.TrimSpace(req.Site)
	if site == "" {
		return nil, pkgerrors.Validation("site", "site is required")
	}

	department, err := s.ownerDepartment(ctx, actor)
	if err != nil {
		return nil, err
	}

	today := s.opts.today()
	var requestID string

	err = withNumberRetry(s.opts.NumberRetryAttempts, s.logger, func() error {
		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			number, err := nextNumber(ctx, tx.RentalRequest.LatestNumber, requestNumberPrefix, today.Year())
			if err != nil {
				return fmt.Errorf("next request number: %w", err)
			}

			request := &model.RentalRequest{
				RequestID:      uuid.NewString(),
				Number:         number,
				RequestDate:    today,
				OwnerID:        actor.UserID,
				Department:     department,
				Site:           site,
				DurationMonths: req.DurationMonths,
				Status:         model.RequestDraft,
			}
			request.CreatedBy = &actor.UserID
			request.Version = 1
			if err := tx.RentalRequest.Create(ctx, request); err != nil {
				return err
			}

			if err := s.createLines(ctx, tx, request.RequestID, req.Lines, actor); err != nil {
				return err
			}
			if _, err := s.agg.RefreshRequest(ctx, tx, request.RequestID); err != nil {
				return err
			}

			requestID = request.RequestID
			return nil
		})
	})
	if err != nil {
		if pkgerrors.KindOf(err) == "" {
			s.logger.Error("create rental request failed", zap.String("owner_id", actor.UserID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("rental request created", zap.String("request_id", requestID), zap.String("owner_id", actor.UserID))
	return s.Get(ctx, requestID)
}

// ────────────────────── Read ──────────────────────

func (s *rentalRequestService) Get(ctx context.Context, id string) (*dto.RentalRequestResponse, error) {
	request, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRentalRequestResponse(request), nil
}

func (s *rentalRequestService) List(ctx context.Context, req *dto.RentalRequestListRequest, actor Actor) ([]dto.RentalRequestResponse, int64, error) {
	filter := repository.RequestFilter{Status: model.RequestStatus(req.Status)}
	if req.Mine || actor.Role == model.RoleRequester {
		filter.OwnerID = actor.UserID
	}

	requests, total, err := s.repo.RentalRequest.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list rental requests failed", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.RentalRequestResponse, 0, len(requests))
	for i := range requests {
		list = append(list, *toRentalRequestResponse(&requests[i]))
	}
	return list, total, nil
}

func (s *rentalRequestService) ListPending(ctx context.Context, actor Actor) ([]dto.RentalRequestResponse, error) {
	if !actor.Capabilities.CanValidate {
		return nil, ErrCannotValidate
	}
	requests, _, err := s.repo.RentalRequest.List(ctx, repository.RequestFilter{Status: model.RequestSubmitted}, 0, -1)
	if err != nil {
		s.logger.Error("list pending requests failed", zap.Error(err))
		return nil, err
	}

	list := make([]dto.RentalRequestResponse, 0, len(requests))
	for i := range requests {
		list = append(list, *toRentalRequestResponse(&requests[i]))
	}
	return list, nil
}

func (s *rentalRequestService) Stats(ctx context.Context, actor Actor) (*dto.RequestStatsResponse, error) {
	filter := repository.RequestFilter{}
	if actor.Role == model.RoleRequester {
		filter.OwnerID = actor.UserID
	}

	counts, err := s.repo.RentalRequest.CountByStatus(ctx, filter)
	if err != nil {
		s.logger.Error("count requests by status failed", zap.Error(err))
		return nil, err
	}

	resp := &dto.RequestStatsResponse{ByStatus: make(map[model.RequestStatus]int64, len(model.AllRequestStatuses))}
	for _, status := range model.AllRequestStatuses {
		resp.ByStatus[status] = counts[status]
		resp.Total += counts[status]
	}
	return resp, nil
}

// ────────────────────── Update / Delete ──────────────────────

func (s *rentalRequestService) Update(ctx context.Context, id string, req *dto.UpdateRentalRequestRequest, actor Actor) (*dto.RentalRequestResponse, error) {
	if req.DurationMonths != nil {
		if err := validateDuration(*req.DurationMonths); err != nil {
			return nil, err
		}
	}
	if req.Lines != nil {
		if len(req.Lines) == 0 {
			return nil, pkgerrors.Validation("lines", "a request needs at least one equipment line")
		}
		if err := validateLineInputs(req.Lines); err != nil {
			return nil, err
		}
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		request, err := s.lockRequest(ctx, tx, id)
		if err != nil {
			return err
		}
		if !canActOnRequest(actor, request) {
			return ErrNotRequestOwner
		}
		if !request.Status.LinesEditable() {
			return ErrRequestNotEditable
		}

		if req.Site != nil {
			site := strings.TrimSpace(*req.Site)
			if site == "" {
				return pkgerrors.Validation("site", "site is required")
			}
			request.Site = site
		}
		if req.DurationMonths != nil {
			request.DurationMonths = *req.DurationMonths
		}
		owner, err := tx.User.GetByID(ctx, request.OwnerID)
		switch {
		case err == nil:
			request.Department = owner.Department
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("get request owner: %w", err)
		}
		request.UpdatedBy = &actor.UserID

		if err := tx.RentalRequest.Update(ctx, request); err != nil {
			return err
		}

		if req.Lines != nil {
			if err := tx.RequestLine.DeleteByRequest(ctx, id); err != nil {
				return fmt.Errorf("delete lines: %w", err)
			}
			if err := s.createLines(ctx, tx, id, req.Lines, actor); err != nil {
				return err
			}
		}

		_, err = s.agg.RefreshRequest(ctx, tx, id)
		return err
	})
	if err != nil {
		s.logFailure("update rental request failed", id, err)
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *rentalRequestService) Delete(ctx context.Context, id string, actor Actor) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		request, err := s.lockRequest(ctx, tx, id)
		if err != nil {
			return err
		}
		if !canActOnRequest(actor, request) {
			return ErrNotRequestOwner
		}
		if request.Status != model.RequestDraft {
			return ErrRequestNotDraft
		}
		if err := tx.RequestLine.DeleteByRequest(ctx, id); err != nil {
			return err
		}
		return tx.RentalRequest.Delete(ctx, id)
	})
	if err != nil {
		s.logFailure("delete rental request failed", id, err)
		return err
	}
	s.logger.Info("rental request deleted", zap.String("request_id", id), zap.String("by", actor.UserID))
	return nil
}

// ────────────────────── Workflow ──────────────────────

func (s *rentalRequestService) Submit(ctx context.Context, id string, actor Actor) (*dto.RentalRequestResponse, error) {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		request, err := s.lockRequest(ctx, tx, id)
		if err != nil {
			return err
		}
		if !canActOnRequest(actor, request) {
			return ErrNotRequestOwner
		}
		next, err := NextStatus(request.Status, TransitionSubmit)
		if err != nil {
			return err
		}

		lines, err := tx.RequestLine.ListByRequest(ctx, id)
		if err != nil {
			return fmt.Errorf("list lines: %w", err)
		}
		if len(lines) == 0 {
			return ErrRequestHasNoLines
		}

		request.Status = next
		request.UpdatedBy = &actor.UserID
		return tx.RentalRequest.Update(ctx, request)
	})
	if err != nil {
		s.logFailure("submit rental request failed", id, err)
		return nil, err
	}

	s.logger.Info("rental request submitted", zap.String("request_id", id))
	return s.Get(ctx, id)
}

func (s *rentalRequestService) Withdraw(ctx context.Context, id string, actor Actor) (*dto.RentalRequestResponse, error) {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		request, err := s.lockRequest(ctx, tx, id)
		if err != nil {
			return err
		}
		if !canActOnRequest(actor, request) {
			return ErrNotRequestOwner
		}
		next, err := NextStatus(request.Status, TransitionWithdraw)
		if err != nil {
			return err
		}

		request.Status = next
		request.UpdatedBy = &actor.UserID
		return tx.RentalRequest.Update(ctx, request)
	})
	if err != nil {
		s.logFailure("withdraw rental request failed", id, err)
		return nil, err
	}

	s.logger.Info("rental request withdrawn", zap.String("request_id", id))
	return s.Get(ctx, id)
}

func (s *rentalRequestService) Decide(ctx context.Context, id string, actor Actor, outcome dto.DecisionOutcome, note string) (*dto.RentalRequestResponse, error) {
	if !actor.Capabilities.CanValidate {
		return nil, ErrCannotValidate
	}

	var transition Transition
	switch outcome {
	case dto.DecisionApprove:
		transition = TransitionApprove
	case dto.DecisionReject:
		transition = TransitionReject
	default:
		return nil, pkgerrors.Validation("outcome", "outcome must be approve or reject")
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		request, err := s.lockRequest(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err := NextStatus(request.Status, transition)
		if err != nil {
			return err
		}

		now := s.opts.Clock.Now()
		request.Status = next
		request.ValidatorID = &actor.UserID
		request.ValidatedAt = &now
		request.Observations = appendObservation(request.Observations, note, now.In(s.opts.Location))
		request.UpdatedBy = &actor.UserID
		return tx.RentalRequest.Update(ctx, request)
	})
	if err != nil {
		s.logFailure("decide rental request failed", id, err)
		return nil, err
	}

	s.logger.Info("rental request decided",
		zap.String("request_id", id),
		zap.String("outcome", string(outcome)),
		zap.String("validator_id", actor.UserID),
	)
	return s.Get(ctx, id)
}

// ── helpers ──

func (s *rentalRequestService) getRequest(ctx context.Context, id string) (*model.RentalRequest, error) {
	request, err := s.repo.RentalRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("get rental request failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return request, nil
}

func (s *rentalRequestService) lockRequest(ctx context.Context, tx *repository.Repository, id string) (*model.RentalRequest, error) {
	request, err := tx.RentalRequest.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

// ownerDepartment copies the department from the stored user, falling back to the token.
func (s *rentalRequestService) ownerDepartment(ctx context.Context, actor Actor) (string, error) {
	owner, err := s.repo.User.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return actor.Department, nil
		}
		s.logger.Error("get request owner failed", zap.String("user_id", actor.UserID), zap.Error(err))
		return "", err
	}
	return owner.Department, nil
}

func (s *rentalRequestService) createLines(ctx context.Context, tx *repository.Repository, requestID string, inputs []dto.RequestLineInput, actor Actor) error {
	for _, in := range inputs {
		item, err := tx.CatalogItem.GetByID(ctx, in.CatalogItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Validation("catalog_item_id", "catalog item %s does not exist", in.CatalogItemID)
			}
			return err
		}
		if !item.IsActive {
			return pkgerrors.Validation("catalog_item_id", "catalog item %s is not active", item.Category)
		}

		line := &model.RequestLine{
			LineID:        uuid.NewString(),
			RequestID:     requestID,
			CatalogItemID: item.CatalogItemID,
			Quantity:      in.Quantity,
			UnitPrice:     item.UnitPrice,
			Notes:         in.Notes,
		}
		line.CreatedBy = &actor.UserID
		if err := tx.RequestLine.Create(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (s *rentalRequestService) logFailure(msg, id string, err error) {
	if pkgerrors.KindOf(err) != "" {
		return
	}
	s.logger.Error(msg, zap.String("id", id), zap.Error(err))
}

func validateDuration(months int) error {
	if months < model.MinDurationMonths || months > model.MaxDurationMonths {
		return pkgerrors.Validation("duration_months", "duration must be between %d and %d months",
			model.MinDurationMonths, model.MaxDurationMonths)
	}
	return nil
}

func validateLineInputs(lines []dto.RequestLineInput) error {
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return pkgerrors.Validation("quantity", "quantity must be at least 1")
		}
		if seen[l.CatalogItemID] {
			return pkgerrors.Validation("lines", "catalog item %s appears on more than one line", l.CatalogItemID)
		}
		seen[l.CatalogItemID] = true
	}
	return nil
}

// canActOnRequest allows the owner and administrators.
func canActOnRequest(actor Actor, request *model.RentalRequest) bool {
	return actor.IsAdmin() || actor.UserID == request.OwnerID
}

// appendObservation adds a timestamped validation note, separated by a blank line.
func appendObservation(existing, note string, at time.Time) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing
	}
	entry := fmt.Sprintf("Validation (%s): %s", at.Format("02/01/2006 15:04"), note)
	if existing == "" {
		return entry
	}
	return existing + "\n\n" + entry
}

func toRentalRequestResponse(r *model.RentalRequest) *dto.RentalRequestResponse {
	resp := &dto.RentalRequestResponse{
		ID:                r.RequestID,
		Number:            r.Number,
		RequestDate:       formatDate(r.RequestDate),
		Owner:             toUserBrief(r.Owner),
		OwnerID:           r.OwnerID,
		Department:        r.Department,
		Site:              r.Site,
		DurationMonths:    r.DurationMonths,
		ProvisionalBudget: formatMoney(r.ProvisionalBudget),
		Status:            r.Status,
		Observations:      r.Observations,
		ValidatorID:       r.ValidatorID,
		Version:           r.Version,
		CreatedAt:         formatTimestamp(r.CreatedAt),
	}
	if r.ValidatedAt != nil {
		v := formatTimestamp(*r.ValidatedAt)
		resp.ValidatedAt = &v
	}
	for i := range r.Lines {
		resp.Lines = append(resp.Lines, toRequestLineResponse(&r.Lines[i]))
	}
	return resp
}

func toRequestLineResponse(l *model.RequestLine) dto.RequestLineResponse {
	resp := dto.RequestLineResponse{
		ID:            l.LineID,
		CatalogItemID: l.CatalogItemID,
		Quantity:      l.Quantity,
		UnitPrice:     formatMoney(l.UnitPrice),
		Subtotal:      formatMoney(l.Subtotal),
		Notes:         l.Notes,
	}
	if l.CatalogItem != nil {
		resp.Category = l.CatalogItem.Category
		resp.BillingMode = l.CatalogItem.BillingMode
	}
	return resp
}
