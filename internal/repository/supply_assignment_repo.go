package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Hems566/eter-projectv1.0/internal/model"
)

// SupplyAssignmentRepository supply assignment data access.
type SupplyAssignmentRepository interface {
	Create(ctx context.Context, assignment *model.SupplyAssignment) error
	// GetByID loads the assignment with its request (and lines) and supplier.
	GetByID(ctx context.Context, id string) (*model.SupplyAssignment, error)
	GetByIDForUpdate(ctx context.Context, id string) (*model.SupplyAssignment, error)
	GetByRequest(ctx context.Context, requestID string) (*model.SupplyAssignment, error)
	// UnitIDTaken checks case-insensitively, ignoring excludeID.
	UnitIDTaken(ctx context.Context, unitID, excludeID string) (bool, error)
	Update(ctx context.Context, assignment *model.SupplyAssignment) error
	List(ctx context.Context, offset, limit int) ([]model.SupplyAssignment, int64, error)
	// ListReady returns compliant assignments that have no engagement yet.
	ListReady(ctx context.Context) ([]model.SupplyAssignment, error)
}

type supplyAssignmentRepo struct {
	db *gorm.DB
}

func NewSupplyAssignmentRepo(db *gorm.DB) SupplyAssignmentRepository {
	return &supplyAssignmentRepo{db: db}
}

func (r *supplyAssignmentRepo) Create(ctx context.Context, assignment *model.SupplyAssignment) error {
	return translateError(r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(assignment).Error)
}

func (r *supplyAssignmentRepo) GetByID(ctx context.Context, id string) (*model.SupplyAssignment, error) {
	var assignment model.SupplyAssignment
	err := r.db.WithContext(ctx).
		Preload("Request").
		Preload("Request.Lines").
		Preload("Request.Lines.CatalogItem").
		Preload("Supplier").
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *supplyAssignmentRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.SupplyAssignment, error) {
	var assignment model.SupplyAssignment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &assignment, nil
}

func (r *supplyAssignmentRepo) GetByRequest(ctx context.Context, requestID string) (*model.SupplyAssignment, error) {
	var assignment model.SupplyAssignment
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Where("request_id = ?", requestID).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *supplyAssignmentRepo) UnitIDTaken(ctx context.Context, unitID, excludeID string) (bool, error) {
	var n int64
	db := r.db.WithContext(ctx).
		Model(&model.SupplyAssignment{}).
		Where("UPPER(unit_id) = ?", strings.ToUpper(unitID))
	if excludeID != "" {
		db = db.Where("assignment_id <> ?", excludeID)
	}
	err := db.Count(&n).Error
	return n > 0, err
}

func (r *supplyAssignmentRepo) Update(ctx context.Context, assignment *model.SupplyAssignment) error {
	return translateError(r.db.WithContext(ctx).
		Model(&model.SupplyAssignment{}).
		Where("assignment_id = ?", assignment.AssignmentID).
		Updates(map[string]interface{}{
			"supplier_id":    assignment.SupplierID,
			"assigned_on":    assignment.AssignedOn,
			"unit_id":        assignment.UnitID,
			"compliant":      assignment.Compliant,
			"responsible_id": assignment.ResponsibleID,
			"notes":          assignment.Notes,
			"updated_by":     assignment.UpdatedBy,
		}).Error)
}

func (r *supplyAssignmentRepo) List(ctx context.Context, offset, limit int) ([]model.SupplyAssignment, int64, error) {
	var assignments []model.SupplyAssignment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.SupplyAssignment{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Request").
		Preload("Supplier").
		Offset(offset).Limit(limit).
		Order("assigned_on DESC").
		Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

func (r *supplyAssignmentRepo) ListReady(ctx context.Context) ([]model.SupplyAssignment, error) {
	var assignments []model.SupplyAssignment
	err := r.db.WithContext(ctx).
		Preload("Request").
		Preload("Supplier").
		Where("compliant = ?", true).
		Where("NOT EXISTS (SELECT 1 FROM engagements e WHERE e.assignment_id = supply_assignments.assignment_id)").
		Order("assigned_on ASC").
		Find(&assignments).Error
	return assignments, err
}
