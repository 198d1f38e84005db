package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/model"
	"github.com/Hems566/eter-projectv1.0/internal/repository"
	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

// ── catalog errors ──

var (
	ErrCatalogItemNotFound = pkgerrors.NotFound("catalog_item_not_found", "catalog item not found")
	ErrSupplierNotFound    = pkgerrors.NotFound("supplier_not_found", "supplier not found")
	ErrCatalogItemFrozen   = pkgerrors.Precondition("catalog_item_frozen",
		"price and billing mode cannot change once the item is used by a request")
)

// taxIDRule matches the supplier DTO binding tag.
const taxIDRule = "len=8,number"

var validate = validator.New()

// CatalogService manages equipment types and suppliers.
type CatalogService interface {
	CreateItem(ctx context.Context, req *dto.CreateCatalogItemRequest, actor Actor) (*dto.CatalogItemResponse, error)
	GetItem(ctx context.Context, id string) (*dto.CatalogItemResponse, error)
	ListItems(ctx context.Context, activeOnly bool) ([]dto.CatalogItemResponse, error)
	UpdateItem(ctx context.Context, id string, req *dto.UpdateCatalogItemRequest, actor Actor) (*dto.CatalogItemResponse, error)

	CreateSupplier(ctx context.Context, req *dto.CreateSupplierRequest, actor Actor) (*dto.SupplierResponse, error)
	GetSupplier(ctx context.Context, id string) (*dto.SupplierResponse, error)
	ListSuppliers(ctx context.Context, activeOnly bool) ([]dto.SupplierResponse, error)
	UpdateSupplier(ctx context.Context, id string, req *dto.UpdateSupplierRequest, actor Actor) (*dto.SupplierResponse, error)
}

type catalogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewCatalogService(repo *repository.Repository, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, logger: logger}
}

// ────────────────────── catalog items ──────────────────────

func (s *catalogService) CreateItem(ctx context.Context, req *dto.CreateCatalogItemRequest, actor Actor) (*dto.CatalogItemResponse, error) {
	if !actor.Capabilities.CanValidate {
		return nil, pkgerrors.Forbidden("catalog_manage", "only buyers and administrators manage the catalog")
	}
	if !req.Category.Valid() {
		return nil, pkgerrors.Validation("category", "unknown equipment category %q", req.Category)
	}
	if !req.BillingMode.Valid() {
		return nil, pkgerrors.Validation("billing_mode", "unknown billing mode %q", req.BillingMode)
	}
	if !req.UnitPrice.IsPositive() {
		return nil, pkgerrors.Validation("unit_price", "unit price must be greater than zero")
	}

	item := &model.CatalogItem{
		CatalogItemID: uuid.NewString(),
		Category:      req.Category,
		BillingMode:   req.BillingMode,
		UnitPrice:     roundMoney(req.UnitPrice),
		Notes:         req.Notes,
		IsActive:      true,
	}
	item.CreatedBy = &actor.UserID
	if err := s.repo.CatalogItem.Create(ctx, item); err != nil {
		s.logger.Error("create catalog item failed", zap.String("category", string(req.Category)), zap.Error(err))
		return nil, err
	}
	return toCatalogItemResponse(item), nil
}

func (s *catalogService) GetItem(ctx context.Context, id string) (*dto.CatalogItemResponse, error) {
	item, err := s.getItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCatalogItemResponse(item), nil
}

func (s *catalogService) ListItems(ctx context.Context, activeOnly bool) ([]dto.CatalogItemResponse, error) {
	items, err := s.repo.CatalogItem.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("list catalog items failed", zap.Error(err))
		return nil, err
	}
	list := make([]dto.CatalogItemResponse, 0, len(items))
	for i := range items {
		list = append(list, *toCatalogItemResponse(&items[i]))
	}
	return list, nil
}

func (s *catalogService) UpdateItem(ctx context.Context, id string, req *dto.UpdateCatalogItemRequest, actor Actor) (*dto.CatalogItemResponse, error) {
	if !actor.Capabilities.CanValidate {
		return nil, pkgerrors.Forbidden("catalog_manage", "only buyers and administrators manage the catalog")
	}
	item, err := s.getItem(ctx, id)
	if err != nil {
		return nil, err
	}

	pricing := (req.BillingMode != nil && *req.BillingMode != item.BillingMode) ||
		(req.UnitPrice != nil && !req.UnitPrice.Equal(item.UnitPrice))
	if pricing {
		used, err := s.repo.CatalogItem.CountLines(ctx, id)
		if err != nil {
			s.logger.Error("count catalog item usage failed", zap.String("id", id), zap.Error(err))
			return nil, err
		}
		if used > 0 {
			return nil, ErrCatalogItemFrozen
		}
	}

	if req.BillingMode != nil {
		if !req.BillingMode.Valid() {
			return nil, pkgerrors.Validation("billing_mode", "unknown billing mode %q", *req.BillingMode)
		}
		item.BillingMode = *req.BillingMode
	}
	if req.UnitPrice != nil {
		if !req.UnitPrice.IsPositive() {
			return nil, pkgerrors.Validation("unit_price", "unit price must be greater than zero")
		}
		item.UnitPrice = roundMoney(*req.UnitPrice)
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	item.UpdatedBy = &actor.UserID

	if err := s.repo.CatalogItem.Update(ctx, item); err != nil {
		s.logger.Error("update catalog item failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCatalogItemResponse(item), nil
}

// ────────────────────── suppliers ──────────────────────

func (s *catalogService) CreateSupplier(ctx context.Context, req *dto.CreateSupplierRequest, actor Actor) (*dto.SupplierResponse, error) {
	if !actor.Capabilities.CanValidate {
		return nil, pkgerrors.Forbidden("supplier_manage", "only buyers and administrators manage suppliers")
	}
	taxID := strings.TrimSpace(req.TaxID)
	if err := validate.Var(taxID, taxIDRule); err != nil {
		return nil, pkgerrors.Validation("tax_id", "tax id must be exactly 8 digits")
	}

	supplier := &model.Supplier{
		SupplierID: uuid.NewString(),
		TaxID:      taxID,
		Name:       strings.TrimSpace(req.Name),
		Phone:      req.Phone,
		Address:    req.Address,
		Email:      req.Email,
		IsActive:   true,
	}
	supplier.CreatedBy = &actor.UserID
	if err := s.repo.Supplier.Create(ctx, supplier); err != nil {
		if errors.Is(err, pkgerrors.ErrConflict) {
			return nil, pkgerrors.Conflict("tax_id_taken", "a supplier with tax id %s already exists", taxID)
		}
		s.logger.Error("create supplier failed", zap.String("tax_id", taxID), zap.Error(err))
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

func (s *catalogService) GetSupplier(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	supplier, err := s.getSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

func (s *catalogService) ListSuppliers(ctx context.Context, activeOnly bool) ([]dto.SupplierResponse, error) {
	suppliers, err := s.repo.Supplier.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("list suppliers failed", zap.Error(err))
		return nil, err
	}
	list := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		list = append(list, *toSupplierResponse(&suppliers[i]))
	}
	return list, nil
}

func (s *catalogService) UpdateSupplier(ctx context.Context, id string, req *dto.UpdateSupplierRequest, actor Actor) (*dto.SupplierResponse, error) {
	if !actor.Capabilities.CanValidate {
		return nil, pkgerrors.Forbidden("supplier_manage", "only buyers and administrators manage suppliers")
	}
	supplier, err := s.getSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		supplier.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.Email != nil {
		supplier.Email = *req.Email
	}
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}
	supplier.UpdatedBy = &actor.UserID

	if err := s.repo.Supplier.Update(ctx, supplier); err != nil {
		s.logger.Error("update supplier failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// ── helpers ──

func (s *catalogService) getItem(ctx context.Context, id string) (*model.CatalogItem, error) {
	item, err := s.repo.CatalogItem.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCatalogItemNotFound
		}
		s.logger.Error("get catalog item failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return item, nil
}

func (s *catalogService) getSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	supplier, err := s.repo.Supplier.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		s.logger.Error("get supplier failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return supplier, nil
}

func toCatalogItemResponse(item *model.CatalogItem) *dto.CatalogItemResponse {
	return &dto.CatalogItemResponse{
		ID:          item.CatalogItemID,
		Category:    item.Category,
		BillingMode: item.BillingMode,
		UnitPrice:   formatMoney(item.UnitPrice),
		Notes:       item.Notes,
		IsActive:    item.IsActive,
	}
}

func toSupplierResponse(supplier *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:       supplier.SupplierID,
		TaxID:    supplier.TaxID,
		Name:     supplier.Name,
		Phone:    supplier.Phone,
		Address:  supplier.Address,
		Email:    supplier.Email,
		IsActive: supplier.IsActive,
	}
}
