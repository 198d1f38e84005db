package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Hems566/eter-projectv1.0/internal/model"
)

// CatalogItemRepository equipment catalog data access.
type CatalogItemRepository interface {
	Create(ctx context.Context, item *model.CatalogItem) error
	GetByID(ctx context.Context, id string) (*model.CatalogItem, error)
	List(ctx context.Context, activeOnly bool) ([]model.CatalogItem, error)
	Update(ctx context.Context, item *model.CatalogItem) error
	// CountLines returns how many request lines reference the item.
	CountLines(ctx context.Context, id string) (int64, error)
}

// SupplierRepository supplier data access.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	GetByID(ctx context.Context, id string) (*model.Supplier, error)
	List(ctx context.Context, activeOnly bool) ([]model.Supplier, error)
	Update(ctx context.Context, supplier *model.Supplier) error
}

// ── CatalogItem ──

type catalogItemRepo struct {
	db *gorm.DB
}

func NewCatalogItemRepo(db *gorm.DB) CatalogItemRepository {
	return &catalogItemRepo{db: db}
}

func (r *catalogItemRepo) Create(ctx context.Context, item *model.CatalogItem) error {
	return translateError(r.db.WithContext(ctx).Create(item).Error)
}

func (r *catalogItemRepo) GetByID(ctx context.Context, id string) (*model.CatalogItem, error) {
	var item model.CatalogItem
	err := r.db.WithContext(ctx).
		Where("catalog_item_id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *catalogItemRepo) List(ctx context.Context, activeOnly bool) ([]model.CatalogItem, error) {
	var items []model.CatalogItem
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("category ASC").Find(&items).Error
	return items, err
}

func (r *catalogItemRepo) Update(ctx context.Context, item *model.CatalogItem) error {
	return translateError(r.db.WithContext(ctx).
		Model(item).
		Where("catalog_item_id = ?", item.CatalogItemID).
		Updates(map[string]interface{}{
			"billing_mode": item.BillingMode,
			"unit_price":   item.UnitPrice,
			"notes":        item.Notes,
			"is_active":    item.IsActive,
			"updated_by":   item.UpdatedBy,
		}).Error)
}

func (r *catalogItemRepo) CountLines(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.RequestLine{}).
		Where("catalog_item_id = ?", id).
		Count(&n).Error
	return n, err
}

// ── Supplier ──

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db: db}
}

func (r *supplierRepo) Create(ctx context.Context, supplier *model.Supplier) error {
	return translateError(r.db.WithContext(ctx).Create(supplier).Error)
}

func (r *supplierRepo) GetByID(ctx context.Context, id string) (*model.Supplier, error) {
	var supplier model.Supplier
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", id).
		First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepo) List(ctx context.Context, activeOnly bool) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) Update(ctx context.Context, supplier *model.Supplier) error {
	return translateError(r.db.WithContext(ctx).
		Model(supplier).
		Where("supplier_id = ?", supplier.SupplierID).
		Updates(map[string]interface{}{
			"name":       supplier.Name,
			"phone":      supplier.Phone,
			"address":    supplier.Address,
			"email":      supplier.Email,
			"is_active":  supplier.IsActive,
			"updated_by": supplier.UpdatedBy,
		}).Error)
}
