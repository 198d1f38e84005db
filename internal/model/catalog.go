package model

import "github.com/shopspring/decimal"

// EquipmentCategory of a catalog item.
type EquipmentCategory string

const (
	CategoryGrader       EquipmentCategory = "GRADER"
	CategoryBulldozer    EquipmentCategory = "BULLDOZER"
	CategoryExcavator    EquipmentCategory = "EXCAVATOR"
	CategoryCompactor    EquipmentCategory = "COMPACTOR"
	CategoryTruck        EquipmentCategory = "TRUCK"
	CategoryLightVehicle EquipmentCategory = "LIGHT_VEHICLE"
	CategoryGenerator    EquipmentCategory = "GENERATOR"
	CategoryOther        EquipmentCategory = "OTHER"
)

// Valid reports whether c is a known category.
func (c EquipmentCategory) Valid() bool {
	switch c {
	case CategoryGrader, CategoryBulldozer, CategoryExcavator, CategoryCompactor,
		CategoryTruck, CategoryLightVehicle, CategoryGenerator, CategoryOther:
		return true
	}
	return false
}

// BillingMode selects the daily amount formula.
type BillingMode string

const (
	BillingPerDay   BillingMode = "PER_DAY"
	BillingPerHour  BillingMode = "PER_HOUR"
	BillingFlatRate BillingMode = "FLAT_RATE"
)

func (m BillingMode) Valid() bool {
	switch m {
	case BillingPerDay, BillingPerHour, BillingFlatRate:
		return true
	}
	return false
}

// CatalogItem table catalog_items. Price and billing mode are frozen once a request line references the item.
type CatalogItem struct {
	CatalogItemID string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"catalog_item_id"`
	Category      EquipmentCategory `gorm:"type:varchar(30);not null;uniqueIndex"          json:"category"`
	BillingMode   BillingMode       `gorm:"type:varchar(20);not null"                      json:"billing_mode"`
	UnitPrice     decimal.Decimal   `gorm:"type:numeric(15,3);not null"                    json:"unit_price"`
	Notes         string            `gorm:"type:text"                                      json:"notes"`
	IsActive      bool              `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

func (CatalogItem) TableName() string { return "catalog_items" }

// Supplier table suppliers.
type Supplier struct {
	SupplierID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"supplier_id"`
	TaxID      string `gorm:"type:varchar(8);not null;uniqueIndex"           json:"tax_id"`
	Name       string `gorm:"type:varchar(200);not null"                     json:"name"`
	Phone      string `gorm:"type:varchar(20)"                               json:"phone"`
	Address    string `gorm:"type:text"                                      json:"address"`
	Email      string `gorm:"type:varchar(255)"                              json:"email"`
	IsActive   bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

func (Supplier) TableName() string { return "suppliers" }
