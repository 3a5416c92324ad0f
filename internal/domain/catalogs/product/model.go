// Package product provides the Product catalog.
// Products are store-scoped: each row carries the store it is sold in and a
// denormalized total stock quantity used by the order commit validation.
package product

import (
	"context"
	"strings"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/entity"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
)

// Product represents a sellable item in a store.
type Product struct {
	entity.Catalog

	// CompanyID is the owning company
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// StoreID is the store this product is sold in
	StoreID id.ID `db:"store_id" json:"storeId"`

	// SKU is the stock-keeping unit (unique within store)
	SKU string `db:"sku" json:"sku"`

	// UnitPrice is the current sale price in minor currency units
	UnitPrice types.MinorUnits `db:"unit_price" json:"unitPrice"`

	// TotalStock is the on-hand quantity. Orders validate against it but
	// never decrement it here; stock movements land through a separate
	// inventory flow.
	TotalStock types.Quantity `db:"total_stock" json:"totalStock"`

	// IsActive indicates if the product can be sold
	IsActive bool `db:"is_active" json:"isActive"`
}

// New creates a new product with generated ID.
func New(companyID, storeID id.ID, sku, name string) *Product {
	p := &Product{
		Catalog:   entity.NewCatalog(sku, strings.TrimSpace(name)),
		CompanyID: companyID,
		StoreID:   storeID,
		SKU:       strings.TrimSpace(sku),
		IsActive:  true,
	}
	return p
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}
	if id.IsNil(p.StoreID) {
		return apperror.NewValidation("store is required").
			WithDetail("field", "storeId")
	}
	if strings.TrimSpace(p.SKU) == "" {
		return apperror.NewValidation("sku is required").
			WithDetail("field", "sku")
	}
	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}

	return nil
}

// Snapshot is the read-only projection of a product taken inside the commit
// transaction. All snapshots are read before any write so the validation
// sees one consistent point in time.
type Snapshot struct {
	ProductID  id.ID            `db:"id"`
	CompanyID  id.ID            `db:"company_id"`
	StoreID    id.ID            `db:"store_id"`
	SKU        string           `db:"sku"`
	Name       string           `db:"name"`
	UnitPrice  types.MinorUnits `db:"unit_price"`
	TotalStock types.Quantity   `db:"total_stock"`
	IsActive   bool             `db:"is_active"`
}

// Snapshot returns the validation projection of the product.
func (p *Product) Snapshot() Snapshot {
	return Snapshot{
		ProductID:  p.ID,
		CompanyID:  p.CompanyID,
		StoreID:    p.StoreID,
		SKU:        p.SKU,
		Name:       p.Name,
		UnitPrice:  p.UnitPrice,
		TotalStock: p.TotalStock,
		IsActive:   p.IsActive,
	}
}
