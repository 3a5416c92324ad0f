package dto

import (
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain/catalogs/product"
)

// --- Request DTOs ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	CompanyID  string         `json:"companyId" binding:"required"`
	StoreID    string         `json:"storeId" binding:"required"`
	SKU        string         `json:"sku" binding:"required"`
	Name       string         `json:"name" binding:"required"`
	UnitPrice  int64          `json:"unitPrice"`
	TotalStock types.Quantity `json:"totalStock"`
	IsActive   *bool          `json:"isActive"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() (*product.Product, error) {
	companyID, err := id.Parse(r.CompanyID)
	if err != nil {
		return nil, err
	}
	storeID, err := id.Parse(r.StoreID)
	if err != nil {
		return nil, err
	}

	p := product.New(companyID, storeID, r.SKU, r.Name)
	p.UnitPrice = types.MinorUnits(r.UnitPrice)
	p.TotalStock = r.TotalStock
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return p, nil
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	SKU        string         `json:"sku" binding:"required"`
	Name       string         `json:"name" binding:"required"`
	UnitPrice  int64          `json:"unitPrice"`
	TotalStock types.Quantity `json:"totalStock"`
	IsActive   bool           `json:"isActive"`
	Version    int            `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.SKU = r.SKU
	p.Name = r.Name
	p.UnitPrice = types.MinorUnits(r.UnitPrice)
	p.TotalStock = r.TotalStock
	p.IsActive = r.IsActive
	p.Version = r.Version
}

// SetStockRequest overwrites the on-hand quantity of a product.
type SetStockRequest struct {
	TotalStock types.Quantity `json:"totalStock"`
}

// --- Response DTOs ---

// ProductResponse is the response body for a product.
type ProductResponse struct {
	ID           string         `json:"id"`
	CompanyID    string         `json:"companyId"`
	StoreID      string         `json:"storeId"`
	SKU          string         `json:"sku"`
	Name         string         `json:"name"`
	UnitPrice    int64          `json:"unitPrice"`
	TotalStock   types.Quantity `json:"totalStock"`
	IsActive     bool           `json:"isActive"`
	DeletionMark bool           `json:"deletionMark"`
	Version      int            `json:"version"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:           p.ID.String(),
		CompanyID:    p.CompanyID.String(),
		StoreID:      p.StoreID.String(),
		SKU:          p.SKU,
		Name:         p.Name,
		UnitPrice:    int64(p.UnitPrice),
		TotalStock:   p.TotalStock,
		IsActive:     p.IsActive,
		DeletionMark: p.DeletionMark,
		Version:      p.Version,
	}
}
