// Package company provides the company (legal entity) catalog.
package company

import (
	"context"
	"strings"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/entity"
)

// Company represents a legal entity that owns stores and products.
// All tenant-scoped data hangs off a company.
type Company struct {
	entity.Catalog

	// FullName is the official registered name
	FullName string `db:"full_name" json:"fullName,omitempty"`

	// TaxID is the company tax registration number
	TaxID string `db:"tax_id" json:"taxId,omitempty"`
}

// New creates a new company with generated ID.
func New(code, name string) *Company {
	return &Company{
		Catalog: entity.NewCatalog(strings.TrimSpace(code), strings.TrimSpace(name)),
	}
}

// Validate implements entity.Validatable.
func (c *Company) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(c.Code) == "" {
		return apperror.NewValidation("company code is required").
			WithDetail("field", "code")
	}
	return nil
}
