package entity

import (
	"context"
	"time"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
)

// Document is the base type for business transactions.
// Examples: Order, Refund, StockCount.
type Document struct {
	BaseDocument

	// Number is the document number, unique within its scope.
	// For orders this is the store-scoped invoice number.
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// CompanyID is the owning company (required for multi-company support)
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(companyID id.ID) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
		CompanyID:    companyID,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// IsBackdated checks if document date is in the past.
func (d *Document) IsBackdated() bool {
	return d.Date.Before(time.Now().UTC().Truncate(24 * time.Hour))
}
