package store

import (
	"context"

	"salesdesk/internal/core/id"
	"salesdesk/internal/domain"
	"salesdesk/pkg/invoiceseq"
)

// Repository defines the interface for Store persistence.
type Repository interface {
	domain.CatalogRepository[*Store]

	// GetForUpdate retrieves the store with a row lock. The commit
	// transaction holds this lock while it allocates an invoice number,
	// so two orders for the same store serialize here.
	GetForUpdate(ctx context.Context, id id.ID) (*Store, error)

	// AdvanceInvoiceToken moves the counter from `from` to `to`.
	// The update is conditional on the stored value still being `from`;
	// a zero-row update means a concurrent allocation won and the caller
	// must restart. Must run inside a transaction.
	AdvanceInvoiceToken(ctx context.Context, storeID id.ID, from, to invoiceseq.Token) error

	// ListByCompany returns all stores of a company.
	ListByCompany(ctx context.Context, companyID id.ID, filter domain.ListFilter) (domain.ListResult[*Store], error)
}
