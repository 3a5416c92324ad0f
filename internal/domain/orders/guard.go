package orders

import (
	"context"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/pkg/invoiceseq"
)

// OrderQuery is the read surface the duplicate guard needs.
type OrderQuery interface {
	// ExistsByInvoiceNumber reports whether a committed order already
	// carries the invoice number for the store.
	ExistsByInvoiceNumber(ctx context.Context, storeID id.ID, number invoiceseq.Token) (bool, error)
}

// DuplicateGuard is the preflight duplicate check. It runs outside the
// commit transaction against a projected candidate number, so it can be
// stale by the time the transaction runs. It is a latency optimization:
// a hit aborts cheaply, a miss proves nothing. Uniqueness rests on the
// row lock and unique index inside the transaction.
type DuplicateGuard struct {
	query OrderQuery
}

// NewDuplicateGuard creates a guard over the given order query.
func NewDuplicateGuard(query OrderQuery) *DuplicateGuard {
	return &DuplicateGuard{query: query}
}

// Check aborts the submission if the candidate number is already taken.
func (g *DuplicateGuard) Check(ctx context.Context, storeID id.ID, candidate invoiceseq.Token) error {
	exists, err := g.query.ExistsByInvoiceNumber(ctx, storeID, candidate)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicateInvoiceNumber(storeID.String(), string(candidate))
	}
	return nil
}
