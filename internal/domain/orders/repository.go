package orders

import (
	"context"
	"time"

	"salesdesk/internal/core/id"
	"salesdesk/internal/domain"
	"salesdesk/pkg/invoiceseq"
)

// ListFilter narrows order queries.
type ListFilter struct {
	StoreID   *id.ID
	CompanyID *id.ID
	Status    *OrderStatus
	DateFrom  *time.Time
	DateTo    *time.Time

	OrderBy string
	Limit   int
	Offset  int
}

// DefaultListFilter returns sensible defaults (newest first).
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "-date",
	}
}

// Repository defines the persistence surface of the order document.
// The write methods run inside the commit transaction; the header and all
// batch rows become visible atomically or not at all.
type Repository interface {
	OrderQuery

	// CreateHeader inserts the order header row. The unique index on
	// (store_id, number) is the last line of defense against duplicate
	// invoice numbers.
	CreateHeader(ctx context.Context, order *Order) error

	// CreateBatches inserts all line batch rows of an order.
	CreateBatches(ctx context.Context, batches []LineBatch) error

	// GetByID retrieves the order header without lines.
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	// GetBatches retrieves the batch rows of an order ordered by
	// batch_number, for line reassembly.
	GetBatches(ctx context.Context, orderID id.ID) ([]LineBatch, error)

	// GetByInvoiceNumber retrieves the order header by store and number.
	GetByInvoiceNumber(ctx context.Context, storeID id.ID, number invoiceseq.Token) (*Order, error)

	// List retrieves order headers with filtering and pagination.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error)

	// UpdateStatus moves the header and all batch rows to the status.
	UpdateStatus(ctx context.Context, orderID id.ID, status OrderStatus) error
}
