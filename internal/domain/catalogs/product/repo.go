package product

import (
	"context"

	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetSnapshots reads validation projections for the given product IDs
	// in one query. Missing IDs are simply absent from the result; the
	// caller decides whether that is an error. Intended to run inside the
	// commit transaction before any write.
	GetSnapshots(ctx context.Context, ids []id.ID) (map[id.ID]Snapshot, error)

	// ListByStore returns products of a store.
	ListByStore(ctx context.Context, storeID id.ID, filter domain.ListFilter) (domain.ListResult[*Product], error)

	// GetBySKU retrieves a product by SKU within a store.
	GetBySKU(ctx context.Context, storeID id.ID, sku string) (*Product, error)

	// SetTotalStock overwrites the on-hand quantity (inventory intake).
	SetTotalStock(ctx context.Context, productID id.ID, qty types.Quantity) error
}
