package orders

import (
	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain/catalogs/product"
)

// ValidateStock is the read-only admission check run inside the commit
// transaction, after every read has completed and before any write.
//
// Requested quantities are aggregated per product first, so an order that
// lists the same product on several lines is checked against the sum, not
// line by line. The check never mutates stock; the inventory pipeline
// decrements it in a separate flow.
func ValidateStock(order *Order, snapshots map[id.ID]product.Snapshot) error {
	requested := make(map[id.ID]types.Quantity, len(order.Lines))
	for _, line := range order.Lines {
		if !line.Quantity.IsPositive() {
			continue
		}
		requested[line.ProductID] += line.Quantity
	}

	// Deterministic error selection: report the first offending line in
	// order, not map iteration order.
	checked := make(map[id.ID]bool, len(requested))
	for _, line := range order.Lines {
		qty, ok := requested[line.ProductID]
		if !ok || checked[line.ProductID] {
			continue
		}
		checked[line.ProductID] = true

		snap, ok := snapshots[line.ProductID]
		if !ok {
			return apperror.NewNotFound("product", line.ProductID.String())
		}
		if snap.StoreID != order.StoreID {
			return apperror.NewProductStoreMismatch(line.ProductID.String())
		}
		if snap.CompanyID != order.CompanyID {
			return apperror.NewProductCompanyMismatch(line.ProductID.String())
		}
		if qty > snap.TotalStock {
			return apperror.NewInsufficientStock(
				line.ProductID.String(), qty.Float64(), snap.TotalStock.Float64())
		}
	}

	return nil
}
