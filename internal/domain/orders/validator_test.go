package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/entity"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain/catalogs/product"
)

func qty(units int64) types.Quantity {
	return types.Quantity(units * types.QuantityScale)
}

func testOrder(companyID, storeID id.ID, lines []Line) *Order {
	o := &Order{
		Document: entity.NewDocument(companyID),
		StoreID:  storeID,
		Status:   StatusCompleted,
		Lines:    lines,
	}
	return o
}

func snapshotFor(companyID, storeID id.ID, stock types.Quantity) product.Snapshot {
	return product.Snapshot{
		ProductID:  id.New(),
		CompanyID:  companyID,
		StoreID:    storeID,
		SKU:        "SKU-1",
		Name:       "Item",
		UnitPrice:  100,
		TotalStock: stock,
		IsActive:   true,
	}
}

func TestValidateStock_SufficientStock(t *testing.T) {
	companyID, storeID := id.New(), id.New()
	snap := snapshotFor(companyID, storeID, qty(10))

	order := testOrder(companyID, storeID, []Line{
		{LineNo: 1, ProductID: snap.ProductID, Quantity: qty(3)},
	})

	err := ValidateStock(order, map[id.ID]product.Snapshot{snap.ProductID: snap})
	assert.NoError(t, err)
}

func TestValidateStock_ExactStockPasses(t *testing.T) {
	companyID, storeID := id.New(), id.New()
	snap := snapshotFor(companyID, storeID, qty(5))

	order := testOrder(companyID, storeID, []Line{
		{LineNo: 1, ProductID: snap.ProductID, Quantity: qty(5)},
	})

	err := ValidateStock(order, map[id.ID]product.Snapshot{snap.ProductID: snap})
	assert.NoError(t, err)
}

func TestValidateStock_InsufficientStock(t *testing.T) {
	companyID, storeID := id.New(), id.New()
	snap := snapshotFor(companyID, storeID, qty(2))

	order := testOrder(companyID, storeID, []Line{
		{LineNo: 1, ProductID: snap.ProductID, Quantity: qty(3)},
	})

	err := ValidateStock(order, map[id.ID]product.Snapshot{snap.ProductID: snap})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
}

func TestValidateStock_AggregatesDuplicateLines(t *testing.T) {
	companyID, storeID := id.New(), id.New()
	snap := snapshotFor(companyID, storeID, qty(5))

	// Each line fits on its own, the sum does not.
	order := testOrder(companyID, storeID, []Line{
		{LineNo: 1, ProductID: snap.ProductID, Quantity: qty(3)},
		{LineNo: 2, ProductID: snap.ProductID, Quantity: qty(3)},
	})

	err := ValidateStock(order, map[id.ID]product.Snapshot{snap.ProductID: snap})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
}

func TestValidateStock_ProductNotFound(t *testing.T) {
	companyID, storeID := id.New(), id.New()

	order := testOrder(companyID, storeID, []Line{
		{LineNo: 1, ProductID: id.New(), Quantity: qty(1)},
	})

	err := ValidateStock(order, map[id.ID]product.Snapshot{})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestValidateStock_StoreMismatch(t *testing.T) {
	companyID, storeID := id.New(), id.New()
	snap := snapshotFor(companyID, id.New(), qty(10)) // other store

	order := testOrder(companyID, storeID, []Line{
		{LineNo: 1, ProductID: snap.ProductID, Quantity: qty(1)},
	})

	err := ValidateStock(order, map[id.ID]product.Snapshot{snap.ProductID: snap})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeProductStoreMismatch))
}

func TestValidateStock_CompanyMismatch(t *testing.T) {
	companyID, storeID := id.New(), id.New()
	snap := snapshotFor(id.New(), storeID, qty(10)) // other company

	order := testOrder(companyID, storeID, []Line{
		{LineNo: 1, ProductID: snap.ProductID, Quantity: qty(1)},
	})

	err := ValidateStock(order, map[id.ID]product.Snapshot{snap.ProductID: snap})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeProductCompanyMismatch))
}

func TestValidateStock_ReportsFirstOffendingLine(t *testing.T) {
	companyID, storeID := id.New(), id.New()
	missing := id.New()
	short := snapshotFor(companyID, storeID, qty(1))

	// Line 1 fails on stock, line 2 on existence. The earlier line wins.
	order := testOrder(companyID, storeID, []Line{
		{LineNo: 1, ProductID: short.ProductID, Quantity: qty(2)},
		{LineNo: 2, ProductID: missing, Quantity: qty(1)},
	})

	err := ValidateStock(order, map[id.ID]product.Snapshot{short.ProductID: short})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
}
