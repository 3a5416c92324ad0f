package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/catalogs/product"
	"salesdesk/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// snapshotCols are the columns of the validation projection read inside the
// commit transaction.
var snapshotCols = []string{"id", "company_id", "store_id", "sku", "name", "unit_price", "total_stock", "is_active"}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*product.Product](
			txm,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// GetSnapshots reads validation projections for the given IDs in one query.
// Missing IDs are absent from the result map.
func (r *ProductRepo) GetSnapshots(ctx context.Context, ids []id.ID) (map[id.ID]product.Snapshot, error) {
	result := make(map[id.ID]product.Snapshot, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	q := r.Builder().
		Select(snapshotCols...).
		From(productTable).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var snapshots []product.Snapshot
	if err := pgxscan.Select(ctx, r.Querier(ctx), &snapshots, sql, args...); err != nil {
		return nil, fmt.Errorf("get product snapshots: %w", err)
	}

	for _, snap := range snapshots {
		result[snap.ProductID] = snap
	}
	return result, nil
}

// ListByStore returns products of a store.
func (r *ProductRepo) ListByStore(ctx context.Context, storeID id.ID, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	return r.ListWhere(ctx, filter, squirrel.Eq{"store_id": storeID})
}

// GetBySKU retrieves a product by SKU within a store.
func (r *ProductRepo) GetBySKU(ctx context.Context, storeID id.ID, sku string) (*product.Product, error) {
	p := &product.Product{}

	q := r.Builder().
		Select(postgres.ExtractDBColumns[product.Product]()...).
		From(productTable).
		Where(squirrel.Eq{"store_id": storeID}).
		Where(squirrel.Eq{"sku": sku}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(productTable, sku)
		}
		return nil, fmt.Errorf("get by sku: %w", err)
	}

	return p, nil
}

// SetTotalStock overwrites the on-hand quantity.
func (r *ProductRepo) SetTotalStock(ctx context.Context, productID id.ID, qty types.Quantity) error {
	q := r.Builder().
		Update(productTable).
		Set("total_stock", qty.Int64Scaled()).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set total stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(productTable, productID.String())
	}

	return nil
}
