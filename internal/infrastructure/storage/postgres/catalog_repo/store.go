package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/catalogs/store"
	"salesdesk/internal/infrastructure/storage/postgres"
	"salesdesk/pkg/invoiceseq"
)

const storeTable = "cat_stores"

// StoreRepo implements store.Repository.
type StoreRepo struct {
	*BaseCatalogRepo[*store.Store]
}

// NewStoreRepo creates a new store repository.
func NewStoreRepo(txm *postgres.TxManager) *StoreRepo {
	return &StoreRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*store.Store](
			txm,
			storeTable,
			postgres.ExtractDBColumns[store.Store](),
			func() *store.Store { return &store.Store{} },
		),
	}
}

// GetForUpdate retrieves the store with a row lock. Two commit transactions
// for the same store serialize on this lock, which is what makes the
// allocated invoice numbers gap-free and strictly increasing.
func (r *StoreRepo) GetForUpdate(ctx context.Context, storeID id.ID) (*store.Store, error) {
	st := &store.Store{}

	q := r.Builder().
		Select(postgres.ExtractDBColumns[store.Store]()...).
		From(storeTable).
		Where(squirrel.Eq{"id": storeID}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), st, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(storeTable, storeID.String())
		}
		return nil, fmt.Errorf("get store for update: %w", err)
	}

	return st, nil
}

// AdvanceInvoiceToken moves the invoice counter from `from` to `to`.
// The WHERE clause on the old value makes the update a compare-and-swap:
// zero rows affected means a concurrent allocation got there first, which
// surfaces as a conflict for the transaction manager to retry.
func (r *StoreRepo) AdvanceInvoiceToken(ctx context.Context, storeID id.ID, from, to invoiceseq.Token) error {
	q := r.Builder().
		Update(storeTable).
		Set("invoice_token", string(to)).
		Where(squirrel.Eq{"id": storeID}).
		Where(squirrel.Eq{"invoice_token": string(from)})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("advance invoice token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewTransactionConflict(storeTable, storeID.String())
	}

	return nil
}

// ListByCompany returns all stores of a company.
func (r *StoreRepo) ListByCompany(ctx context.Context, companyID id.ID, filter domain.ListFilter) (domain.ListResult[*store.Store], error) {
	return r.ListWhere(ctx, filter, squirrel.Eq{"company_id": companyID})
}
