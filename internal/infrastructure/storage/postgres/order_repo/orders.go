// Package order_repo provides the PostgreSQL implementation of the order
// document repository: the header table plus the batched line rows.
package order_repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/orders"
	"salesdesk/internal/infrastructure/storage/postgres"
	"salesdesk/pkg/invoiceseq"
)

const (
	ordersTable  = "doc_orders"
	batchesTable = "doc_order_line_batches"
)

// OrderRepo implements orders.Repository.
type OrderRepo struct {
	txm        *postgres.TxManager
	selectCols []string
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txm *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[orders.Order](),
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *OrderRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *OrderRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// CreateHeader inserts the order header row. The unique index on
// (store_id, number) rejects duplicate invoice numbers as the last line
// of defense; the conflict surfaces as a commit failure, never a
// silently-duplicated number.
func (r *OrderRepo) CreateHeader(ctx context.Context, order *orders.Order) error {
	data := postgres.StructToMap(order)

	// jsonb columns are marshalled explicitly
	customerInfo, err := json.Marshal(order.CustomerInfo)
	if err != nil {
		return fmt.Errorf("marshal customer info: %w", err)
	}
	payments, err := json.Marshal(order.Payments)
	if err != nil {
		return fmt.Errorf("marshal payments: %w", err)
	}
	data["customer_info"] = customerInfo
	data["payments"] = payments

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.Builder().
		Insert(ordersTable).
		SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order header: %w", err)
	}

	return nil
}

// CreateBatches inserts all line batch rows of an order.
func (r *OrderRepo) CreateBatches(ctx context.Context, batches []orders.LineBatch) error {
	if len(batches) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(batchesTable).
		Columns("id", "order_id", "batch_number", "items", "status")

	for _, b := range batches {
		items, err := json.Marshal(b.Items)
		if err != nil {
			return fmt.Errorf("marshal batch %d items: %w", b.BatchNumber, err)
		}
		q = q.Values(b.ID, b.OrderID, b.BatchNumber, items, b.Status)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert batches: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert line batches: %w", err)
	}

	return nil
}

// GetByID retrieves the order header without lines.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	order := &orders.Order{}

	q := r.Builder().
		Select(r.selectCols...).
		From(ordersTable).
		Where(squirrel.Eq{"id": orderID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), order, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(ordersTable, orderID.String())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return order, nil
}

// GetBatches retrieves the batch rows of an order ordered by batch_number.
func (r *OrderRepo) GetBatches(ctx context.Context, orderID id.ID) ([]orders.LineBatch, error) {
	q := r.Builder().
		Select("id", "order_id", "batch_number", "items", "status").
		From(batchesTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("batch_number")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []orders.LineBatch
	if err := pgxscan.Select(ctx, r.querier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("get batches: %w", err)
	}

	return batches, nil
}

// GetByInvoiceNumber retrieves the order header by store and number.
func (r *OrderRepo) GetByInvoiceNumber(ctx context.Context, storeID id.ID, number invoiceseq.Token) (*orders.Order, error) {
	order := &orders.Order{}

	q := r.Builder().
		Select(r.selectCols...).
		From(ordersTable).
		Where(squirrel.Eq{"store_id": storeID}).
		Where(squirrel.Eq{"number": string(number)}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), order, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(ordersTable, string(number))
		}
		return nil, fmt.Errorf("get order by number: %w", err)
	}

	return order, nil
}

// ExistsByInvoiceNumber reports whether a committed order already carries
// the invoice number for the store. Used by the preflight duplicate check.
func (r *OrderRepo) ExistsByInvoiceNumber(ctx context.Context, storeID id.ID, number invoiceseq.Token) (bool, error) {
	q := r.Builder().
		Select("1").
		From(ordersTable).
		Where(squirrel.Eq{"store_id": storeID}).
		Where(squirrel.Eq{"number": string(number)}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists by invoice number: %w", err)
	}

	return true, nil
}

// List retrieves order headers with filtering and pagination.
func (r *OrderRepo) List(ctx context.Context, filter orders.ListFilter) (domain.ListResult[*orders.Order], error) {
	result := domain.ListResult[*orders.Order]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.Builder().
		Select(r.selectCols...).
		From(ordersTable).
		Where(squirrel.Eq{"deletion_mark": false})

	if filter.StoreID != nil {
		q = q.Where(squirrel.Eq{"store_id": *filter.StoreID})
	}
	if filter.CompanyID != nil {
		q = q.Where(squirrel.Eq{"company_id": *filter.CompanyID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count orders: %w", err)
	}

	orderBy, err := parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list orders: %w", err)
	}

	return result, nil
}

// orderableCols whitelists sortable columns for order lists.
var orderableCols = map[string]bool{
	"date": true, "number": true, "created_at": true, "total_amount": true,
}

func parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		orderBy = "-date"
	}

	direction := "ASC"
	col := orderBy
	if len(orderBy) > 0 && orderBy[0] == '-' {
		direction = "DESC"
		col = orderBy[1:]
	}

	if !orderableCols[col] {
		return "", apperror.NewValidation("invalid sort column").
			WithDetail("column", col)
	}
	return col + " " + direction, nil
}

// UpdateStatus moves the header and all batch rows to the status.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID id.ID, status orders.OrderStatus) error {
	querier := r.querier(ctx)

	q := r.Builder().
		Update(ordersTable).
		Set("status", status).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": orderID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(ordersTable, orderID.String())
	}

	bq := r.Builder().
		Update(batchesTable).
		Set("status", orders.BatchStatus(status)).
		Where(squirrel.Eq{"order_id": orderID})

	sql, args, err = bq.ToSql()
	if err != nil {
		return fmt.Errorf("build batch update: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}

	return nil
}
