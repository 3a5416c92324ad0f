package orders

import (
	"context"
	"fmt"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/entity"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/tx"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/audit"
	"salesdesk/internal/domain/catalogs/product"
	"salesdesk/internal/domain/catalogs/store"
	"salesdesk/pkg/invoiceseq"
	"salesdesk/pkg/logger"
)

// CommitRecorder receives a best-effort audit record after a successful
// commit. Failures are logged, never surfaced: the order is already durable.
type CommitRecorder interface {
	RecordOrderCommit(ctx context.Context, order *Order)
}

// Config tunes the order service.
type Config struct {
	// MaxLinesPerBatch bounds the size of one batch row.
	MaxLinesPerBatch int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{MaxLinesPerBatch: DefaultMaxPerBatch}
}

// Service coordinates the order commit: invoice-number allocation, stock
// validation and the atomic write of header, batches and counter.
type Service struct {
	storeRepo   store.Repository
	productRepo product.Repository
	repo        Repository
	txManager   tx.SerializableManager
	guard       *DuplicateGuard
	mirror      *CounterMirror
	recorder    CommitRecorder
	cfg         Config
}

// NewService creates the order service. recorder may be nil.
func NewService(
	storeRepo store.Repository,
	productRepo product.Repository,
	repo Repository,
	txManager tx.SerializableManager,
	mirror *CounterMirror,
	recorder CommitRecorder,
	cfg Config,
) *Service {
	if cfg.MaxLinesPerBatch <= 0 {
		cfg.MaxLinesPerBatch = DefaultMaxPerBatch
	}
	return &Service{
		storeRepo:   storeRepo,
		productRepo: productRepo,
		repo:        repo,
		txManager:   txManager,
		guard:       NewDuplicateGuard(repo),
		mirror:      mirror,
		recorder:    recorder,
		cfg:         cfg,
	}
}

// Mirror exposes the counter cache (shared with the store service).
func (s *Service) Mirror() *CounterMirror {
	return s.mirror
}

// Submit commits an order: allocates the next invoice number for the store
// and writes the header, the line batches and the advanced counter as one
// atomic transaction. On any failure nothing is written and a structured
// error is returned; no partial result exists.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if id.IsNil(req.StoreID) {
		return nil, apperror.NewValidation("store is required").
			WithDetail("field", "storeId")
	}
	if len(req.Lines) == 0 {
		return nil, apperror.NewValidation("order has no line items").
			WithDetail("field", "lines")
	}

	// Preflight: project the candidate number from a non-transactional
	// counter read and reject obvious duplicates before paying for a
	// transaction. Advisory only; the transaction below is authoritative.
	st, err := s.storeRepo.GetByID(ctx, req.StoreID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("store", req.StoreID.String())
		}
		return nil, err
	}
	if !st.CanSell() {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "store does not accept orders").
			WithDetail("store_id", st.ID.String())
	}
	s.mirror.Observe(st.ID, st.InvoiceToken)

	candidate := invoiceseq.Next(st.InvoiceToken)
	if err := s.guard.Check(ctx, st.ID, candidate); err != nil {
		return nil, err
	}

	// The order identity is fixed before the transaction so retried runs
	// commit the same document.
	order := &Order{
		Document: entity.NewDocument(st.CompanyID),
		StoreID:  st.ID,
		Status:   StatusCompleted,
	}
	order.Comment = req.Comment
	order.CustomerInfo = req.CustomerInfo
	order.Payments = req.Payments
	if err := audit.EnrichCreatedBy(ctx, order); err != nil {
		return nil, err
	}

	var committed invoiceseq.Token

	// The transaction re-runs as a whole on serialization conflicts, so
	// everything below must be safe to execute more than once.
	err = s.txManager.RunSerializable(ctx, func(ctx context.Context) error {
		// Reads first: the locked counter, then every referenced
		// product. No write is issued until all reads are done.
		locked, err := s.storeRepo.GetForUpdate(ctx, st.ID)
		if err != nil {
			return err
		}

		snapshots, err := s.productRepo.GetSnapshots(ctx, productIDs(req.Lines))
		if err != nil {
			return err
		}

		number := invoiceseq.Next(locked.InvoiceToken)
		order.Number = string(number)
		order.Lines = buildLines(req.Lines, snapshots)
		order.RecalculateTotals()

		if err := order.Validate(ctx); err != nil {
			return err
		}
		if err := ValidateStock(order, snapshots); err != nil {
			return err
		}

		// Writes: counter first, then batches, then the header. All
		// three become visible together on commit.
		if err := s.storeRepo.AdvanceInvoiceToken(ctx, locked.ID, locked.InvoiceToken, number); err != nil {
			return err
		}

		batches := s.buildBatches(order)
		order.BatchCount = len(batches)
		if err := s.repo.CreateBatches(ctx, batches); err != nil {
			return fmt.Errorf("write line batches: %w", err)
		}
		if err := s.repo.CreateHeader(ctx, order); err != nil {
			return fmt.Errorf("write order header: %w", err)
		}

		committed = number
		return nil
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewCommitFailed(err)
	}

	s.mirror.Observe(st.ID, committed)
	if s.recorder != nil {
		s.recorder.RecordOrderCommit(ctx, order)
	}

	logger.Info(ctx, "order committed",
		"order_id", order.ID.String(),
		"store_id", st.ID.String(),
		"invoice_number", string(committed),
		"lines", order.LineCount,
		"batches", order.BatchCount,
	)

	return &SubmitResult{
		OrderID:       order.ID,
		InvoiceNumber: committed,
		BatchCount:    order.BatchCount,
	}, nil
}

// buildBatches chunks the order lines and stamps batch identity.
func (s *Service) buildBatches(order *Order) []LineBatch {
	chunks := SplitLines(order.Lines, s.cfg.MaxLinesPerBatch)
	batches := make([]LineBatch, 0, len(chunks))
	for i, chunk := range chunks {
		batches = append(batches, LineBatch{
			ID:          id.New(),
			OrderID:     order.ID,
			BatchNumber: i + 1,
			Items:       chunk,
			Status:      BatchStatusCompleted,
		})
	}
	return batches
}

// productIDs collects distinct product IDs from the requested lines.
func productIDs(lines []SubmitLine) []id.ID {
	seen := make(map[id.ID]bool, len(lines))
	ids := make([]id.ID, 0, len(lines))
	for _, l := range lines {
		if seen[l.ProductID] {
			continue
		}
		seen[l.ProductID] = true
		ids = append(ids, l.ProductID)
	}
	return ids
}

// buildLines materializes order lines from the request and the in-transaction
// product snapshots. Unknown products get a zero-price line; the stock
// validator rejects them with ProductNotFound right after.
func buildLines(reqLines []SubmitLine, snapshots map[id.ID]product.Snapshot) []Line {
	lines := make([]Line, 0, len(reqLines))
	for i, rl := range reqLines {
		line := Line{
			LineNo:    i + 1,
			ProductID: rl.ProductID,
			Quantity:  rl.Quantity,
		}
		if snap, ok := snapshots[rl.ProductID]; ok {
			line.SKU = snap.SKU
			line.Name = snap.Name
			line.UnitPrice = snap.UnitPrice
			line.Amount = lineAmount(snap.UnitPrice, rl.Quantity)
		}
		lines = append(lines, line)
	}
	return lines
}

// lineAmount computes price * quantity in minor units, rounding half up on
// the fixed-point quantity scale.
func lineAmount(price types.MinorUnits, qty types.Quantity) types.MinorUnits {
	total := int64(price) * qty.Int64Scaled()
	half := types.QuantityScale / 2
	if total >= 0 {
		return types.MinorUnits((total + half) / types.QuantityScale)
	}
	return types.MinorUnits((total - half) / types.QuantityScale)
}

// Get retrieves an order with its lines reassembled from batch rows.
func (s *Service) Get(ctx context.Context, orderID id.ID) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("order", orderID.String())
		}
		return nil, err
	}

	batches, err := s.repo.GetBatches(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Lines = JoinBatches(batches)

	return order, nil
}

// GetByInvoiceNumber retrieves an order by its store-scoped invoice number.
func (s *Service) GetByInvoiceNumber(ctx context.Context, storeID id.ID, number invoiceseq.Token) (*Order, error) {
	order, err := s.repo.GetByInvoiceNumber(ctx, storeID, number)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("order", string(number))
		}
		return nil, err
	}

	batches, err := s.repo.GetBatches(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Lines = JoinBatches(batches)

	return order, nil
}

// List retrieves order headers (without lines).
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListFilter().Limit
	}
	if filter.OrderBy == "" {
		filter.OrderBy = DefaultListFilter().OrderBy
	}
	return s.repo.List(ctx, filter)
}

// Void cancels a committed order. The invoice number stays allocated; the
// sequence never reuses it.
func (s *Service) Void(ctx context.Context, orderID id.ID) error {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("order", orderID.String())
		}
		return err
	}
	if order.Status == StatusVoided {
		return apperror.NewConflict("order is already voided").
			WithDetail("order_id", orderID.String())
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.UpdateStatus(ctx, orderID, StatusVoided)
	})
}
