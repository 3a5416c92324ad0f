package orders

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/catalogs/product"
	"salesdesk/internal/domain/catalogs/store"
	"salesdesk/pkg/invoiceseq"
)

// --- Fakes ---

// fakeTxManager serializes "transactions" with a mutex, which gives the
// same mutual exclusion the row lock provides in production.
type fakeTxManager struct {
	mu sync.Mutex
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTxManager) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(ctx)
}

// fakeStoreRepo holds a single store and implements the compare-and-swap
// counter update. Unused catalog methods stay on the nil embedded interface.
type fakeStoreRepo struct {
	store.Repository
	mu sync.Mutex
	st *store.Store
}

func (f *fakeStoreRepo) get(storeID id.ID) (*store.Store, error) {
	if f.st == nil || f.st.ID != storeID {
		return nil, apperror.NewNotFound("store", storeID.String())
	}
	cp := *f.st
	return &cp, nil
}

func (f *fakeStoreRepo) GetByID(ctx context.Context, storeID id.ID) (*store.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(storeID)
}

func (f *fakeStoreRepo) GetForUpdate(ctx context.Context, storeID id.ID) (*store.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(storeID)
}

func (f *fakeStoreRepo) AdvanceInvoiceToken(ctx context.Context, storeID id.ID, from, to invoiceseq.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.st == nil || f.st.ID != storeID {
		return apperror.NewNotFound("store", storeID.String())
	}
	if f.st.InvoiceToken != from {
		return apperror.NewTransactionConflict("store", storeID.String())
	}
	f.st.InvoiceToken = to
	return nil
}

type fakeProductRepo struct {
	product.Repository
	snapshots map[id.ID]product.Snapshot
}

func (f *fakeProductRepo) GetSnapshots(ctx context.Context, ids []id.ID) (map[id.ID]product.Snapshot, error) {
	out := make(map[id.ID]product.Snapshot, len(ids))
	for _, pid := range ids {
		if snap, ok := f.snapshots[pid]; ok {
			out[pid] = snap
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	mu       sync.Mutex
	headers  map[id.ID]*Order
	batches  map[id.ID][]LineBatch
	byNumber map[string]id.ID
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		headers:  make(map[id.ID]*Order),
		batches:  make(map[id.ID][]LineBatch),
		byNumber: make(map[string]id.ID),
	}
}

func numberKey(storeID id.ID, number string) string {
	return storeID.String() + "|" + number
}

func (f *fakeOrderRepo) ExistsByInvoiceNumber(ctx context.Context, storeID id.ID, number invoiceseq.Token) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byNumber[numberKey(storeID, string(number))]
	return ok, nil
}

func (f *fakeOrderRepo) CreateHeader(ctx context.Context, order *Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := numberKey(order.StoreID, order.Number)
	if _, ok := f.byNumber[key]; ok {
		return apperror.NewDuplicateInvoiceNumber(order.StoreID.String(), order.Number)
	}
	cp := *order
	f.headers[order.ID] = &cp
	f.byNumber[key] = order.ID
	return nil
}

func (f *fakeOrderRepo) CreateBatches(ctx context.Context, batches []LineBatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range batches {
		f.batches[b.OrderID] = append(f.batches[b.OrderID], b)
	}
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.headers[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID.String())
	}
	cp := *order
	return &cp, nil
}

func (f *fakeOrderRepo) GetBatches(ctx context.Context, orderID id.ID) ([]LineBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	batches := append([]LineBatch(nil), f.batches[orderID]...)
	sort.Slice(batches, func(i, j int) bool {
		return batches[i].BatchNumber < batches[j].BatchNumber
	})
	return batches, nil
}

func (f *fakeOrderRepo) GetByInvoiceNumber(ctx context.Context, storeID id.ID, number invoiceseq.Token) (*Order, error) {
	f.mu.Lock()
	orderID, ok := f.byNumber[numberKey(storeID, string(number))]
	f.mu.Unlock()
	if !ok {
		return nil, apperror.NewNotFound("order", string(number))
	}
	return f.GetByID(ctx, orderID)
}

func (f *fakeOrderRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]*Order, 0, len(f.headers))
	for _, o := range f.headers {
		cp := *o
		items = append(items, &cp)
	}
	return domain.ListResult[*Order]{
		Items:      items,
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, orderID id.ID, status OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.headers[orderID]
	if !ok {
		return apperror.NewNotFound("order", orderID.String())
	}
	order.Status = status
	for i := range f.batches[orderID] {
		f.batches[orderID][i].Status = BatchStatus(status)
	}
	return nil
}

// --- Fixture ---

type fixture struct {
	service   *Service
	storeRepo *fakeStoreRepo
	prodRepo  *fakeProductRepo
	orderRepo *fakeOrderRepo
	st        *store.Store
	companyID id.ID
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	companyID := id.New()
	st := store.New(companyID, "ST-001", "Downtown", "DT-")

	storeRepo := &fakeStoreRepo{st: st}
	prodRepo := &fakeProductRepo{snapshots: make(map[id.ID]product.Snapshot)}
	orderRepo := newFakeOrderRepo()

	svc := NewService(storeRepo, prodRepo, orderRepo, &fakeTxManager{}, NewCounterMirror(), nil, cfg)

	return &fixture{
		service:   svc,
		storeRepo: storeRepo,
		prodRepo:  prodRepo,
		orderRepo: orderRepo,
		st:        st,
		companyID: companyID,
	}
}

func (f *fixture) addProduct(priceMinor int64, stockUnits int64) product.Snapshot {
	snap := product.Snapshot{
		ProductID:  id.New(),
		CompanyID:  f.companyID,
		StoreID:    f.st.ID,
		SKU:        "SKU-" + id.New().String()[:8],
		Name:       "Product",
		UnitPrice:  types.MinorUnits(priceMinor),
		TotalStock: qty(stockUnits),
		IsActive:   true,
	}
	f.prodRepo.snapshots[snap.ProductID] = snap
	return snap
}

// --- Tests ---

func TestSubmit_SingleOrder(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	coffee := f.addProduct(899, 100)
	tea := f.addProduct(449, 50)

	result, err := f.service.Submit(context.Background(), SubmitRequest{
		StoreID: f.st.ID,
		Lines: []SubmitLine{
			{ProductID: coffee.ProductID, Quantity: qty(2)},
			{ProductID: tea.ProductID, Quantity: qty(3)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, invoiceseq.Token("DT-000001"), result.InvoiceNumber)
	assert.Equal(t, 1, result.BatchCount)
	assert.False(t, id.IsNil(result.OrderID))

	// Counter advanced.
	assert.Equal(t, invoiceseq.Token("DT-000001"), f.storeRepo.st.InvoiceToken)

	// Header persisted with computed totals and captured prices.
	order, err := f.service.Get(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "DT-000001", order.Number)
	assert.Equal(t, StatusCompleted, order.Status)
	assert.Equal(t, 2, order.LineCount)
	assert.Equal(t, qty(5), order.TotalQuantity)
	assert.Equal(t, types.MinorUnits(2*899+3*449), order.TotalAmount)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, coffee.UnitPrice, order.Lines[0].UnitPrice)
	assert.Equal(t, types.MinorUnits(2*899), order.Lines[0].Amount)

	// Mirror observed the committed value.
	tok, ok := f.service.Mirror().Peek(f.st.ID)
	require.True(t, ok)
	assert.Equal(t, invoiceseq.Token("DT-000001"), tok)
}

func TestSubmit_SequentialNumbersIncrease(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	snap := f.addProduct(100, 1000)

	var numbers []invoiceseq.Token
	for i := 0; i < 5; i++ {
		result, err := f.service.Submit(context.Background(), SubmitRequest{
			StoreID: f.st.ID,
			Lines:   []SubmitLine{{ProductID: snap.ProductID, Quantity: qty(1)}},
		})
		require.NoError(t, err)
		numbers = append(numbers, result.InvoiceNumber)
	}

	for i := 1; i < len(numbers); i++ {
		assert.True(t, invoiceseq.Less(numbers[i-1], numbers[i]),
			"numbers must be strictly increasing: %s then %s", numbers[i-1], numbers[i])
	}
	assert.Equal(t, invoiceseq.Token("DT-000005"), numbers[4])
}

func TestSubmit_BatchSplitting(t *testing.T) {
	f := newFixture(t, Config{MaxLinesPerBatch: 50})

	lines := make([]SubmitLine, 120)
	for i := range lines {
		snap := f.addProduct(100, 10)
		lines[i] = SubmitLine{ProductID: snap.ProductID, Quantity: qty(1)}
	}

	result, err := f.service.Submit(context.Background(), SubmitRequest{
		StoreID: f.st.ID,
		Lines:   lines,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.BatchCount)

	batches, err := f.orderRepo.GetBatches(context.Background(), result.OrderID)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0].Items, 50)
	assert.Len(t, batches[1].Items, 50)
	assert.Len(t, batches[2].Items, 20)

	// Line numbers stay contiguous across batch boundaries.
	reassembled := JoinBatches(batches)
	require.Len(t, reassembled, 120)
	for i, line := range reassembled {
		assert.Equal(t, i+1, line.LineNo)
	}
}

func TestSubmit_ConcurrentCommitsGetDistinctNumbers(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	snap := f.addProduct(100, 1000)

	const n = 10
	results := make([]invoiceseq.Token, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.service.Submit(context.Background(), SubmitRequest{
				StoreID: f.st.ID,
				Lines:   []SubmitLine{{ProductID: snap.ProductID, Quantity: qty(1)}},
			})
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = res.InvoiceNumber
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}

	seen := make(map[invoiceseq.Token]bool, n)
	for _, tok := range results {
		assert.False(t, seen[tok], "duplicate invoice number %s", tok)
		seen[tok] = true
	}
	assert.Equal(t, invoiceseq.Token("DT-000010"), f.storeRepo.st.InvoiceToken)
}

func TestSubmit_InsufficientStockAbortsWithoutWrites(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	snap := f.addProduct(500, 2)

	before := f.storeRepo.st.InvoiceToken

	_, err := f.service.Submit(context.Background(), SubmitRequest{
		StoreID: f.st.ID,
		Lines:   []SubmitLine{{ProductID: snap.ProductID, Quantity: qty(3)}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// Nothing written, counter unchanged.
	assert.Equal(t, before, f.storeRepo.st.InvoiceToken)
	assert.Empty(t, f.orderRepo.headers)
	assert.Empty(t, f.orderRepo.batches)
}

func TestSubmit_ForeignStoreProductAborts(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	foreign := product.Snapshot{
		ProductID:  id.New(),
		CompanyID:  f.companyID,
		StoreID:    id.New(), // some other store
		SKU:        "FRN-001",
		Name:       "Foreign",
		UnitPrice:  100,
		TotalStock: qty(10),
		IsActive:   true,
	}
	f.prodRepo.snapshots[foreign.ProductID] = foreign

	before := f.storeRepo.st.InvoiceToken

	_, err := f.service.Submit(context.Background(), SubmitRequest{
		StoreID: f.st.ID,
		Lines:   []SubmitLine{{ProductID: foreign.ProductID, Quantity: qty(1)}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeProductStoreMismatch))
	assert.Equal(t, before, f.storeRepo.st.InvoiceToken)
	assert.Empty(t, f.orderRepo.headers)
}

func TestSubmit_UnknownProductAborts(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	_, err := f.service.Submit(context.Background(), SubmitRequest{
		StoreID: f.st.ID,
		Lines:   []SubmitLine{{ProductID: id.New(), Quantity: qty(1)}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, f.orderRepo.headers)
}

func TestSubmit_DuplicatePreflightAborts(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	snap := f.addProduct(100, 10)

	// An order already carries the number the preflight will project.
	candidate := invoiceseq.Next(f.st.InvoiceToken)
	f.orderRepo.byNumber[numberKey(f.st.ID, string(candidate))] = id.New()

	_, err := f.service.Submit(context.Background(), SubmitRequest{
		StoreID: f.st.ID,
		Lines:   []SubmitLine{{ProductID: snap.ProductID, Quantity: qty(1)}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicateInvoice))
	assert.Empty(t, f.orderRepo.headers)
}

func TestSubmit_UnknownStore(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	_, err := f.service.Submit(context.Background(), SubmitRequest{
		StoreID: id.New(),
		Lines:   []SubmitLine{{ProductID: id.New(), Quantity: qty(1)}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSubmit_InactiveStoreRefused(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	snap := f.addProduct(100, 10)
	f.storeRepo.st.IsActive = false

	_, err := f.service.Submit(context.Background(), SubmitRequest{
		StoreID: f.st.ID,
		Lines:   []SubmitLine{{ProductID: snap.ProductID, Quantity: qty(1)}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))
}

func TestSubmit_EmptyLinesRejected(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	_, err := f.service.Submit(context.Background(), SubmitRequest{StoreID: f.st.ID})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestVoid_KeepsNumberAllocated(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	snap := f.addProduct(100, 100)

	result, err := f.service.Submit(context.Background(), SubmitRequest{
		StoreID: f.st.ID,
		Lines:   []SubmitLine{{ProductID: snap.ProductID, Quantity: qty(1)}},
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Void(context.Background(), result.OrderID))

	voided, err := f.service.Get(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, StatusVoided, voided.Status)

	// The counter does not move back; the next order gets a fresh number.
	next, err := f.service.Submit(context.Background(), SubmitRequest{
		StoreID: f.st.ID,
		Lines:   []SubmitLine{{ProductID: snap.ProductID, Quantity: qty(1)}},
	})
	require.NoError(t, err)
	assert.Equal(t, invoiceseq.Token("DT-000002"), next.InvoiceNumber)

	// Voiding twice is a conflict.
	err = f.service.Void(context.Background(), result.OrderID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConflict))
}

func TestGetByInvoiceNumber(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	snap := f.addProduct(250, 10)

	result, err := f.service.Submit(context.Background(), SubmitRequest{
		StoreID: f.st.ID,
		Lines:   []SubmitLine{{ProductID: snap.ProductID, Quantity: qty(4)}},
	})
	require.NoError(t, err)

	order, err := f.service.GetByInvoiceNumber(context.Background(), f.st.ID, result.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, result.OrderID, order.ID)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, types.MinorUnits(1000), order.Lines[0].Amount)
}
