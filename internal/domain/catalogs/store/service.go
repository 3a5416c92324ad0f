package store

import (
	"context"
	"strings"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/tx"
	"salesdesk/internal/domain"
	"salesdesk/pkg/invoiceseq"
)

// CounterObserver is the cached invoice-counter projection the service
// feeds and reads. Observe records counter values seen in the database,
// PreviewNext serves a preview without a round trip, Invalidate drops a
// store after catalog edits. Implemented by the orders counter mirror.
type CounterObserver interface {
	Observe(storeID id.ID, token invoiceseq.Token)
	PreviewNext(storeID id.ID) (invoiceseq.Token, bool)
	Invalidate(storeID id.ID)
}

// Service provides business logic for the Store catalog.
type Service struct {
	*domain.CatalogService[*Store]
	repo   Repository
	mirror CounterObserver
}

// NewService creates a new Store service. mirror may be nil.
func NewService(repo Repository, txManager tx.Manager, mirror CounterObserver) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Store]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "store",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		mirror:         mirror,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	base.Hooks().On(domain.BeforeUpdate, svc.guardCounterRollback)
	base.Hooks().On(domain.AfterUpdate, svc.refreshMirror)

	return svc
}

// prepareForCreate normalizes the code and initializes the counter.
func (s *Service) prepareForCreate(ctx context.Context, st *Store) error {
	st.Code = strings.ToUpper(strings.TrimSpace(st.Code))

	if st.InvoiceToken == "" {
		st.InvoiceToken = invoiceseq.New(st.InvoicePrefix)
	}
	return nil
}

// guardCounterRollback refuses updates that would move the counter backwards.
// Catalog edits change names and prefixes, never allocated numbers.
func (s *Service) guardCounterRollback(ctx context.Context, st *Store) error {
	current, err := s.repo.GetByID(ctx, st.ID)
	if err != nil {
		return err
	}
	if invoiceseq.Less(st.InvoiceToken, current.InvoiceToken) {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"invoice counter cannot move backwards").
			WithDetail("store_id", st.ID.String()).
			WithDetail("current", string(current.InvoiceToken)).
			WithDetail("requested", string(st.InvoiceToken))
	}
	return nil
}

// refreshMirror keeps the cached counter projection in sync after edits.
func (s *Service) refreshMirror(ctx context.Context, st *Store) error {
	if s.mirror != nil {
		s.mirror.Invalidate(st.ID)
	}
	return nil
}

// PreviewNextInvoice returns the invoice number the next order for the store
// would receive. Advisory only: the authoritative allocation happens inside
// the commit transaction and may differ under concurrency.
//
// A hot mirror answers without touching the database; a miss falls back to
// the store row and primes the mirror for subsequent calls.
func (s *Service) PreviewNextInvoice(ctx context.Context, storeID id.ID) (invoiceseq.Token, error) {
	if s.mirror != nil {
		if next, ok := s.mirror.PreviewNext(storeID); ok {
			return next, nil
		}
	}

	st, err := s.repo.GetByID(ctx, storeID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", apperror.NewNotFound("store", storeID.String())
		}
		return "", err
	}
	if s.mirror != nil {
		s.mirror.Observe(st.ID, st.InvoiceToken)
	}
	return st.NextInvoiceNumber(), nil
}

// ListByCompany returns all stores of a company.
func (s *Service) ListByCompany(ctx context.Context, companyID id.ID, filter domain.ListFilter) (domain.ListResult[*Store], error) {
	return s.repo.ListByCompany(ctx, companyID, filter)
}
