package product

import (
	"context"
	"strings"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/tx"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain"
)

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		txManager:      txManager,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForSave)
	base.Hooks().On(domain.BeforeUpdate, svc.prepareForSave)

	return svc
}

// prepareForSave normalizes SKU and mirrors it into the catalog code.
func (s *Service) prepareForSave(ctx context.Context, p *Product) error {
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	if p.Code == "" {
		p.Code = p.SKU
	}

	existing, err := s.repo.GetBySKU(ctx, p.StoreID, p.SKU)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != p.ID {
		return apperror.NewDuplicate("product", "sku", p.SKU)
	}
	return nil
}

// GetBySKU retrieves a product by SKU within a store.
func (s *Service) GetBySKU(ctx context.Context, storeID id.ID, sku string) (*Product, error) {
	p, err := s.repo.GetBySKU(ctx, storeID, strings.ToUpper(strings.TrimSpace(sku)))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", sku)
		}
		return nil, err
	}
	return p, nil
}

// ListByStore returns products of a store.
func (s *Service) ListByStore(ctx context.Context, storeID id.ID, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.ListByStore(ctx, storeID, filter)
}

// SetTotalStock overwrites the on-hand quantity (inventory intake).
func (s *Service) SetTotalStock(ctx context.Context, productID id.ID, qty types.Quantity) error {
	if qty.IsNegative() {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "totalStock")
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetTotalStock(ctx, productID, qty)
	})
}
