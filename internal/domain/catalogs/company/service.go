package company

import (
	"context"
	"strings"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/tx"
	"salesdesk/internal/domain"
)

// Service provides business logic for the Company catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Company]
	repo Repository
}

// NewService creates a new Company service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Company]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "company",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForSave)
	base.Hooks().On(domain.BeforeUpdate, svc.prepareForSave)

	return svc
}

// prepareForSave normalizes the code and guards against duplicates.
func (s *Service) prepareForSave(ctx context.Context, c *Company) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))

	existing, err := s.repo.GetByCode(ctx, c.Code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != c.ID {
		return apperror.NewDuplicate("company", "code", c.Code)
	}
	return nil
}
