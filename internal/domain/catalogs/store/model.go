// Package store provides the Store catalog.
// A store is a physical point of sale. It owns the invoice-number counter
// for every order committed against it.
package store

import (
	"context"
	"strings"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/entity"
	"salesdesk/internal/core/id"
	"salesdesk/pkg/invoiceseq"
)

// Store represents a point of sale belonging to a company.
type Store struct {
	entity.Catalog

	// CompanyID is the owning company
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	// IsActive indicates if the store accepts orders
	IsActive bool `db:"is_active" json:"isActive"`

	// InvoicePrefix is prepended to every invoice number of this store
	InvoicePrefix string `db:"invoice_prefix" json:"invoicePrefix,omitempty"`

	// InvoiceToken is the last allocated invoice number. The next order
	// receives invoiceseq.Next(InvoiceToken). Never moves backwards.
	InvoiceToken invoiceseq.Token `db:"invoice_token" json:"invoiceToken"`
}

// New creates a new store with an initialized invoice counter.
func New(companyID id.ID, code, name, invoicePrefix string) *Store {
	return &Store{
		Catalog:       entity.NewCatalog(strings.TrimSpace(code), strings.TrimSpace(name)),
		CompanyID:     companyID,
		IsActive:      true,
		InvoicePrefix: invoicePrefix,
		InvoiceToken:  invoiceseq.New(invoicePrefix),
	}
}

// Validate implements entity.Validatable.
func (s *Store) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(s.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}

	if s.InvoiceToken == "" {
		return apperror.NewValidation("invoice counter is not initialized").
			WithDetail("field", "invoiceToken")
	}

	return nil
}

// NextInvoiceNumber projects the number the next committed order would get.
// This is a pure read; the counter only advances inside the commit transaction.
func (s *Store) NextInvoiceNumber() invoiceseq.Token {
	return invoiceseq.Next(s.InvoiceToken)
}

// CanSell reports whether the store accepts new orders.
func (s *Store) CanSell() bool {
	return s.IsActive && !s.DeletionMark
}
