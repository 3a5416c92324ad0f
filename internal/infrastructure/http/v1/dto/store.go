package dto

import (
	"salesdesk/internal/core/id"
	"salesdesk/internal/domain/catalogs/store"
)

// --- Request DTOs ---

// CreateStoreRequest is the request body for creating a store.
type CreateStoreRequest struct {
	CompanyID     string  `json:"companyId" binding:"required"`
	Code          string  `json:"code" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Address       *string `json:"address"`
	InvoicePrefix string  `json:"invoicePrefix"`
	IsActive      *bool   `json:"isActive"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateStoreRequest) ToEntity() (*store.Store, error) {
	companyID, err := id.Parse(r.CompanyID)
	if err != nil {
		return nil, err
	}

	st := store.New(companyID, r.Code, r.Name, r.InvoicePrefix)
	st.Address = r.Address
	if r.IsActive != nil {
		st.IsActive = *r.IsActive
	}
	return st, nil
}

// UpdateStoreRequest is the request body for updating a store.
// The invoice counter is not part of the payload: it only advances
// inside the commit transaction.
type UpdateStoreRequest struct {
	Code     string  `json:"code" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Address  *string `json:"address,omitempty"`
	IsActive bool    `json:"isActive"`
	Version  int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateStoreRequest) ApplyTo(st *store.Store) {
	st.Code = r.Code
	st.Name = r.Name
	st.Address = r.Address
	st.IsActive = r.IsActive
	st.Version = r.Version
}

// --- Response DTOs ---

// StoreResponse is the response body for a store.
type StoreResponse struct {
	ID            string  `json:"id"`
	CompanyID     string  `json:"companyId"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Address       *string `json:"address,omitempty"`
	IsActive      bool    `json:"isActive"`
	InvoicePrefix string  `json:"invoicePrefix,omitempty"`
	DeletionMark  bool    `json:"deletionMark"`
	Version       int     `json:"version"`
}

// FromStore creates response DTO from domain entity.
func FromStore(st *store.Store) *StoreResponse {
	return &StoreResponse{
		ID:            st.ID.String(),
		CompanyID:     st.CompanyID.String(),
		Code:          st.Code,
		Name:          st.Name,
		Address:       st.Address,
		IsActive:      st.IsActive,
		InvoicePrefix: st.InvoicePrefix,
		DeletionMark:  st.DeletionMark,
		Version:       st.Version,
	}
}

// NextInvoiceResponse is the advisory preview of the next invoice number.
type NextInvoiceResponse struct {
	StoreID       string `json:"storeId"`
	InvoiceNumber string `json:"invoiceNumber"`
	Advisory      bool   `json:"advisory"`
}
