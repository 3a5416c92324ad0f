package dto

import (
	"salesdesk/internal/domain/catalogs/company"
)

// --- Request DTOs ---

// CreateCompanyRequest is the request body for creating a company.
type CreateCompanyRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	FullName string `json:"fullName"`
	TaxID    string `json:"taxId"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCompanyRequest) ToEntity() *company.Company {
	c := company.New(r.Code, r.Name)
	c.FullName = r.FullName
	c.TaxID = r.TaxID
	return c
}

// UpdateCompanyRequest is the request body for updating a company.
type UpdateCompanyRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	FullName string `json:"fullName"`
	TaxID    string `json:"taxId"`
	Version  int    `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCompanyRequest) ApplyTo(c *company.Company) {
	c.Code = r.Code
	c.Name = r.Name
	c.FullName = r.FullName
	c.TaxID = r.TaxID
	c.Version = r.Version
}

// --- Response DTOs ---

// CompanyResponse is the response body for a company.
type CompanyResponse struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	FullName     string `json:"fullName,omitempty"`
	TaxID        string `json:"taxId,omitempty"`
	DeletionMark bool   `json:"deletionMark"`
	Version      int    `json:"version"`
}

// FromCompany creates response DTO from domain entity.
func FromCompany(c *company.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:           c.ID.String(),
		Code:         c.Code,
		Name:         c.Name,
		FullName:     c.FullName,
		TaxID:        c.TaxID,
		DeletionMark: c.DeletionMark,
		Version:      c.Version,
	}
}
