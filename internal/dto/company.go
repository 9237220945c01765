package dto

import (
	"time"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// CreateCompanyRequest defines the expected JSON body for creating a company
type CreateCompanyRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CompanyResponse defines the JSON structure for company API responses
type CompanyResponse struct {
	CompanyID string    `json:"companyID"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListCompaniesResponse wraps a page of companies
type ListCompaniesResponse struct {
	Companies []CompanyResponse `json:"companies"`
}

// ToCompanyResponse converts a domain company to its response DTO
func ToCompanyResponse(company *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID: company.CompanyID,
		Name:      company.Name,
		IsActive:  company.IsActive,
		CreatedAt: company.CreatedAt,
		UpdatedAt: company.LastUpdatedAt,
	}
}
