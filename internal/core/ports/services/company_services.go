package services

import (
	"context"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// CompanySvcFacade defines the minimal company scoping operations the engine
// needs; membership and role management belong to the surrounding system.
type CompanySvcFacade interface {
	// CreateCompany creates a new company.
	CreateCompany(ctx context.Context, name string, creatorUserID string) (*domain.Company, error)

	// FindCompanyByID retrieves a company.
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)
}
