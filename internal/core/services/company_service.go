package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
)

// companyService implements the CompanySvcFacade interface
type companyService struct {
	BaseService
	companyRepo portsrepo.CompanyRepositoryFacade
}

// NewCompanyService creates a new company service
func NewCompanyService(repo portsrepo.CompanyRepositoryFacade) portssvc.CompanySvcFacade {
	return &companyService{companyRepo: repo}
}

var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// CreateCompany creates a new company scoped ledger namespace.
func (s *companyService) CreateCompany(ctx context.Context, name string, creatorUserID string) (*domain.Company, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: company name is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	company := domain.Company{
		CompanyID:   uuid.NewString(),
		Name:        name,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(creatorUserID, now),
	}

	if err := s.companyRepo.SaveCompany(ctx, company); err != nil {
		s.LogError(ctx, err, "Failed to save company", slog.String("name", name))
		return nil, fmt.Errorf("failed to save company: %w", err)
	}

	s.LogInfo(ctx, "Company created", slog.String("company_id", company.CompanyID))
	return &company, nil
}

// FindCompanyByID retrieves a company by its identifier.
func (s *companyService) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find company", slog.String("company_id", companyID))
		}
		return nil, fmt.Errorf("failed to find company %s: %w", companyID, err)
	}
	return company, nil
}
