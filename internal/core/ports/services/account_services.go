package services

import (
	"context"

	"github.com/finbooks/ledger_engine/internal/core/domain"
	"github.com/finbooks/ledger_engine/internal/dto"
)

// AccountReaderSvc defines read-only account operations.
type AccountReaderSvc interface {
	// GetAccountByID retrieves a single account scoped to a company.
	GetAccountByID(ctx context.Context, companyID string, accountID string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its company-scoped code.
	GetAccountByCode(ctx context.Context, companyID string, code string) (*domain.Account, error)

	// GetAccountByIDs retrieves multiple accounts, failing with ErrNotFound if
	// any of them is missing or belongs to a different company.
	GetAccountByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of a company's accounts.
	ListAccounts(ctx context.Context, companyID string, limit int, offset int) ([]domain.Account, error)
}

// AccountWriterSvc defines account mutations.
type AccountWriterSvc interface {
	// CreateAccount creates a new account in the company's chart.
	CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates mutable account details. Changing the account type
	// is rejected with ErrInvalidState once ledger entries reference the account.
	UpdateAccount(ctx context.Context, companyID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount soft-deletes an account; existing entries are untouched.
	DeactivateAccount(ctx context.Context, companyID string, accountID string, userID string) error
}

// AccountSvcFacade combines account reader and writer capabilities.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
