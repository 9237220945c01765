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
	"github.com/finbooks/ledger_engine/internal/dto"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerEntryReader
	companySvc  portssvc.CompanySvcFacade
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithCompanyService adds the company service dependency, used to verify the
// target company exists before creating accounts in it.
func WithCompanyService(svc portssvc.CompanySvcFacade) AccountServiceOption {
	return func(s *accountService) {
		s.companySvc = svc
	}
}

// WithLedgerReader adds the ledger reader dependency, used to guard account
// type changes once posted entries reference the account.
func WithLedgerReader(repo portsrepo.LedgerEntryReader) AccountServiceOption {
	return func(s *accountService) {
		s.ledgerRepo = repo
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: repo,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount creates a new account in the company's chart of accounts.
func (s *accountService) CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if s.companySvc != nil {
		if _, err := s.companySvc.FindCompanyByID(ctx, companyID); err != nil {
			s.LogWarn(ctx, "Company not found for account creation", slog.String("company_id", companyID))
			return nil, err
		}
	}

	accountType := domain.AccountType(req.AccountType)
	if !domain.ValidAccountType(accountType) {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}

	// Company-scoped code uniqueness; the database constraint backs this up
	// for concurrent creators.
	existing, err := s.accountRepo.FindAccountByCode(ctx, companyID, req.Code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check account code uniqueness", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to check account code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: account code %s already exists in company %s", apperrors.ErrDuplicate, req.Code, companyID)
	}

	if req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, req.ParentAccountID)
		if err != nil {
			s.LogError(ctx, err, "Failed to find parent account", slog.String("parent_id", req.ParentAccountID))
			return nil, fmt.Errorf("invalid parent account: %w", err)
		}
		if parent.CompanyID != companyID {
			s.LogWarn(ctx, "Parent account belongs to different company",
				slog.String("parent_company", parent.CompanyID),
				slog.String("requested_company", companyID))
			return nil, fmt.Errorf("%w: parent account belongs to a different company", apperrors.ErrValidation)
		}
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		CompanyID:       companyID,
		Code:            req.Code,
		Name:            req.Name,
		AccountType:     accountType,
		ParentAccountID: req.ParentAccountID,
		Description:     req.Description,
		SecurityLevel:   req.SecurityLevel,
		IsBankAccount:   req.IsBankAccount,
		IsActive:        true,
		AuditFields:     domain.NewAuditFields(userID, now),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code),
		slog.String("company_id", companyID))
	return &account, nil
}

// GetAccountByID retrieves a single account scoped to a company.
func (s *accountService) GetAccountByID(ctx context.Context, companyID string, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.CompanyID != companyID {
		// Obscure existence across company boundaries.
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

// GetAccountByCode retrieves an account by its company-scoped code.
func (s *accountService) GetAccountByCode(ctx context.Context, companyID string, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, companyID, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code", slog.String("code", code))
		}
		return nil, fmt.Errorf("failed to find account with code %s: %w", code, err)
	}
	return account, nil
}

// GetAccountByIDs retrieves multiple accounts, failing when any is missing or
// belongs to a different company.
func (s *accountService) GetAccountByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts by IDs", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range accountIDs {
		acc, found := accountsMap[id]
		if !found {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if acc.CompanyID != companyID {
			s.LogWarn(ctx, "Account belongs to a different company",
				slog.String("account_id", id),
				slog.String("account_company", acc.CompanyID),
				slog.String("requested_company", companyID))
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return accountsMap, nil
}

// ListAccounts retrieves a paginated list of a company's accounts.
func (s *accountService) ListAccounts(ctx context.Context, companyID string, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, companyID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount updates mutable account details. The account type is frozen
// once any ledger entry references the account; the entry's meaning in past
// reports must not silently change.
func (s *accountService) UpdateAccount(ctx context.Context, companyID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, companyID, accountID)
	if err != nil {
		return nil, err
	}

	updated := false

	if req.AccountType != nil && domain.AccountType(*req.AccountType) != account.AccountType {
		newType := domain.AccountType(*req.AccountType)
		if !domain.ValidAccountType(newType) {
			return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, *req.AccountType)
		}
		if s.ledgerRepo != nil {
			hasEntries, err := s.ledgerRepo.HasEntriesForAccount(ctx, accountID)
			if err != nil {
				s.LogError(ctx, err, "Failed to check ledger entries for account", slog.String("account_id", accountID))
				return nil, fmt.Errorf("failed to check ledger entries: %w", err)
			}
			if hasEntries {
				return nil, fmt.Errorf("%w: account %s has posted entries, its type cannot change", apperrors.ErrInvalidState, accountID)
			}
		}
		account.AccountType = newType
		updated = true
	}

	if req.Code != nil && *req.Code != account.Code {
		existing, err := s.accountRepo.FindAccountByCode(ctx, companyID, *req.Code)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check account code: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: account code %s already exists in company %s", apperrors.ErrDuplicate, *req.Code, companyID)
		}
		account.Code = *req.Code
		updated = true
	}

	if req.Name != nil {
		account.Name = *req.Name
		updated = true
	}
	if req.ParentAccountID != nil {
		if *req.ParentAccountID != "" {
			parent, err := s.accountRepo.FindAccountByID(ctx, *req.ParentAccountID)
			if err != nil {
				return nil, fmt.Errorf("invalid parent account: %w", err)
			}
			if parent.CompanyID != companyID {
				return nil, fmt.Errorf("%w: parent account belongs to a different company", apperrors.ErrValidation)
			}
			if parent.AccountID == accountID {
				return nil, fmt.Errorf("%w: account cannot be its own parent", apperrors.ErrValidation)
			}
		}
		account.ParentAccountID = *req.ParentAccountID
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if req.SecurityLevel != nil {
		account.SecurityLevel = *req.SecurityLevel
		updated = true
	}
	if req.IsBankAccount != nil {
		account.IsBankAccount = *req.IsBankAccount
		updated = true
	}

	if !updated {
		s.LogDebug(ctx, "No fields provided for account update", slog.String("account_id", accountID))
		return account, nil
	}

	account.Touch(userID, time.Now().UTC())

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	s.LogInfo(ctx, "Account updated", slog.String("account_id", accountID))
	return account, nil
}

// DeactivateAccount marks an account inactive. Existing entries keep their
// reference; only new postings are rejected.
func (s *accountService) DeactivateAccount(ctx context.Context, companyID string, accountID string, userID string) error {
	account, err := s.GetAccountByID(ctx, companyID, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		s.LogDebug(ctx, "Account already inactive", slog.String("account_id", accountID))
		return nil
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}
