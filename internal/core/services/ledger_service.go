package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/utils/accounting"
)

// ledgerService implements the LedgerSvcFacade interface: the read and
// reconciliation surface over posted entries.
type ledgerService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
	postingSvc  portssvc.PostingSvcFacade
	auditLogger portssvc.AuditLogger
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithLedgerAuditLogger adds the audit logger invoked after reconciliation
// state changes.
func WithLedgerAuditLogger(logger portssvc.AuditLogger) LedgerServiceOption {
	return func(s *ledgerService) {
		s.auditLogger = logger
	}
}

// WithLedgerPostingService adds the posting service used to resolve company
// scope for transaction-level entry lookups.
func WithLedgerPostingService(svc portssvc.PostingSvcFacade) LedgerServiceOption {
	return func(s *ledgerService) {
		s.postingSvc = svc
	}
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountSvc portssvc.AccountSvcFacade, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		ledgerRepo: ledgerRepo,
		accountSvc: accountSvc,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure ledgerService implements the LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// BalanceAsOf recomputes an account's balance from its entries with posting
// date <= asOf. The sum is always taken from the authoritative entries, never
// a cached running total, since a reversal can land entries dated in the past.
func (s *ledgerService) BalanceAsOf(ctx context.Context, companyID string, accountID string, asOf time.Time) (decimal.Decimal, error) {
	account, err := s.accountSvc.GetAccountByID(ctx, companyID, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	debits, credits, err := s.ledgerRepo.SumEntriesAsOf(ctx, companyID, accountID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum entries for balance",
			slog.String("account_id", accountID),
			slog.String("as_of", asOf.Format(time.RFC3339)))
		return decimal.Zero, fmt.Errorf("failed to compute balance: %w", err)
	}

	balance, err := accounting.DisplayBalance(debits.Sub(credits), account.AccountType)
	if err != nil {
		return decimal.Zero, err
	}

	s.LogDebug(ctx, "Balance computed",
		slog.String("account_id", accountID),
		slog.String("balance", balance.StringFixed(2)))
	return balance, nil
}

// EntriesInRange returns an account's entries with inclusive date bounds and
// an optional department filter.
func (s *ledgerService) EntriesInRange(ctx context.Context, companyID string, accountID string, from, to time.Time, departmentID *string) ([]domain.LedgerEntry, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s is before range start %s",
			apperrors.ErrValidation, to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	if _, err := s.accountSvc.GetAccountByID(ctx, companyID, accountID); err != nil {
		return nil, err
	}

	entries, err := s.ledgerRepo.EntriesInRange(ctx, companyID, accountID, from, to, departmentID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entries in range", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	s.LogDebug(ctx, "Entries retrieved",
		slog.String("account_id", accountID),
		slog.Int("count", len(entries)))
	return entries, nil
}

// EntriesForTransaction returns the entries posted by one transaction.
func (s *ledgerService) EntriesForTransaction(ctx context.Context, companyID string, transactionID string) ([]domain.LedgerEntry, error) {
	if s.postingSvc != nil {
		if _, err := s.postingSvc.GetTransactionByID(ctx, companyID, transactionID); err != nil {
			return nil, err
		}
	}

	entries, err := s.ledgerRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find entries for transaction", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to retrieve entries for transaction %s: %w", transactionID, err)
	}

	// Belt and braces when no posting service was wired for the scope check.
	for _, entry := range entries {
		if entry.CompanyID != companyID {
			return nil, apperrors.ErrNotFound
		}
	}
	return entries, nil
}

func (s *ledgerService) getEntryScoped(ctx context.Context, companyID, entryID string) (*domain.LedgerEntry, error) {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find ledger entry", slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if entry.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return entry, nil
}

func (s *ledgerService) recordAuditEvent(ctx context.Context, event domain.AuditEvent) {
	if s.auditLogger == nil {
		return
	}
	if err := s.auditLogger.RecordEvent(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to record audit event",
			slog.String("kind", string(event.Kind)),
			slog.String("entry_id", event.EntryID))
	}
}

// MarkReconciled flags an entry as matched to a bank feed item. Re-marking
// with the same item is idempotent; a different item fails with ErrConflict
// so the operator resolves the mismatch explicitly.
func (s *ledgerService) MarkReconciled(ctx context.Context, companyID string, entryID string, bankItemID string, actingUserID string) error {
	if bankItemID == "" {
		return fmt.Errorf("%w: bank item reference is required", apperrors.ErrValidation)
	}

	entry, err := s.getEntryScoped(ctx, companyID, entryID)
	if err != nil {
		return err
	}

	if entry.ReconStatus == domain.Reconciled {
		if entry.MatchedBankItemID == bankItemID {
			s.LogDebug(ctx, "Entry already reconciled to this bank item", slog.String("entry_id", entryID))
			return nil
		}
		return fmt.Errorf("%w: entry %s is already reconciled to bank item %s",
			apperrors.ErrConflict, entryID, entry.MatchedBankItemID)
	}

	now := time.Now().UTC()
	if err := s.ledgerRepo.SetReconciliation(ctx, entryID, domain.Reconciled, bankItemID, actingUserID, now); err != nil {
		s.LogError(ctx, err, "Failed to mark entry reconciled", slog.String("entry_id", entryID))
		return fmt.Errorf("failed to mark entry reconciled: %w", err)
	}

	s.LogInfo(ctx, "Entry reconciled",
		slog.String("entry_id", entryID),
		slog.String("bank_item_id", bankItemID))

	s.recordAuditEvent(ctx, domain.AuditEvent{
		EventID:    uuid.NewString(),
		CompanyID:  companyID,
		Kind:       domain.EventEntryReconciled,
		EntryID:    entryID,
		ActorID:    actingUserID,
		Details:    fmt.Sprintf("matched to bank item %s", bankItemID),
		OccurredAt: now,
	})
	return nil
}

// Unreconcile clears the reconciliation flag. Unreconciling an entry that is
// not reconciled is a no-op.
func (s *ledgerService) Unreconcile(ctx context.Context, companyID string, entryID string, actingUserID string) error {
	entry, err := s.getEntryScoped(ctx, companyID, entryID)
	if err != nil {
		return err
	}

	if entry.ReconStatus != domain.Reconciled {
		s.LogDebug(ctx, "Entry already unreconciled", slog.String("entry_id", entryID))
		return nil
	}

	now := time.Now().UTC()
	if err := s.ledgerRepo.SetReconciliation(ctx, entryID, domain.Unreconciled, "", actingUserID, now); err != nil {
		s.LogError(ctx, err, "Failed to unreconcile entry", slog.String("entry_id", entryID))
		return fmt.Errorf("failed to unreconcile entry: %w", err)
	}

	s.LogInfo(ctx, "Entry unreconciled", slog.String("entry_id", entryID))

	s.recordAuditEvent(ctx, domain.AuditEvent{
		EventID:    uuid.NewString(),
		CompanyID:  companyID,
		Kind:       domain.EventEntryUnreconciled,
		EntryID:    entryID,
		ActorID:    actingUserID,
		OccurredAt: now,
	})
	return nil
}
