package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// LedgerEntryReader defines read operations over the append-only entry set.
// Sums are always recomputed from the authoritative entries; no cached
// running balance is trusted, since reversals can add entries dated earlier
// than "now".
type LedgerEntryReader interface {
	// FindEntryByID retrieves a single ledger entry.
	FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// FindEntriesByTransactionID retrieves all entries created by one
	// transaction, ordered by posting sequence.
	FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error)

	// EntriesInRange retrieves entries for an account with inclusive date
	// bounds and an optional department filter, ordered by posting date then
	// posting sequence.
	EntriesInRange(ctx context.Context, companyID, accountID string, from, to time.Time, departmentID *string) ([]domain.LedgerEntry, error)

	// SumEntriesAsOf returns the debit and credit totals for an account over
	// entries with posting date <= asOf. Both are zero when no entries exist.
	SumEntriesAsOf(ctx context.Context, companyID, accountID string, asOf time.Time) (debits, credits decimal.Decimal, err error)

	// HasEntriesForAccount reports whether any ledger entry references the account.
	HasEntriesForAccount(ctx context.Context, accountID string) (bool, error)
}

// LedgerEntryWriter defines the write surface of the append-only store. There
// is deliberately no update or delete for debit/credit/account/date fields;
// reconciliation state is the only post-posting mutation.
type LedgerEntryWriter interface {
	// AppendEntriesInTx appends entries within the caller's database
	// transaction, assigning each its monotonic posting sequence.
	AppendEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) ([]domain.LedgerEntry, error)

	// SetReconciliation updates only the reconciliation fields of an entry.
	SetReconciliation(ctx context.Context, entryID string, status domain.ReconciliationStatus, bankItemID string, userID string, now time.Time) error
}

// LedgerRepositoryFacade combines the ledger entry repository interfaces
type LedgerRepositoryFacade interface {
	LedgerEntryReader
	LedgerEntryWriter
}
