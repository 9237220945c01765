package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// LedgerSvcFacade is the read/reconciliation surface over posted entries.
// Reports, the tax engine and bank-reconciliation matching consume this; none
// of them ever read transaction drafts.
type LedgerSvcFacade interface {
	// BalanceAsOf sums an account's entries with posting date <= asOf and
	// applies the account-type sign convention. Returns decimal zero, not an
	// error, when the account has no entries.
	BalanceAsOf(ctx context.Context, companyID string, accountID string, asOf time.Time) (decimal.Decimal, error)

	// EntriesInRange returns an account's entries with inclusive date bounds
	// and an optional department filter, in stable posting-date-then-sequence
	// order.
	EntriesInRange(ctx context.Context, companyID string, accountID string, from, to time.Time, departmentID *string) ([]domain.LedgerEntry, error)

	// EntriesForTransaction returns the entries posted by one transaction.
	EntriesForTransaction(ctx context.Context, companyID string, transactionID string) ([]domain.LedgerEntry, error)

	// MarkReconciled flags an entry as matched to a bank feed item. Marking an
	// already-reconciled entry with the same item is a no-op; a different item
	// fails with ErrConflict.
	MarkReconciled(ctx context.Context, companyID string, entryID string, bankItemID string, actingUserID string) error

	// Unreconcile clears the reconciliation flag; a no-op when the entry is
	// not reconciled.
	Unreconcile(ctx context.Context, companyID string, entryID string, actingUserID string) error
}
