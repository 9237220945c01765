package repositories

import (
	"context"
	"time"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction with its lines.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByCompany retrieves a paginated list of transactions for
	// a company using token-based pagination. Returns the transactions, a
	// token for the next page, and an error.
	ListTransactionsByCompany(ctx context.Context, companyID string, limit int, nextToken *string, includeReversals bool) ([]domain.Transaction, *string, error)
}

// TransactionWriter defines write operations for transaction data
type TransactionWriter interface {
	// SaveDraft persists a new DRAFT transaction and its lines.
	SaveDraft(ctx context.Context, txn domain.Transaction) error

	// UpdateDraft replaces a draft's header fields and lines, guarded by the
	// optimistic version. Returns ErrConflict on a version mismatch and
	// ErrInvalidState if the stored transaction is no longer DRAFT.
	UpdateDraft(ctx context.Context, txn domain.Transaction) error

	// PostTransaction atomically appends the ledger entries and flips the
	// transaction DRAFT -> POSTED, guarded by the optimistic version. Either
	// every entry is durably written and the status flip is visible, or
	// nothing is.
	PostTransaction(ctx context.Context, txn domain.Transaction, entries []domain.LedgerEntry, now time.Time) error

	// PostReversal atomically persists the reversing transaction as POSTED,
	// appends its ledger entries, and flips the original POSTED -> VOID with
	// reversal links, guarded by the original's optimistic version.
	PostReversal(ctx context.Context, original domain.Transaction, reversal domain.Transaction, entries []domain.LedgerEntry, now time.Time) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with
// unit-of-work capabilities.
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
