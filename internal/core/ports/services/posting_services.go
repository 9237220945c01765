package services

import (
	"context"

	"github.com/finbooks/ledger_engine/internal/core/domain"
	"github.com/finbooks/ledger_engine/internal/dto"
)

// PostingSvcFacade is the posting engine surface: draft assembly, posting and
// reversal. Callers (invoice/bill/recurring-template services) build a draft,
// add lines and post; an UnbalancedTransactionError signals a defect in their
// own line construction and is never auto-corrected here.
type PostingSvcFacade interface {
	// CreateTransaction creates a new DRAFT transaction, optionally with
	// initial lines.
	CreateTransaction(ctx context.Context, companyID string, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error)

	// AddLine appends a line to a draft owned by the acting user.
	AddLine(ctx context.Context, companyID string, transactionID string, req dto.CreateLineRequest, actingUserID string) (*domain.Transaction, error)

	// UpdateLine replaces an existing line on a draft owned by the acting user.
	UpdateLine(ctx context.Context, companyID string, transactionID string, lineID string, req dto.CreateLineRequest, actingUserID string) (*domain.Transaction, error)

	// RemoveLine removes a line from a draft owned by the acting user.
	RemoveLine(ctx context.Context, companyID string, transactionID string, lineID string, actingUserID string) (*domain.Transaction, error)

	// GetTransactionByID retrieves a transaction with its lines.
	GetTransactionByID(ctx context.Context, companyID string, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a paginated list of a company's transactions.
	ListTransactions(ctx context.Context, companyID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// Post validates the balance invariant and atomically converts the draft
	// into immutable ledger entries.
	Post(ctx context.Context, companyID string, transactionID string, actingUserID string) (*domain.Transaction, error)

	// Reverse voids a posted transaction by posting an equal-and-opposite
	// transaction dated at the reversal date; history is never deleted.
	Reverse(ctx context.Context, companyID string, transactionID string, req dto.ReverseTransactionRequest, actingUserID string) (*domain.Transaction, error)
}
