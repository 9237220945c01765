package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// AllocationReader defines read operations for payment allocations.
type AllocationReader interface {
	// SumAllocationsForTransaction returns the total amount allocated against
	// a target transaction; zero when nothing is allocated.
	SumAllocationsForTransaction(ctx context.Context, transactionID string) (decimal.Decimal, error)

	// ListAllocationsForTransaction retrieves the allocations applied against
	// a target transaction.
	ListAllocationsForTransaction(ctx context.Context, transactionID string) ([]domain.Allocation, error)
}

// AllocationWriter defines write operations for payment allocations. These
// are called by payment/bank-reconciliation collaborators, never by the
// posting engine itself.
type AllocationWriter interface {
	// SaveAllocation persists a new allocation.
	SaveAllocation(ctx context.Context, allocation domain.Allocation) error

	// DeleteAllocation removes an allocation (payment unapplied).
	DeleteAllocation(ctx context.Context, allocationID string) error
}

// AllocationRepositoryFacade combines the allocation repository interfaces
type AllocationRepositoryFacade interface {
	AllocationReader
	AllocationWriter
}
