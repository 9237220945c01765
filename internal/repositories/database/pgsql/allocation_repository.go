package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	"github.com/finbooks/ledger_engine/internal/models"
	"github.com/finbooks/ledger_engine/internal/utils/mapping"
)

type PgxAllocationRepository struct {
	BaseRepository
}

// newPgxAllocationRepository creates a new repository for payment allocations.
func newPgxAllocationRepository(pool *pgxpool.Pool) portsrepo.AllocationRepositoryFacade {
	return &PgxAllocationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AllocationRepositoryFacade = (*PgxAllocationRepository)(nil)

// SumAllocationsForTransaction returns the total amount allocated against a
// target transaction, zero when nothing is allocated.
func (r *PgxAllocationRepository) SumAllocationsForTransaction(ctx context.Context, transactionID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM allocations
		WHERE target_transaction_id = $1;
	`
	var total decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, transactionID).Scan(&total); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum allocations for transaction "+transactionID, err)
	}
	return total, nil
}

// ListAllocationsForTransaction retrieves the allocations applied against a
// target transaction.
func (r *PgxAllocationRepository) ListAllocationsForTransaction(ctx context.Context, transactionID string) ([]domain.Allocation, error) {
	query := `
		SELECT allocation_id, company_id, payment_transaction_id, target_transaction_id, amount,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM allocations
		WHERE target_transaction_id = $1
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query allocations for transaction "+transactionID, err)
	}
	defer rows.Close()

	allocations := []domain.Allocation{}
	for rows.Next() {
		var m models.Allocation
		err := rows.Scan(
			&m.AllocationID,
			&m.CompanyID,
			&m.PaymentTransactionID,
			&m.TargetTransactionID,
			&m.Amount,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan allocation row", err)
		}
		allocations = append(allocations, mapping.ToDomainAllocation(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating allocation rows", err)
	}

	return allocations, nil
}

// SaveAllocation persists a new allocation.
func (r *PgxAllocationRepository) SaveAllocation(ctx context.Context, allocation domain.Allocation) error {
	m := mapping.ToModelAllocation(allocation)

	query := `
		INSERT INTO allocations (allocation_id, company_id, payment_transaction_id, target_transaction_id, amount,
		                         created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AllocationID,
		m.CompanyID,
		m.PaymentTransactionID,
		m.TargetTransactionID,
		m.Amount,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: allocation %s already exists", apperrors.ErrDuplicate, m.AllocationID)
		}
		return fmt.Errorf("failed to save allocation %s: %w", m.AllocationID, err)
	}
	return nil
}

// DeleteAllocation removes an allocation.
func (r *PgxAllocationRepository) DeleteAllocation(ctx context.Context, allocationID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM allocations WHERE allocation_id = $1;`, allocationID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete allocation "+allocationID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
