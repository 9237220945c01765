package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	"github.com/finbooks/ledger_engine/internal/models"
	"github.com/finbooks/ledger_engine/internal/utils/mapping"
	"github.com/finbooks/ledger_engine/internal/utils/pagination"
)

const transactionColumns = `transaction_id, company_id, transaction_type, transaction_date, description, reference, status, reversal_of_id, reversed_by_id, version, created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	BaseRepository
	ledgerRepo portsrepo.LedgerRepositoryFacade
}

// newPgxTransactionRepository creates a new repository for transaction data.
// The ledger repository is injected so posting can append entries inside the
// same database transaction.
func newPgxTransactionRepository(pool *pgxpool.Pool, ledgerRepo portsrepo.LedgerRepositoryFacade) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		ledgerRepo:     ledgerRepo,
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryWithTx
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var m models.Transaction
	var reversalOfID, reversedByID sql.NullString
	err := row.Scan(
		&m.TransactionID,
		&m.CompanyID,
		&m.Type,
		&m.Date,
		&m.Description,
		&m.Reference,
		&m.Status,
		&reversalOfID,
		&reversedByID,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if reversalOfID.Valid {
		m.ReversalOfID = &reversalOfID.String
	}
	if reversedByID.Valid {
		m.ReversedByID = &reversedByID.String
	}
	return &m, nil
}

// insertTransactionTx inserts a transaction header within the given tx.
func (r *PgxTransactionRepository) insertTransactionTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.CompanyID,
		m.Type,
		m.Date,
		m.Description,
		m.Reference,
		m.Status,
		m.ReversalOfID,
		m.ReversedByID,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert transaction "+m.TransactionID, err)
	}
	return nil
}

// insertLinesTx batch-inserts a transaction's lines within the given tx.
// line_no records the slice position so reloads preserve assembly order.
func (r *PgxTransactionRepository) insertLinesTx(ctx context.Context, tx pgx.Tx, transactionID string, lines []domain.TransactionLine) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO transaction_lines (line_id, transaction_id, line_no, account_id, amount, direction, tax_code, department_id, memo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	batch := &pgx.Batch{}
	for i, line := range lines {
		m := mapping.ToModelTransactionLine(line)
		batch.Queue(query,
			m.LineID,
			transactionID,
			i,
			m.AccountID,
			m.Amount,
			m.Direction,
			nullableStr(m.TaxCode),
			nullableStr(m.DepartmentID),
			m.Memo,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert lines for transaction "+transactionID, err)
	}
	return nil
}

// SaveDraft persists a new DRAFT transaction and its lines atomically.
func (r *PgxTransactionRepository) SaveDraft(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.insertTransactionTx(ctx, tx, txn); err != nil {
		return err
	}
	if err := r.insertLinesTx(ctx, tx, txn.TransactionID, txn.Lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateDraft replaces a draft's header fields and lines, guarded by the
// optimistic version. The stored row must still be DRAFT at the stored
// version or nothing changes.
func (r *PgxTransactionRepository) UpdateDraft(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelTransaction(txn)
	query := `
		UPDATE transactions
		SET transaction_type = $2,
		    transaction_date = $3,
		    description = $4,
		    reference = $5,
		    version = version + 1,
		    last_updated_at = $6,
		    last_updated_by = $7
		WHERE transaction_id = $1
		  AND status = 'DRAFT'
		  AND version = $8;
	`
	tag, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.Type,
		m.Date,
		m.Description,
		m.Reference,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update draft "+m.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyGuardFailure(ctx, tx, m.TransactionID, models.Draft)
	}

	// Replace the line set wholesale; drafts are small and the line IDs are
	// regenerated by the aggregate anyway.
	if _, err := tx.Exec(ctx, `DELETE FROM transaction_lines WHERE transaction_id = $1;`, m.TransactionID); err != nil {
		return apperrors.NewAppError(500, "failed to clear lines for draft "+m.TransactionID, err)
	}
	if err := r.insertLinesTx(ctx, tx, m.TransactionID, txn.Lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// classifyGuardFailure distinguishes a version conflict from a lifecycle
// state mismatch after a guarded UPDATE touched zero rows.
func (r *PgxTransactionRepository) classifyGuardFailure(ctx context.Context, tx pgx.Tx, transactionID string, wantStatus models.TransactionStatus) error {
	var status models.TransactionStatus
	err := tx.QueryRow(ctx, `SELECT status FROM transactions WHERE transaction_id = $1;`, transactionID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to inspect transaction "+transactionID, err)
	}
	if status != wantStatus {
		return fmt.Errorf("%w: transaction %s is %s, expected %s",
			apperrors.ErrInvalidState, transactionID, status, wantStatus)
	}
	return fmt.Errorf("%w: transaction %s was modified concurrently", apperrors.ErrConflict, transactionID)
}

// PostTransaction atomically appends the ledger entries and flips the
// transaction DRAFT -> POSTED. Either every entry is durably written and the
// status flip is visible, or nothing is.
func (r *PgxTransactionRepository) PostTransaction(ctx context.Context, txn domain.Transaction, entries []domain.LedgerEntry, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE transactions
		SET status = 'POSTED',
		    version = version + 1,
		    last_updated_at = $2,
		    last_updated_by = $3
		WHERE transaction_id = $1
		  AND status = 'DRAFT'
		  AND version = $4;
	`
	tag, err := tx.Exec(ctx, query, txn.TransactionID, now, txn.LastUpdatedBy, txn.Version)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark transaction posted "+txn.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyGuardFailure(ctx, tx, txn.TransactionID, models.Draft)
	}

	if _, err := r.ledgerRepo.AppendEntriesInTx(ctx, tx, entries); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// PostReversal atomically persists the reversing transaction as POSTED,
// appends its ledger entries, and flips the original POSTED -> VOID with the
// reversal links set on both sides.
func (r *PgxTransactionRepository) PostReversal(ctx context.Context, original domain.Transaction, reversal domain.Transaction, entries []domain.LedgerEntry, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Void the original first; the version guard makes concurrent reversals
	// lose cleanly before any reversal rows exist.
	voidQuery := `
		UPDATE transactions
		SET status = 'VOID',
		    reversed_by_id = $2,
		    version = version + 1,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE transaction_id = $1
		  AND status = 'POSTED'
		  AND version = $5;
	`
	tag, err := tx.Exec(ctx, voidQuery,
		original.TransactionID,
		reversal.TransactionID,
		now,
		reversal.CreatedBy,
		original.Version,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to void original transaction "+original.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyGuardFailure(ctx, tx, original.TransactionID, models.Posted)
	}

	if err := r.insertTransactionTx(ctx, tx, reversal); err != nil {
		return err
	}
	if err := r.insertLinesTx(ctx, tx, reversal.TransactionID, reversal.Lines); err != nil {
		return err
	}
	if _, err := r.ledgerRepo.AppendEntriesInTx(ctx, tx, entries); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// FindTransactionByID retrieves a transaction header with its lines.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction "+transactionID, err)
	}

	lines, err := r.findLines(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	txn := mapping.ToDomainTransaction(*m)
	txn.Lines = lines
	return &txn, nil
}

func (r *PgxTransactionRepository) findLines(ctx context.Context, transactionID string) ([]domain.TransactionLine, error) {
	query := `
		SELECT line_id, transaction_id, account_id, amount, direction, tax_code, department_id, memo
		FROM transaction_lines
		WHERE transaction_id = $1
		ORDER BY line_no;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for transaction "+transactionID, err)
	}
	defer rows.Close()

	lines := []models.TransactionLine{}
	for rows.Next() {
		var m models.TransactionLine
		var taxCode, departmentID sql.NullString
		err := rows.Scan(
			&m.LineID,
			&m.TransactionID,
			&m.AccountID,
			&m.Amount,
			&m.Direction,
			&taxCode,
			&departmentID,
			&m.Memo,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for transaction "+transactionID, err)
		}
		m.TaxCode = taxCode.String
		m.DepartmentID = departmentID.String
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for transaction "+transactionID, err)
	}

	return mapping.ToDomainTransactionLineSlice(lines), nil
}

// ListTransactionsByCompany retrieves a paginated list of transactions using
// keyset pagination ordered by transaction date then creation time, newest
// first. When includeReversals is false, reversing transactions are filtered
// out (voided originals remain visible).
func (r *PgxTransactionRepository) ListTransactionsByCompany(ctx context.Context, companyID string, limit int, nextToken *string, includeReversals bool) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to detect whether another page exists.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE company_id = $1
	`
	if !includeReversals {
		baseQuery += ` AND reversal_of_id IS NULL`
	}
	orderByClause := `ORDER BY transaction_date DESC, created_at DESC`

	args := []interface{}{companyID}
	query := baseQuery

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (transaction_date, created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)
	}

	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list transactions for company "+companyID, err)
	}
	defer rows.Close()

	headers := []models.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		headers = append(headers, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}

	var nextTokenVal *string
	if len(headers) > limit {
		last := headers[limit-1]
		token := pagination.EncodeToken(last.Date, last.CreatedAt)
		nextTokenVal = &token
		headers = headers[:limit]
	}

	transactions := make([]domain.Transaction, len(headers))
	for i, h := range headers {
		txn := mapping.ToDomainTransaction(h)
		lines, err := r.findLines(ctx, h.TransactionID)
		if err != nil {
			return nil, nil, err
		}
		txn.Lines = lines
		transactions[i] = txn
	}

	return transactions, nextTokenVal, nil
}
