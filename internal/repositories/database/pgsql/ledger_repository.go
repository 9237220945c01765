package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	"github.com/finbooks/ledger_engine/internal/models"
	"github.com/finbooks/ledger_engine/internal/utils/mapping"
)

const entryColumns = `entry_id, entry_seq, company_id, transaction_id, account_id, debit, credit, posting_date, department_id, tax_code, recon_status, matched_bank_item_id, reconciled_by, reconciled_at, created_at, created_by`

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger entry data.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func scanLedgerEntry(row pgx.Row) (*models.LedgerEntry, error) {
	var m models.LedgerEntry
	var departmentID, taxCode, bankItemID, reconciledBy sql.NullString
	var reconciledAt sql.NullTime
	err := row.Scan(
		&m.EntryID,
		&m.Sequence,
		&m.CompanyID,
		&m.TransactionID,
		&m.AccountID,
		&m.Debit,
		&m.Credit,
		&m.PostingDate,
		&departmentID,
		&taxCode,
		&m.ReconStatus,
		&bankItemID,
		&reconciledBy,
		&reconciledAt,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.DepartmentID = departmentID.String
	m.TaxCode = taxCode.String
	m.MatchedBankItemID = bankItemID.String
	m.ReconciledBy = reconciledBy.String
	if reconciledAt.Valid {
		t := reconciledAt.Time
		m.ReconciledAt = &t
	}
	return &m, nil
}

func nullableStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// AppendEntriesInTx inserts entries within the caller's transaction. The
// bigserial entry_seq column assigns the monotonic posting sequence; the
// assigned values are returned on the entries.
func (r *PgxLedgerRepository) AppendEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) ([]domain.LedgerEntry, error) {
	query := `
		INSERT INTO ledger_entries (
			entry_id, company_id, transaction_id, account_id, debit, credit,
			posting_date, department_id, tax_code, recon_status,
			created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING entry_seq;
	`

	batch := &pgx.Batch{}
	for _, entry := range entries {
		m := mapping.ToModelLedgerEntry(entry)
		batch.Queue(query,
			m.EntryID,
			m.CompanyID,
			m.TransactionID,
			m.AccountID,
			m.Debit,
			m.Credit,
			m.PostingDate,
			nullableStr(m.DepartmentID),
			nullableStr(m.TaxCode),
			m.ReconStatus,
			m.CreatedAt,
			m.CreatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	result := make([]domain.LedgerEntry, len(entries))
	for i := range entries {
		var seq int64
		if err := br.QueryRow().Scan(&seq); err != nil {
			br.Close()
			return nil, apperrors.NewAppError(500, "failed to insert ledger entry "+entries[i].EntryID, err)
		}
		result[i] = entries[i]
		result[i].Sequence = seq
	}
	if err := br.Close(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to close ledger entry batch", err)
	}

	return result, nil
}

// FindEntryByID retrieves a single ledger entry.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE entry_id = $1;`

	m, err := scanLedgerEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find ledger entry "+entryID, err)
	}

	entry := mapping.ToDomainLedgerEntry(*m)
	return &entry, nil
}

// FindEntriesByTransactionID retrieves all entries for one transaction in
// posting sequence order.
func (r *PgxLedgerRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE transaction_id = $1
		ORDER BY entry_seq;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for transaction "+transactionID, err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// EntriesInRange retrieves an account's entries with inclusive date bounds,
// ordered by posting date then sequence so pagination and statements are
// stable.
func (r *PgxLedgerRepository) EntriesInRange(ctx context.Context, companyID, accountID string, from, to time.Time, departmentID *string) ([]domain.LedgerEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE company_id = $1
		  AND account_id = $2
		  AND posting_date >= $3
		  AND posting_date <= $4
	`
	args := []interface{}{companyID, accountID, from, to}
	if departmentID != nil {
		query += ` AND department_id = $5`
		args = append(args, *departmentID)
	}
	query += ` ORDER BY posting_date, entry_seq;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for account "+accountID, err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	entries := []models.LedgerEntry{}
	for rows.Next() {
		m, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger entry row", err)
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledger entry rows", err)
	}
	return mapping.ToDomainLedgerEntrySlice(entries), nil
}

// SumEntriesAsOf returns the debit and credit totals for an account over
// entries dated on or before asOf. COALESCE keeps the no-entries case at
// zero rather than NULL.
func (r *PgxLedgerRepository) SumEntriesAsOf(ctx context.Context, companyID, accountID string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
		FROM ledger_entries
		WHERE company_id = $1
		  AND account_id = $2
		  AND posting_date <= $3;
	`
	var debits, credits decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, companyID, accountID, asOf).Scan(&debits, &credits)
	if err != nil {
		return decimal.Zero, decimal.Zero, apperrors.NewAppError(500, "failed to sum entries for account "+accountID, err)
	}
	return debits, credits, nil
}

// HasEntriesForAccount reports whether any ledger entry references the account.
func (r *PgxLedgerRepository) HasEntriesForAccount(ctx context.Context, accountID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE account_id = $1);`

	var exists bool
	if err := r.Pool.QueryRow(ctx, query, accountID).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check entries for account "+accountID, err)
	}
	return exists, nil
}

// SetReconciliation updates only the reconciliation fields of an entry. The
// debit, credit, account and date columns are never touched after insert.
// Marking an entry reconciled is guarded in the UPDATE itself: only an
// unreconciled entry, or one already matched to the same bank item, may be
// written, so a concurrent match against a different item loses with
// ErrConflict instead of silently overwriting.
func (r *PgxLedgerRepository) SetReconciliation(ctx context.Context, entryID string, status domain.ReconciliationStatus, bankItemID string, userID string, now time.Time) error {
	query := `
		UPDATE ledger_entries
		SET recon_status = $2,
		    matched_bank_item_id = $3,
		    reconciled_by = $4,
		    reconciled_at = $5
		WHERE entry_id = $1
	`

	var (
		matchedItem  sql.NullString
		reconciledBy sql.NullString
		reconciledAt sql.NullTime
	)
	if status == domain.Reconciled {
		matchedItem = sql.NullString{String: bankItemID, Valid: true}
		reconciledBy = sql.NullString{String: userID, Valid: true}
		reconciledAt = sql.NullTime{Time: now, Valid: true}
		query += ` AND (recon_status = 'UNRECONCILED' OR matched_bank_item_id = $3)`
	}
	query += `;`

	tag, err := r.Pool.Exec(ctx, query, entryID, string(status), matchedItem, reconciledBy, reconciledAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update reconciliation for entry "+entryID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE entry_id = $1);`, entryID).Scan(&exists); err != nil {
			return apperrors.NewAppError(500, "failed to inspect ledger entry "+entryID, err)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: entry %s was reconciled concurrently to a different bank item",
			apperrors.ErrConflict, entryID)
	}
	return nil
}
