package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
)

// reportingRepository implements the ReportingRepository interface. Every
// report aggregates the authoritative ledger_entries rows; reversal entries
// are included so a voided transaction and its mirror net to zero.
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// GetTrialBalanceData retrieves per-account debit and credit totals as of a
// specific date.
func (r *reportingRepository) GetTrialBalanceData(ctx context.Context, companyID string, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT
			a.account_id,
			a.code,
			a.name AS account_name,
			a.account_type,
			COALESCE(SUM(e.debit), 0) AS total_debit,
			COALESCE(SUM(e.credit), 0) AS total_credit
		FROM ledger_entries e
		JOIN accounts a ON e.account_id = a.account_id
		WHERE e.company_id = $1
			AND e.posting_date <= $2
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY a.code;
	`

	rows, err := r.Pool.Query(ctx, query, companyID, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying trial balance data: %w", err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		var accountType string

		if err := rows.Scan(
			&row.AccountID,
			&row.AccountCode,
			&row.AccountName,
			&accountType,
			&row.Debit,
			&row.Credit,
		); err != nil {
			return nil, fmt.Errorf("error scanning trial balance row: %w", err)
		}

		row.AccountType = domain.AccountType(accountType)
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows: %w", err)
	}

	return result, nil
}

// GetProfitAndLossData retrieves income and expense net amounts for a period.
// Nets are raw debit-positive sums; the service applies the display sign
// convention so it lives in exactly one place.
func (r *reportingRepository) GetProfitAndLossData(ctx context.Context, companyID string, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	query := `
		SELECT
			a.account_type,
			a.account_id,
			a.code,
			a.name,
			COALESCE(SUM(e.debit - e.credit), 0) AS net
		FROM ledger_entries e
		JOIN accounts a ON e.account_id = a.account_id
		WHERE e.company_id = $1
			AND e.posting_date BETWEEN $2 AND $3
			AND a.account_type IN ('INCOME', 'EXPENSE')
		GROUP BY a.account_type, a.account_id, a.code, a.name
		ORDER BY a.code;
	`

	rows, err := r.Pool.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("error querying profit and loss data: %w", err)
	}
	defer rows.Close()

	income := []domain.AccountAmount{}
	expenses := []domain.AccountAmount{}

	for rows.Next() {
		var accountType, accountID, code, name string
		var netAmount decimal.Decimal

		if err := rows.Scan(&accountType, &accountID, &code, &name, &netAmount); err != nil {
			return nil, nil, fmt.Errorf("error scanning profit and loss row: %w", err)
		}

		accountAmount := domain.AccountAmount{
			AccountID:   accountID,
			AccountCode: code,
			Name:        name,
			NetAmount:   netAmount,
		}

		if accountType == "INCOME" {
			income = append(income, accountAmount)
		} else {
			expenses = append(expenses, accountAmount)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating profit and loss rows: %w", err)
	}

	return income, expenses, nil
}

// GetBalanceSheetData retrieves asset, liability and equity net amounts as of
// a specific date. Nets are raw debit-positive sums; the service applies the
// display sign convention.
func (r *reportingRepository) GetBalanceSheetData(ctx context.Context, companyID string, asOf time.Time) ([]domain.AccountAmount, []domain.AccountAmount, []domain.AccountAmount, error) {
	query := `
		SELECT
			a.account_type,
			a.account_id,
			a.code,
			a.name,
			COALESCE(SUM(e.debit - e.credit), 0) AS net
		FROM ledger_entries e
		JOIN accounts a ON e.account_id = a.account_id
		WHERE e.company_id = $1
			AND e.posting_date <= $2
			AND a.account_type IN ('ASSET', 'LIABILITY', 'EQUITY')
		GROUP BY a.account_type, a.account_id, a.code, a.name
		ORDER BY a.code;
	`

	rows, err := r.Pool.Query(ctx, query, companyID, asOf)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error querying balance sheet data: %w", err)
	}
	defer rows.Close()

	assets := []domain.AccountAmount{}
	liabilities := []domain.AccountAmount{}
	equity := []domain.AccountAmount{}

	for rows.Next() {
		var accountType, accountID, code, name string
		var netAmount decimal.Decimal

		if err := rows.Scan(&accountType, &accountID, &code, &name, &netAmount); err != nil {
			return nil, nil, nil, fmt.Errorf("error scanning balance sheet row: %w", err)
		}

		accountAmount := domain.AccountAmount{
			AccountID:   accountID,
			AccountCode: code,
			Name:        name,
			NetAmount:   netAmount,
		}

		switch accountType {
		case "ASSET":
			assets = append(assets, accountAmount)
		case "LIABILITY":
			liabilities = append(liabilities, accountAmount)
		default:
			equity = append(equity, accountAmount)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("error iterating balance sheet rows: %w", err)
	}

	return assets, liabilities, equity, nil
}
