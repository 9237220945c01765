package repositories

import (
	"context"
	"time"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// GetTrialBalanceData retrieves per-account debit/credit totals as of a specific date
	GetTrialBalanceData(ctx context.Context, companyID string, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// GetProfitAndLossData retrieves income and expense net amounts for a period
	GetProfitAndLossData(ctx context.Context, companyID string, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error)

	// GetBalanceSheetData retrieves asset, liability and equity net amounts as of a specific date
	GetBalanceSheetData(ctx context.Context, companyID string, asOf time.Time) ([]domain.AccountAmount, []domain.AccountAmount, []domain.AccountAmount, error)
}
