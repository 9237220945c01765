package services

import (
	"context"
	"time"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// ReportingService defines the report read surface built on the ledger query
// surface.
type ReportingService interface {
	// TrialBalance generates a trial balance as of a specific date.
	TrialBalance(ctx context.Context, companyID string, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// ProfitAndLoss generates a profit and loss report for a period.
	ProfitAndLoss(ctx context.Context, companyID string, from, to time.Time) (*domain.PAndLReport, error)

	// BalanceSheet generates a balance sheet as of a specific date.
	BalanceSheet(ctx context.Context, companyID string, asOf time.Time) (*domain.BalanceSheetReport, error)
}
