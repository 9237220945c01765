package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/utils/accounting"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new reporting service
func NewReportingService(repo portsrepo.ReportingRepository) portssvc.ReportingService {
	return &reportingService{reportingRepo: repo}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// displayAmounts converts raw debit-positive nets into the balances shown for
// accounts of the given type. Repositories return raw sums; this is where the
// sign convention is applied.
func displayAmounts(raw []domain.AccountAmount, accountType domain.AccountType) ([]domain.AccountAmount, error) {
	out := make([]domain.AccountAmount, len(raw))
	for i, a := range raw {
		display, err := accounting.DisplayBalance(a.NetAmount, accountType)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", a.AccountID, err)
		}
		a.NetAmount = display
		out[i] = a
	}
	return out, nil
}

// TrialBalance generates a trial balance report as of a specific date
func (s *reportingService) TrialBalance(ctx context.Context, companyID string, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, companyID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data",
			slog.String("company_id", companyID),
			slog.String("as_of", asOf.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}

	s.LogInfo(ctx, "Trial balance report generated",
		slog.String("company_id", companyID),
		slog.String("as_of", asOf.Format(time.RFC3339)),
		slog.Int("row_count", len(rows)))
	return rows, nil
}

// ProfitAndLoss generates a profit and loss report for a specific period
func (s *reportingService) ProfitAndLoss(ctx context.Context, companyID string, from, to time.Time) (*domain.PAndLReport, error) {
	income, expenses, err := s.reportingRepo.GetProfitAndLossData(ctx, companyID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve profit and loss data",
			slog.String("company_id", companyID),
			slog.String("from", from.Format(time.RFC3339)),
			slog.String("to", to.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to retrieve profit and loss data: %w", err)
	}

	if income, err = displayAmounts(income, domain.Income); err != nil {
		return nil, err
	}
	if expenses, err = displayAmounts(expenses, domain.Expense); err != nil {
		return nil, err
	}

	totalIncome := decimal.Zero
	for _, i := range income {
		totalIncome = totalIncome.Add(i.NetAmount)
	}

	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.NetAmount)
	}

	report := &domain.PAndLReport{
		Income:    income,
		Expenses:  expenses,
		NetProfit: totalIncome.Sub(totalExpenses),
	}

	s.LogInfo(ctx, "Profit and loss report generated",
		slog.String("company_id", companyID),
		slog.Int("income_accounts", len(income)),
		slog.Int("expense_accounts", len(expenses)))
	return report, nil
}

// BalanceSheet generates a balance sheet report as of a specific date
func (s *reportingService) BalanceSheet(ctx context.Context, companyID string, asOf time.Time) (*domain.BalanceSheetReport, error) {
	assets, liabilities, equity, err := s.reportingRepo.GetBalanceSheetData(ctx, companyID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve balance sheet data",
			slog.String("company_id", companyID),
			slog.String("as_of", asOf.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to retrieve balance sheet data: %w", err)
	}

	if assets, err = displayAmounts(assets, domain.Asset); err != nil {
		return nil, err
	}
	if liabilities, err = displayAmounts(liabilities, domain.Liability); err != nil {
		return nil, err
	}
	if equity, err = displayAmounts(equity, domain.Equity); err != nil {
		return nil, err
	}

	sum := func(amounts []domain.AccountAmount) decimal.Decimal {
		total := decimal.Zero
		for _, a := range amounts {
			total = total.Add(a.NetAmount)
		}
		return total
	}

	report := &domain.BalanceSheetReport{
		Assets:           assets,
		Liabilities:      liabilities,
		Equity:           equity,
		TotalAssets:      sum(assets),
		TotalLiabilities: sum(liabilities),
		TotalEquity:      sum(equity),
	}

	s.LogInfo(ctx, "Balance sheet report generated",
		slog.String("company_id", companyID),
		slog.String("as_of", asOf.Format(time.RFC3339)))
	return report, nil
}
