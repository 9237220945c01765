package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgsql repository against the shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	companyRepo := newPgxCompanyRepository(dbPool)
	accountRepo := newPgxAccountRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool, ledgerRepo)
	allocationRepo := newPgxAllocationRepository(dbPool)
	reportingRepo := newReportingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		CompanyRepo:     companyRepo,
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		LedgerRepo:      ledgerRepo,
		AllocationRepo:  allocationRepo,
		ReportingRepo:   reportingRepo,
	}
}
