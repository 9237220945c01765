package services

import (
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, auditLogger portssvc.AuditLogger) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Company = NewCompanyService(repos.CompanyRepo)

	// Account service needs the ledger reader to freeze account types once
	// entries exist.
	container.Account = NewAccountService(
		repos.AccountRepo,
		WithCompanyService(container.Company),
		WithLedgerReader(repos.LedgerRepo),
	)

	container.Posting = NewPostingService(
		repos.TransactionRepo,
		container.Account,
		WithAllocationReader(repos.AllocationRepo),
		WithPostingAuditLogger(auditLogger),
	)

	container.Ledger = NewLedgerService(
		repos.LedgerRepo,
		container.Account,
		WithLedgerPostingService(container.Posting),
		WithLedgerAuditLogger(auditLogger),
	)

	container.Reporting = NewReportingService(repos.ReportingRepo)

	return container
}
