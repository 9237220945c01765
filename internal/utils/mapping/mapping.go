package mapping

import (
	"github.com/finbooks/ledger_engine/internal/core/domain"
	"github.com/finbooks/ledger_engine/internal/models"
)

func toModelAudit(d domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
		LastUpdatedAt: d.LastUpdatedAt,
		LastUpdatedBy: d.LastUpdatedBy,
	}
}

func toDomainAudit(m models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
		LastUpdatedAt: m.LastUpdatedAt,
		LastUpdatedBy: m.LastUpdatedBy,
	}
}

// ToModelCompany converts a domain Company to a model Company
func ToModelCompany(d domain.Company) models.Company {
	return models.Company{
		CompanyID:   d.CompanyID,
		Name:        d.Name,
		IsActive:    d.IsActive,
		AuditFields: toModelAudit(d.AuditFields),
	}
}

// ToDomainCompany converts a model Company to a domain Company
func ToDomainCompany(m models.Company) domain.Company {
	return domain.Company{
		CompanyID:   m.CompanyID,
		Name:        m.Name,
		IsActive:    m.IsActive,
		AuditFields: toDomainAudit(m.AuditFields),
	}
}

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		CompanyID:       d.CompanyID,
		Code:            d.Code,
		Name:            d.Name,
		AccountType:     models.AccountType(d.AccountType),
		ParentAccountID: d.ParentAccountID,
		Description:     d.Description,
		SecurityLevel:   d.SecurityLevel,
		IsBankAccount:   d.IsBankAccount,
		IsActive:        d.IsActive,
		AuditFields:     toModelAudit(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		CompanyID:       m.CompanyID,
		Code:            m.Code,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		ParentAccountID: m.ParentAccountID,
		Description:     m.Description,
		SecurityLevel:   m.SecurityLevel,
		IsBankAccount:   m.IsBankAccount,
		IsActive:        m.IsActive,
		AuditFields:     toDomainAudit(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	out := make([]domain.Account, len(ms))
	for i, m := range ms {
		out[i] = ToDomainAccount(m)
	}
	return out
}

// ToModelTransaction converts a domain Transaction header to its model form
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID: d.TransactionID,
		CompanyID:     d.CompanyID,
		Type:          string(d.Type),
		Date:          d.Date,
		Description:   d.Description,
		Reference:     d.Reference,
		Status:        models.TransactionStatus(d.Status),
		ReversalOfID:  d.ReversalOfID,
		ReversedByID:  d.ReversedByID,
		Version:       d.Version,
		AuditFields:   toModelAudit(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction header to its domain form.
// Lines are loaded and attached separately.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID: m.TransactionID,
		CompanyID:     m.CompanyID,
		Type:          domain.TransactionType(m.Type),
		Date:          m.Date,
		Description:   m.Description,
		Reference:     m.Reference,
		Status:        domain.TransactionStatus(m.Status),
		ReversalOfID:  m.ReversalOfID,
		ReversedByID:  m.ReversedByID,
		Version:       m.Version,
		AuditFields:   toDomainAudit(m.AuditFields),
	}
}

// ToModelTransactionLine converts a domain TransactionLine to its model form
func ToModelTransactionLine(d domain.TransactionLine) models.TransactionLine {
	return models.TransactionLine{
		LineID:        d.LineID,
		TransactionID: d.TransactionID,
		AccountID:     d.AccountID,
		Amount:        d.Amount,
		Direction:     string(d.Direction),
		TaxCode:       d.TaxCode,
		DepartmentID:  d.DepartmentID,
		Memo:          d.Memo,
	}
}

// ToDomainTransactionLine converts a model TransactionLine to its domain form
func ToDomainTransactionLine(m models.TransactionLine) domain.TransactionLine {
	return domain.TransactionLine{
		LineID:        m.LineID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Amount:        m.Amount,
		Direction:     domain.EntryDirection(m.Direction),
		TaxCode:       m.TaxCode,
		DepartmentID:  m.DepartmentID,
		Memo:          m.Memo,
	}
}

// ToDomainTransactionLineSlice converts a slice of model lines to domain lines
func ToDomainTransactionLineSlice(ms []models.TransactionLine) []domain.TransactionLine {
	out := make([]domain.TransactionLine, len(ms))
	for i, m := range ms {
		out[i] = ToDomainTransactionLine(m)
	}
	return out
}

// ToModelLedgerEntry converts a domain LedgerEntry to its model form
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:           d.EntryID,
		Sequence:          d.Sequence,
		CompanyID:         d.CompanyID,
		TransactionID:     d.TransactionID,
		AccountID:         d.AccountID,
		Debit:             d.Debit,
		Credit:            d.Credit,
		PostingDate:       d.PostingDate,
		DepartmentID:      d.DepartmentID,
		TaxCode:           d.TaxCode,
		ReconStatus:       string(d.ReconStatus),
		MatchedBankItemID: d.MatchedBankItemID,
		ReconciledBy:      d.ReconciledBy,
		ReconciledAt:      d.ReconciledAt,
		CreatedAt:         d.CreatedAt,
		CreatedBy:         d.CreatedBy,
	}
}

// ToDomainLedgerEntry converts a model LedgerEntry to its domain form
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:           m.EntryID,
		Sequence:          m.Sequence,
		CompanyID:         m.CompanyID,
		TransactionID:     m.TransactionID,
		AccountID:         m.AccountID,
		Debit:             m.Debit,
		Credit:            m.Credit,
		PostingDate:       m.PostingDate,
		DepartmentID:      m.DepartmentID,
		TaxCode:           m.TaxCode,
		ReconStatus:       domain.ReconciliationStatus(m.ReconStatus),
		MatchedBankItemID: m.MatchedBankItemID,
		ReconciledBy:      m.ReconciledBy,
		ReconciledAt:      m.ReconciledAt,
		CreatedAt:         m.CreatedAt,
		CreatedBy:         m.CreatedBy,
	}
}

// ToDomainLedgerEntrySlice converts a slice of model entries to domain entries
func ToDomainLedgerEntrySlice(ms []models.LedgerEntry) []domain.LedgerEntry {
	out := make([]domain.LedgerEntry, len(ms))
	for i, m := range ms {
		out[i] = ToDomainLedgerEntry(m)
	}
	return out
}

// ToModelAllocation converts a domain Allocation to its model form
func ToModelAllocation(d domain.Allocation) models.Allocation {
	return models.Allocation{
		AllocationID:         d.AllocationID,
		CompanyID:            d.CompanyID,
		PaymentTransactionID: d.PaymentTransactionID,
		TargetTransactionID:  d.TargetTransactionID,
		Amount:               d.Amount,
		AuditFields:          toModelAudit(d.AuditFields),
	}
}

// ToDomainAllocation converts a model Allocation to its domain form
func ToDomainAllocation(m models.Allocation) domain.Allocation {
	return domain.Allocation{
		AllocationID:         m.AllocationID,
		CompanyID:            m.CompanyID,
		PaymentTransactionID: m.PaymentTransactionID,
		TargetTransactionID:  m.TargetTransactionID,
		Amount:               m.Amount,
		AuditFields:          toDomainAudit(m.AuditFields),
	}
}

// ToModelAuditEvent converts a domain AuditEvent to its model form
func ToModelAuditEvent(d domain.AuditEvent) models.AuditEvent {
	return models.AuditEvent{
		EventID:       d.EventID,
		CompanyID:     d.CompanyID,
		Kind:          string(d.Kind),
		TransactionID: d.TransactionID,
		EntryID:       d.EntryID,
		ActorID:       d.ActorID,
		Details:       d.Details,
		OccurredAt:    d.OccurredAt,
	}
}
