package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationStatus marks whether an entry has been matched to a bank feed item.
type ReconciliationStatus string

const (
	Unreconciled ReconciliationStatus = "UNRECONCILED"
	Reconciled   ReconciliationStatus = "RECONCILED"
)

// LedgerEntry is one immutable posted debit-or-credit record against one
// account. Exactly one of Debit/Credit is non-zero. Once written, the only
// mutable fields are the reconciliation ones.
type LedgerEntry struct {
	EntryID       string          `json:"entryID"`       // Primary Key (UUID)
	Sequence      int64           `json:"sequence"`      // Monotonic posting sequence, store-assigned
	CompanyID     string          `json:"companyID"`     // FK -> companies.company_id
	TransactionID string          `json:"transactionID"` // FK -> transactions.transaction_id
	AccountID     string          `json:"accountID"`     // FK -> accounts.account_id
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	PostingDate   time.Time       `json:"postingDate"` // The transaction's date, not wall-clock
	DepartmentID  string          `json:"departmentID,omitempty"`
	TaxCode       string          `json:"taxCode,omitempty"`

	ReconStatus       ReconciliationStatus `json:"reconStatus"`
	MatchedBankItemID string               `json:"matchedBankItemID,omitempty"`
	ReconciledBy      string               `json:"reconciledBy,omitempty"`
	ReconciledAt      *time.Time           `json:"reconciledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// NetAmount is the entry's value under the debit-positive convention,
// the single derivation every downstream report uses.
func (e *LedgerEntry) NetAmount() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// EntryFromLine converts one transaction line into its ledger entry: the
// amount lands in the debit field for DEBIT lines and the credit field for
// CREDIT lines, never both.
func EntryFromLine(txn *Transaction, line TransactionLine, userID string, now time.Time) LedgerEntry {
	entry := LedgerEntry{
		CompanyID:     txn.CompanyID,
		TransactionID: txn.TransactionID,
		AccountID:     line.AccountID,
		Debit:         decimal.Zero,
		Credit:        decimal.Zero,
		PostingDate:   txn.Date,
		DepartmentID:  line.DepartmentID,
		TaxCode:       line.TaxCode,
		ReconStatus:   Unreconciled,
		CreatedAt:     now,
		CreatedBy:     userID,
	}
	if line.Direction == Debit {
		entry.Debit = line.Amount
	} else {
		entry.Credit = line.Amount
	}
	return entry
}
