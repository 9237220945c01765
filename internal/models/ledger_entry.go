package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is the persisted form of one immutable posted entry. The
// entry_seq column is a bigserial; the database assigns the monotonic
// posting sequence at insert time.
type LedgerEntry struct {
	EntryID           string          `db:"entry_id"`
	Sequence          int64           `db:"entry_seq"`
	CompanyID         string          `db:"company_id"`
	TransactionID     string          `db:"transaction_id"`
	AccountID         string          `db:"account_id"`
	Debit             decimal.Decimal `db:"debit"`
	Credit            decimal.Decimal `db:"credit"`
	PostingDate       time.Time       `db:"posting_date"`
	DepartmentID      string          `db:"department_id"`
	TaxCode           string          `db:"tax_code"`
	ReconStatus       string          `db:"recon_status"`
	MatchedBankItemID string          `db:"matched_bank_item_id"`
	ReconciledBy      string          `db:"reconciled_by"`
	ReconciledAt      *time.Time      `db:"reconciled_at"`
	CreatedAt         time.Time       `db:"created_at"`
	CreatedBy         string          `db:"created_by"`
}
