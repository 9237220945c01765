package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus indicates the lifecycle state of a transaction row.
type TransactionStatus string

const (
	Draft  TransactionStatus = "DRAFT"
	Posted TransactionStatus = "POSTED"
	Void   TransactionStatus = "VOID"
)

// Transaction is the persisted header of a transaction aggregate.
type Transaction struct {
	TransactionID string            `db:"transaction_id"`
	CompanyID     string            `db:"company_id"`
	Type          string            `db:"transaction_type"`
	Date          time.Time         `db:"transaction_date"`
	Description   string            `db:"description"`
	Reference     string            `db:"reference"`
	Status        TransactionStatus `db:"status"`
	ReversalOfID  *string           `db:"reversal_of_id"`
	ReversedByID  *string           `db:"reversed_by_id"`
	Version       int64             `db:"version"`
	AuditFields
}

// TransactionLine is the persisted form of one draft line.
type TransactionLine struct {
	LineID        string          `db:"line_id"`
	TransactionID string          `db:"transaction_id"`
	AccountID     string          `db:"account_id"`
	Amount        decimal.Decimal `db:"amount"`
	Direction     string          `db:"direction"`
	TaxCode       string          `db:"tax_code"`
	DepartmentID  string          `db:"department_id"`
	Memo          string          `db:"memo"`
}
