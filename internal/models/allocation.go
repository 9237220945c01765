package models

import "github.com/shopspring/decimal"

// Allocation is the persisted form of a payment applied against a transaction.
type Allocation struct {
	AllocationID         string          `db:"allocation_id"`
	CompanyID            string          `db:"company_id"`
	PaymentTransactionID string          `db:"payment_transaction_id"`
	TargetTransactionID  string          `db:"target_transaction_id"`
	Amount               decimal.Decimal `db:"amount"`
	AuditFields
}
