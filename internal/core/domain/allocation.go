package domain

import (
	"github.com/shopspring/decimal"
)

// Allocation records a payment transaction applied against a target
// transaction (typically an invoice or bill posting). The posting engine
// never creates allocations; it only reads them to block reversal of a
// transaction that still has money applied against it.
type Allocation struct {
	AllocationID         string          `json:"allocationID"` // Primary Key (UUID)
	CompanyID            string          `json:"companyID"`
	PaymentTransactionID string          `json:"paymentTransactionID"` // FK -> transactions
	TargetTransactionID  string          `json:"targetTransactionID"`  // FK -> transactions
	Amount               decimal.Decimal `json:"amount"`               // Strictly positive
	AuditFields
}
