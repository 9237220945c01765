package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// CreateLineRequest defines one proposed line inside a draft transaction
type CreateLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required,uuid"`
	Amount       decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Direction    string          `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	TaxCode      string          `json:"taxCode" binding:"max=20"`
	DepartmentID string          `json:"departmentID" binding:"omitempty,uuid"`
	Memo         string          `json:"memo" binding:"max=500"`
}

// CreateTransactionRequest defines the expected JSON body for creating a
// draft transaction. Lines are optional; drafts may start empty.
type CreateTransactionRequest struct {
	Type        string              `json:"type" binding:"required,oneof=JOURNAL PAYMENT RECEIPT TRANSFER"`
	Date        time.Time           `json:"date" binding:"required"`
	Description string              `json:"description" binding:"max=500"`
	Reference   string              `json:"reference" binding:"max=100"`
	Lines       []CreateLineRequest `json:"lines" binding:"omitempty,dive"`
}

// ReverseTransactionRequest defines the expected JSON body for reversing a
// posted transaction
type ReverseTransactionRequest struct {
	Date   time.Time `json:"date" binding:"required"`
	Reason string    `json:"reason" binding:"max=500"`
}

// ListTransactionsParams defines the query parameters for listing transactions
type ListTransactionsParams struct {
	Limit            int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken        string `form:"nextToken"`
	IncludeReversals bool   `form:"includeReversals,default=true"`
}

// TransactionLineResponse defines the JSON structure for a transaction line
type TransactionLineResponse struct {
	LineID       string          `json:"lineID"`
	AccountID    string          `json:"accountID"`
	Amount       decimal.Decimal `json:"amount"`
	Direction    string          `json:"direction"`
	TaxCode      string          `json:"taxCode,omitempty"`
	DepartmentID string          `json:"departmentID,omitempty"`
	Memo         string          `json:"memo,omitempty"`
}

// TransactionResponse defines the JSON structure for transaction API responses
type TransactionResponse struct {
	TransactionID string                    `json:"transactionID"`
	CompanyID     string                    `json:"companyID"`
	Type          string                    `json:"type"`
	Date          time.Time                 `json:"date"`
	Description   string                    `json:"description,omitempty"`
	Reference     string                    `json:"reference,omitempty"`
	Status        string                    `json:"status"`
	Lines         []TransactionLineResponse `json:"lines"`
	DebitTotal    decimal.Decimal           `json:"debitTotal"`
	CreditTotal   decimal.Decimal           `json:"creditTotal"`
	ReversalOfID  *string                   `json:"reversalOfID,omitempty"`
	ReversedByID  *string                   `json:"reversedByID,omitempty"`
	CreatedAt     time.Time                 `json:"createdAt"`
	CreatedBy     string                    `json:"createdBy"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
}

// ListTransactionsResponse wraps a page of transactions with the pagination
// token for the next page
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    string                `json:"nextToken,omitempty"`
}

// ToTransactionLineResponse converts a domain line to its response DTO
func ToTransactionLineResponse(line domain.TransactionLine) TransactionLineResponse {
	return TransactionLineResponse{
		LineID:       line.LineID,
		AccountID:    line.AccountID,
		Amount:       line.Amount,
		Direction:    string(line.Direction),
		TaxCode:      line.TaxCode,
		DepartmentID: line.DepartmentID,
		Memo:         line.Memo,
	}
}

// ToTransactionResponse converts a domain transaction to its response DTO
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	lines := make([]TransactionLineResponse, len(txn.Lines))
	for i, line := range txn.Lines {
		lines[i] = ToTransactionLineResponse(line)
	}
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		CompanyID:     txn.CompanyID,
		Type:          string(txn.Type),
		Date:          txn.Date,
		Description:   txn.Description,
		Reference:     txn.Reference,
		Status:        string(txn.Status),
		Lines:         lines,
		DebitTotal:    txn.DebitTotal(),
		CreditTotal:   txn.CreditTotal(),
		ReversalOfID:  txn.ReversalOfID,
		ReversedByID:  txn.ReversedByID,
		CreatedAt:     txn.CreatedAt,
		CreatedBy:     txn.CreatedBy,
		UpdatedAt:     txn.LastUpdatedAt,
	}
}
