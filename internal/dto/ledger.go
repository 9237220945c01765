package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// MarkReconciledRequest defines the expected JSON body for matching a ledger
// entry to a bank feed item
type MarkReconciledRequest struct {
	BankItemID string `json:"bankItemID" binding:"required,min=1,max=100"`
}

// ListEntriesParams defines the query parameters for listing an account's
// ledger entries over a date range
type ListEntriesParams struct {
	From         time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To           time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
	DepartmentID *string   `form:"departmentID" binding:"omitempty,uuid"`
}

// LedgerEntryResponse defines the JSON structure for ledger entry API responses
type LedgerEntryResponse struct {
	EntryID           string          `json:"entryID"`
	Sequence          int64           `json:"sequence"`
	TransactionID     string          `json:"transactionID"`
	AccountID         string          `json:"accountID"`
	Debit             decimal.Decimal `json:"debit"`
	Credit            decimal.Decimal `json:"credit"`
	PostingDate       time.Time       `json:"postingDate"`
	DepartmentID      string          `json:"departmentID,omitempty"`
	TaxCode           string          `json:"taxCode,omitempty"`
	ReconStatus       string          `json:"reconStatus"`
	MatchedBankItemID string          `json:"matchedBankItemID,omitempty"`
	ReconciledBy      string          `json:"reconciledBy,omitempty"`
	ReconciledAt      *time.Time      `json:"reconciledAt,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ListEntriesResponse wraps a page of ledger entries
type ListEntriesResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
}

// ToLedgerEntryResponse converts a domain ledger entry to its response DTO
func ToLedgerEntryResponse(entry *domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		EntryID:           entry.EntryID,
		Sequence:          entry.Sequence,
		TransactionID:     entry.TransactionID,
		AccountID:         entry.AccountID,
		Debit:             entry.Debit,
		Credit:            entry.Credit,
		PostingDate:       entry.PostingDate,
		DepartmentID:      entry.DepartmentID,
		TaxCode:           entry.TaxCode,
		ReconStatus:       string(entry.ReconStatus),
		MatchedBankItemID: entry.MatchedBankItemID,
		ReconciledBy:      entry.ReconciledBy,
		ReconciledAt:      entry.ReconciledAt,
		CreatedAt:         entry.CreatedAt,
	}
}

// ToListEntriesResponse converts a slice of domain entries to a list response
func ToListEntriesResponse(entries []domain.LedgerEntry) ListEntriesResponse {
	response := ListEntriesResponse{
		Entries: make([]LedgerEntryResponse, len(entries)),
	}
	for i := range entries {
		response.Entries[i] = ToLedgerEntryResponse(&entries[i])
	}
	return response
}
