package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// CreateAccountRequest defines the expected JSON body for creating an account
type CreateAccountRequest struct {
	Code            string `json:"code" binding:"required,min=1,max=20"`
	Name            string `json:"name" binding:"required,min=1,max=100"`
	AccountType     string `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	ParentAccountID string `json:"parentAccountID" binding:"omitempty,uuid"`
	Description     string `json:"description" binding:"max=500"`
	SecurityLevel   string `json:"securityLevel" binding:"max=50"`
	IsBankAccount   bool   `json:"isBankAccount"`
}

// UpdateAccountRequest defines the expected JSON body for updating an account.
// Pointer fields distinguish "not provided" from zero values.
type UpdateAccountRequest struct {
	Code            *string `json:"code" binding:"omitempty,min=1,max=20"`
	Name            *string `json:"name" binding:"omitempty,min=1,max=100"`
	AccountType     *string `json:"accountType" binding:"omitempty,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	ParentAccountID *string `json:"parentAccountID" binding:"omitempty,uuid"`
	Description     *string `json:"description" binding:"omitempty,max=500"`
	SecurityLevel   *string `json:"securityLevel" binding:"omitempty,max=50"`
	IsBankAccount   *bool   `json:"isBankAccount"`
}

// AccountResponse defines the JSON structure for account API responses
type AccountResponse struct {
	AccountID       string    `json:"accountID"`
	CompanyID       string    `json:"companyID"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	AccountType     string    `json:"accountType"`
	ParentAccountID string    `json:"parentAccountID,omitempty"`
	Description     string    `json:"description,omitempty"`
	SecurityLevel   string    `json:"securityLevel,omitempty"`
	IsBankAccount   bool      `json:"isBankAccount"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// AccountBalanceResponse carries an account balance as of a date, signed so
// that the normal balance of the account type displays as a positive number
type AccountBalanceResponse struct {
	AccountID string          `json:"accountID"`
	AsOf      string          `json:"asOf"`
	Balance   decimal.Decimal `json:"balance"`
}

// ListAccountsResponse wraps a page of accounts
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain account to its response DTO
func ToAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       account.AccountID,
		CompanyID:       account.CompanyID,
		Code:            account.Code,
		Name:            account.Name,
		AccountType:     string(account.AccountType),
		ParentAccountID: account.ParentAccountID,
		Description:     account.Description,
		SecurityLevel:   account.SecurityLevel,
		IsBankAccount:   account.IsBankAccount,
		IsActive:        account.IsActive,
		CreatedAt:       account.CreatedAt,
		UpdatedAt:       account.LastUpdatedAt,
	}
}

// ToListAccountsResponse converts a slice of domain accounts to a list response
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	response := ListAccountsResponse{
		Accounts: make([]AccountResponse, len(accounts)),
	}
	for i := range accounts {
		response.Accounts[i] = ToAccountResponse(&accounts[i])
	}
	return response
}
