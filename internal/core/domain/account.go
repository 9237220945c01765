package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// ValidAccountType reports whether t is one of the five recognised types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// Account represents one node of a company's chart of accounts.
// This is the primary representation used by services.
type Account struct {
	AccountID       string      `json:"accountID"`       // Primary Key (UUID)
	CompanyID       string      `json:"companyID"`       // FK -> companies.company_id (Not Null)
	Code            string      `json:"code"`            // Unique per company, e.g. "1200"
	Name            string      `json:"name"`            // User-defined name
	AccountType     AccountType `json:"accountType"`     // ASSET, LIABILITY, etc.
	ParentAccountID string      `json:"parentAccountID"` // Nullable FK -> accounts.account_id (tree)
	Description     string      `json:"description"`     // Nullable user description
	SecurityLevel   string      `json:"securityLevel"`   // Optional access tag, opaque to the engine
	IsBankAccount   bool        `json:"isBankAccount"`   // Eligible for bank reconciliation
	IsActive        bool        `json:"isActive"`        // Inactive accounts reject new postings
	AuditFields
}
