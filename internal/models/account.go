package models

// AccountType mirrors the domain account type for persistence.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// Account is the persisted form of a chart-of-accounts node.
// ParentAccountID uses the empty string for the NULL parent.
type Account struct {
	AccountID       string      `db:"account_id"`
	CompanyID       string      `db:"company_id"`
	Code            string      `db:"code"`
	Name            string      `db:"name"`
	AccountType     AccountType `db:"account_type"`
	ParentAccountID string      `db:"parent_account_id"`
	Description     string      `db:"description"`
	SecurityLevel   string      `db:"security_level"`
	IsBankAccount   bool        `db:"is_bank_account"`
	IsActive        bool        `db:"is_active"`
	AuditFields
}
