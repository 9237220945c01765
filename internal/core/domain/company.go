package domain

// Company is the scoping entity for all accounts, transactions and entries.
type Company struct {
	CompanyID string `json:"companyID"` // Primary Key (UUID)
	Name      string `json:"name"`
	IsActive  bool   `json:"isActive"`
	AuditFields
}
