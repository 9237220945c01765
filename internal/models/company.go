package models

// Company is the persisted form of a company scoped ledger namespace.
type Company struct {
	CompanyID string `db:"company_id"`
	Name      string `db:"name"`
	IsActive  bool   `db:"is_active"`
	AuditFields
}
