package models

import "time"

// AuditEvent is the persisted form of one audit trail record.
type AuditEvent struct {
	EventID       string    `db:"event_id"`
	CompanyID     string    `db:"company_id"`
	Kind          string    `db:"kind"`
	TransactionID string    `db:"transaction_id"`
	EntryID       string    `db:"entry_id"`
	ActorID       string    `db:"actor_id"`
	Details       string    `db:"details"`
	OccurredAt    time.Time `db:"occurred_at"`
}
