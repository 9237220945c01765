package domain

import "time"

// AuditEventKind classifies an audit trail event.
type AuditEventKind string

const (
	EventTransactionPosted   AuditEventKind = "TRANSACTION_POSTED"
	EventTransactionReversed AuditEventKind = "TRANSACTION_REVERSED"
	EventEntryReconciled     AuditEventKind = "ENTRY_RECONCILED"
	EventEntryUnreconciled   AuditEventKind = "ENTRY_UNRECONCILED"
)

// AuditEvent is one immutable audit trail record written after a successful
// commit. The engine emits these through an injected AuditLogger so the
// concern stays decoupled from posting logic.
type AuditEvent struct {
	EventID       string         `json:"eventID"` // Primary Key (UUID)
	CompanyID     string         `json:"companyID"`
	Kind          AuditEventKind `json:"kind"`
	TransactionID string         `json:"transactionID,omitempty"`
	EntryID       string         `json:"entryID,omitempty"`
	ActorID       string         `json:"actorID"`
	Details       string         `json:"details,omitempty"`
	OccurredAt    time.Time      `json:"occurredAt"`
}
