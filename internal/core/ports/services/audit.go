package services

import (
	"context"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// AuditLogger is an injected capability for recording audit trail events.
// The posting engine calls it after a successful commit; a failure to record
// is logged by the caller but never rolls back the posted entries.
type AuditLogger interface {
	RecordEvent(ctx context.Context, event domain.AuditEvent) error
}
