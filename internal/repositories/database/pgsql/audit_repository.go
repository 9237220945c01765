package pgsql

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/utils/mapping"
)

// PgxAuditRepository persists audit trail events. It implements the
// AuditLogger capability injected into the posting and ledger services.
type PgxAuditRepository struct {
	BaseRepository
}

// NewPgxAuditRepository creates a new repository for audit events.
func NewPgxAuditRepository(pool *pgxpool.Pool) portssvc.AuditLogger {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portssvc.AuditLogger = (*PgxAuditRepository)(nil)

// RecordEvent appends one audit trail row. Rows are append-only; there is no
// update or delete path.
func (r *PgxAuditRepository) RecordEvent(ctx context.Context, event domain.AuditEvent) error {
	m := mapping.ToModelAuditEvent(event)

	query := `
		INSERT INTO audit_events (event_id, company_id, kind, transaction_id, entry_id, actor_id, details, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	var transactionID, entryID sql.NullString
	if m.TransactionID != "" {
		transactionID = sql.NullString{String: m.TransactionID, Valid: true}
	}
	if m.EntryID != "" {
		entryID = sql.NullString{String: m.EntryID, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, query,
		m.EventID,
		m.CompanyID,
		m.Kind,
		transactionID,
		entryID,
		m.ActorID,
		m.Details,
		m.OccurredAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to record audit event "+m.EventID, err)
	}
	return nil
}
