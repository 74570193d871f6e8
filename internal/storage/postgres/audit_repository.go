package postgres

import (
	"context"
	"fmt"

	"github.com/cimillas/festival-pos/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository holds the secondary human-readable trail. Append-only,
// same as the transaction log, but structurally independent of it.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) AppendAudit(ctx context.Context, entry domain.AuditEntry) error {
	const stmt = `
INSERT INTO audits (id, action, ticket_id, message, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, stmt,
		entry.ID,
		entry.Action,
		entry.TicketID,
		entry.Message,
		entry.Timestamp,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListAuditByTicket(ctx context.Context, ticketID string) ([]domain.AuditEntry, error) {
	const query = `
SELECT id, action, ticket_id, message, created_at
FROM audits
WHERE ticket_id = $1
ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.TicketID, &e.Message, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return out, nil
}
