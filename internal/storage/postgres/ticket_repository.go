package postgres

import (
	"context"
	"fmt"

	"github.com/cimillas/festival-pos/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const qrTokenConstraint = "tickets_qr_token_key"

const ticketColumns = `id, event_id, buyer, tier, price, redeemable_balance, status, qr_token, issued_at`

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *TicketRepository) CreateTicket(ctx context.Context, t domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, event_id, buyer, tier, price, redeemable_balance, status, qr_token, issued_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		t.ID,
		t.EventID,
		t.Buyer,
		t.Tier,
		t.Price,
		t.RedeemableBalance,
		t.Status,
		t.QRToken,
		t.IssuedAt,
	)
	if err != nil {
		if isUniqueViolation(err, qrTokenConstraint) {
			return domain.ErrTokenExists
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetTicket(ctx context.Context, id string) (domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	return r.scanTicket(r.queryRow(ctx, query, id))
}

func (r *TicketRepository) GetTicketByToken(ctx context.Context, token string) (domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE qr_token = $1`
	return r.scanTicket(r.queryRow(ctx, query, token))
}

// ApplyBalanceDelta commits the new balance only if the stored balance
// still equals expectedPrior, so two concurrent redemptions can never both
// apply against the same snapshot. A ticket whose balance reaches zero is
// marked exhausted in the same statement.
func (r *TicketRepository) ApplyBalanceDelta(ctx context.Context, id string, delta, expectedPrior int) (domain.Ticket, error) {
	const stmt = `
UPDATE tickets
SET redeemable_balance = redeemable_balance + $2,
    status = CASE
        WHEN redeemable_balance + $2 = 0 AND status = 'issued' THEN 'exhausted'
        ELSE status
    END
WHERE id = $1 AND redeemable_balance = $3
RETURNING ` + ticketColumns

	t, err := r.scanTicket(r.queryRow(ctx, stmt, id, delta, expectedPrior))
	if err == nil {
		return t, nil
	}
	if err != domain.ErrTicketNotFound {
		return domain.Ticket{}, err
	}

	// No row matched: either the ticket is gone or the expectation is
	// stale. Only the latter is a retryable conflict.
	var exists bool
	if err := r.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id = $1)`, id).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return domain.Ticket{}, domain.ErrInvalidID
		}
		return domain.Ticket{}, fmt.Errorf("check ticket: %w", err)
	}
	if exists {
		return domain.Ticket{}, domain.ErrConflict
	}
	return domain.Ticket{}, domain.ErrTicketNotFound
}

func (r *TicketRepository) scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	var status string
	err := row.Scan(&t.ID, &t.EventID, &t.Buyer, &t.Tier, &t.Price, &t.RedeemableBalance, &status, &t.QRToken, &t.IssuedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Ticket{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("scan ticket: %w", err)
	}
	t.Status = domain.TicketStatus(status)
	return t, nil
}

func (r *TicketRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *TicketRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
