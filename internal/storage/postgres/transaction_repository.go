package postgres

import (
	"context"
	"fmt"

	"github.com/cimillas/festival-pos/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository is append-only: the public contract has no update
// or delete, and the table carries no mutable columns.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) AppendTransaction(ctx context.Context, tx domain.Transaction) error {
	const stmt = `
INSERT INTO transactions (id, type, ticket_id, event_id, amount, redeem_before, redeem_after, processed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, stmt,
		tx.ID,
		tx.Type,
		tx.TicketID,
		tx.EventID,
		tx.Amount,
		tx.RedeemBefore,
		tx.RedeemAfter,
		tx.ProcessedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

// ListTransactionsByTicket returns the ticket's transactions in balance-chain
// order: the sale first (nil redeem_before sorts ahead), then redeems by
// descending prior balance. The balance only ever decreases, so that key is
// unique per ticket and equals commit order. processed_at is stamped after
// the balance commit and can tie or invert under concurrency, so it is not
// the ordering key.
func (r *TransactionRepository) ListTransactionsByTicket(ctx context.Context, ticketID string) ([]domain.Transaction, error) {
	const query = `
SELECT id, type, ticket_id, event_id, amount, redeem_before, redeem_after, processed_at
FROM transactions
WHERE ticket_id = $1
ORDER BY redeem_before DESC NULLS FIRST, processed_at, id`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var txType string
		if err := rows.Scan(&tx.ID, &txType, &tx.TicketID, &tx.EventID, &tx.Amount, &tx.RedeemBefore, &tx.RedeemAfter, &tx.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = domain.TransactionType(txType)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}
