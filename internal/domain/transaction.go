package domain

import "time"

type TransactionType string

const (
	TransactionTypeSale   TransactionType = "sale"
	TransactionTypeRedeem TransactionType = "redeem"
)

// Transaction is an immutable record of a single balance-affecting event.
// Records are only ever appended, never updated or deleted.
//
// For a redeem, RedeemBefore and RedeemAfter bracket the decrement and
// RedeemAfter = *RedeemBefore - Amount. For a sale there is no prior
// balance: RedeemBefore is nil and RedeemAfter is the initial credit.
// EventID is denormalized from the ticket for per-event reporting.
type Transaction struct {
	ID           string
	Type         TransactionType
	TicketID     string
	EventID      string
	Amount       int
	RedeemBefore *int
	RedeemAfter  int
	ProcessedAt  time.Time
}
