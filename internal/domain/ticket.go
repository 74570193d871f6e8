package domain

import "time"

type TicketStatus string

const (
	TicketStatusIssued    TicketStatus = "issued"
	TicketStatusVoid      TicketStatus = "void"
	TicketStatusExhausted TicketStatus = "exhausted"
)

// Ticket carries a prepaid redeemable balance against an event.
//
// RedeemableBalance never goes negative and never increases after issuance.
// Price and RedeemableBalance are independent: a ticket may be sold above or
// below its redeemable value. QRToken is the opaque external lookup key,
// generated once at issuance and never the internal identifier.
type Ticket struct {
	ID                string
	EventID           string
	Buyer             string
	Tier              string
	Price             int
	RedeemableBalance int
	Status            TicketStatus
	QRToken           string
	IssuedAt          time.Time
}
