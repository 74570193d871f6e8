package domain

import "time"

// AuditEntry is the human-readable trail written alongside every
// transaction. It is purely observational: the redemption service never
// reads it back to make decisions.
type AuditEntry struct {
	ID        string
	Action    string
	TicketID  string
	Message   string
	Timestamp time.Time
}
