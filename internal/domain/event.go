package domain

import "time"

// Event is the unit tickets are issued against. Immutable after creation;
// capacity is informational and not enforced at issuance.
type Event struct {
	ID        string
	Title     string
	Date      string
	Capacity  int
	CreatedAt time.Time
}
