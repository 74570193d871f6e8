package app

import (
	"context"
	"fmt"

	"github.com/cimillas/festival-pos/internal/clock"
	"github.com/cimillas/festival-pos/internal/domain"
)

// TicketStore is the single source of truth for ticket balances.
//
// ApplyBalanceDelta is an atomic compare-and-apply: the new balance is
// committed only if the stored balance still equals expectedPrior,
// otherwise domain.ErrConflict is returned and the caller must re-read
// and retry.
type TicketStore interface {
	CreateTicket(ctx context.Context, ticket domain.Ticket) error
	GetTicket(ctx context.Context, id string) (domain.Ticket, error)
	GetTicketByToken(ctx context.Context, token string) (domain.Ticket, error)
	ApplyBalanceDelta(ctx context.Context, id string, delta, expectedPrior int) (domain.Ticket, error)
}

// TransactionLog is the append-only structured record of balance changes.
type TransactionLog interface {
	AppendTransaction(ctx context.Context, tx domain.Transaction) error
	ListTransactionsByTicket(ctx context.Context, ticketID string) ([]domain.Transaction, error)
}

// AuditLog is the append-only human-readable trail. The service only ever
// writes to it; it is never consulted for decisions.
type AuditLog interface {
	AppendAudit(ctx context.Context, entry domain.AuditEntry) error
}

type EventLookup interface {
	GetEvent(ctx context.Context, id string) (domain.Event, error)
}

// RedemptionService is the only writer of ticket balances. Every successful
// balance mutation is paired with exactly one transaction and one audit
// entry, in that order, after the balance commit.
type RedemptionService struct {
	tickets       TicketStore
	txlog         TransactionLog
	audit         AuditLog
	events        EventLookup
	clock         clock.Clock
	redeemRetries int
	tokenAttempts int
}

const (
	defaultRedeemRetries = 3
	defaultTokenAttempts = 5

	defaultBuyer = "Guest"
	defaultTier  = "Full Cover"
)

func NewRedemptionService(tickets TicketStore, txlog TransactionLog, audit AuditLog, events EventLookup, clk clock.Clock, opts ...RedemptionServiceOption) *RedemptionService {
	svc := &RedemptionService{
		tickets:       tickets,
		txlog:         txlog,
		audit:         audit,
		events:        events,
		clock:         clk,
		redeemRetries: defaultRedeemRetries,
		tokenAttempts: defaultTokenAttempts,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type RedemptionServiceOption func(*RedemptionService)

// WithRedeemRetries overrides how many times a redemption is retried after
// a compare-and-apply conflict before ErrConflict surfaces to the caller.
func WithRedeemRetries(n int) RedemptionServiceOption {
	return func(s *RedemptionService) {
		if n > 0 {
			s.redeemRetries = n
		}
	}
}

type IssueTicketInput struct {
	EventID string
	Buyer   string
	Tier    string
	Price   int
	// InitialBalance is the redeemable credit loaded onto the ticket. When
	// nil it defaults to Price. The two fields are independent: a ticket
	// may be sold above or below its redeemable value.
	InitialBalance *int
}

// IssueTicket creates a ticket with its initial credit, writes the sale
// transaction and audit entry, and returns the ticket. The QR token is
// regenerated on a uniqueness violation rather than assumed collision-free.
//
// If a log append fails after the ticket exists, the returned error wraps
// domain.ErrLoggingFailure and the ticket is still returned: the balance
// commit is authoritative and is never rolled back to fix logging.
func (s *RedemptionService) IssueTicket(ctx context.Context, in IssueTicketInput) (domain.Ticket, error) {
	if in.EventID == "" {
		return domain.Ticket{}, domain.ErrInvalidID
	}
	if in.Price < 0 {
		return domain.Ticket{}, domain.ErrInvalidPrice
	}
	balance := in.Price
	if in.InitialBalance != nil {
		if *in.InitialBalance < 0 {
			return domain.Ticket{}, domain.ErrInvalidBalance
		}
		balance = *in.InitialBalance
	}

	event, err := s.events.GetEvent(ctx, in.EventID)
	if err != nil {
		return domain.Ticket{}, err
	}

	buyer := in.Buyer
	if buyer == "" {
		buyer = defaultBuyer
	}
	tier := in.Tier
	if tier == "" {
		tier = defaultTier
	}

	now := s.clock.Now()
	ticket := domain.Ticket{
		EventID:           event.ID,
		Buyer:             buyer,
		Tier:              tier,
		Price:             in.Price,
		RedeemableBalance: balance,
		Status:            domain.TicketStatusIssued,
		IssuedAt:          now,
	}

	created := false
	for attempt := 0; attempt < s.tokenAttempts; attempt++ {
		ticket.ID = newID()
		ticket.QRToken = newQRToken()
		err := s.tickets.CreateTicket(ctx, ticket)
		if err == nil {
			created = true
			break
		}
		if err != domain.ErrTokenExists {
			return domain.Ticket{}, err
		}
	}
	if !created {
		return domain.Ticket{}, fmt.Errorf("issue ticket: %w", domain.ErrTokenExists)
	}

	sale := domain.Transaction{
		ID:          newID(),
		Type:        domain.TransactionTypeSale,
		TicketID:    ticket.ID,
		EventID:     event.ID,
		Amount:      in.Price,
		RedeemAfter: balance,
		ProcessedAt: now,
	}
	if err := s.txlog.AppendTransaction(ctx, sale); err != nil {
		return ticket, fmt.Errorf("%w: append sale transaction: %v", domain.ErrLoggingFailure, err)
	}
	entry := domain.AuditEntry{
		ID:        newID(),
		Action:    string(domain.TransactionTypeSale),
		TicketID:  ticket.ID,
		Message:   fmt.Sprintf("Sold ticket %s (tier %s) for %d, credited %d", ticket.ID, tier, in.Price, balance),
		Timestamp: now,
	}
	if err := s.audit.AppendAudit(ctx, entry); err != nil {
		return ticket, fmt.Errorf("%w: append sale audit: %v", domain.ErrLoggingFailure, err)
	}
	return ticket, nil
}

type RedeemInput struct {
	// Exactly one of TicketID or Token identifies the ticket.
	TicketID string
	Token    string
	Amount   int
}

type RedeemResult struct {
	Ticket     domain.Ticket
	NewBalance int
}

// Redeem decrements the ticket's redeemable balance by Amount.
//
// All validation runs against a single snapshot of the ticket, and the
// decrement only commits if that snapshot is still current; a conflicting
// concurrent redemption triggers an internal re-read and retry, bounded by
// the configured retry count. A result is always produced: success, a
// validation error, or ErrConflict once retries are exhausted.
func (s *RedemptionService) Redeem(ctx context.Context, in RedeemInput) (RedeemResult, error) {
	if in.Amount <= 0 {
		return RedeemResult{}, domain.ErrInvalidAmount
	}
	if in.TicketID == "" && in.Token == "" {
		return RedeemResult{}, domain.ErrInvalidID
	}

	for attempt := 0; attempt < s.redeemRetries; attempt++ {
		snapshot, err := s.snapshot(ctx, in)
		if err != nil {
			return RedeemResult{}, err
		}
		if snapshot.Status == domain.TicketStatusVoid {
			return RedeemResult{}, domain.ErrTicketNotActive
		}
		if snapshot.RedeemableBalance <= 0 {
			return RedeemResult{}, fmt.Errorf("%w: no balance left", domain.ErrInsufficientBalance)
		}
		if in.Amount > snapshot.RedeemableBalance {
			return RedeemResult{}, fmt.Errorf("%w: amount %d exceeds balance %d", domain.ErrInsufficientBalance, in.Amount, snapshot.RedeemableBalance)
		}

		updated, err := s.tickets.ApplyBalanceDelta(ctx, snapshot.ID, -in.Amount, snapshot.RedeemableBalance)
		if err == domain.ErrConflict {
			continue
		}
		if err != nil {
			return RedeemResult{}, err
		}

		result := RedeemResult{Ticket: updated, NewBalance: updated.RedeemableBalance}
		// The balance commit above is authoritative. Log appends run outside
		// any per-ticket exclusion and their failure never rolls it back.
		before := snapshot.RedeemableBalance
		now := s.clock.Now()
		tx := domain.Transaction{
			ID:           newID(),
			Type:         domain.TransactionTypeRedeem,
			TicketID:     updated.ID,
			EventID:      updated.EventID,
			Amount:       in.Amount,
			RedeemBefore: &before,
			RedeemAfter:  updated.RedeemableBalance,
			ProcessedAt:  now,
		}
		if err := s.txlog.AppendTransaction(ctx, tx); err != nil {
			return result, fmt.Errorf("%w: append redeem transaction: %v", domain.ErrLoggingFailure, err)
		}
		entry := domain.AuditEntry{
			ID:        newID(),
			Action:    string(domain.TransactionTypeRedeem),
			TicketID:  updated.ID,
			Message:   fmt.Sprintf("Redeemed %d. New balance %d", in.Amount, updated.RedeemableBalance),
			Timestamp: now,
		}
		if err := s.audit.AppendAudit(ctx, entry); err != nil {
			return result, fmt.Errorf("%w: append redeem audit: %v", domain.ErrLoggingFailure, err)
		}
		return result, nil
	}
	return RedeemResult{}, domain.ErrConflict
}

func (s *RedemptionService) snapshot(ctx context.Context, in RedeemInput) (domain.Ticket, error) {
	if in.TicketID != "" {
		return s.tickets.GetTicket(ctx, in.TicketID)
	}
	return s.tickets.GetTicketByToken(ctx, in.Token)
}

func (s *RedemptionService) GetTicket(ctx context.Context, id string) (domain.Ticket, error) {
	if id == "" {
		return domain.Ticket{}, domain.ErrInvalidID
	}
	return s.tickets.GetTicket(ctx, id)
}

func (s *RedemptionService) GetTicketByToken(ctx context.Context, token string) (domain.Ticket, error) {
	if token == "" {
		return domain.Ticket{}, domain.ErrInvalidID
	}
	return s.tickets.GetTicketByToken(ctx, token)
}

// GetHistory returns the ticket's transactions in balance-chain order,
// which is commit order: the sale first, then redeems by descending prior
// balance. Timestamps are stamped after the balance commit, so concurrent
// redemptions can carry tied or inverted timestamps; the chain key cannot.
// The result is independently verifiable: each entry's RedeemAfter equals
// the next entry's RedeemBefore, and the last equals the live balance.
func (s *RedemptionService) GetHistory(ctx context.Context, ticketID string) ([]domain.Transaction, error) {
	if ticketID == "" {
		return nil, domain.ErrInvalidID
	}
	if _, err := s.tickets.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.txlog.ListTransactionsByTicket(ctx, ticketID)
}
