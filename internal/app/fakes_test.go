package app

import (
	"context"
	"sort"
	"sync"

	"github.com/cimillas/festival-pos/internal/domain"
)

// fakeTicketStore is an in-memory TicketStore with the same
// compare-and-apply contract as the Postgres repository.
type fakeTicketStore struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
	byToken map[string]string

	// tokenCollisions forces ErrTokenExists for the first N creates.
	tokenCollisions int
	// forcedConflicts forces ErrConflict for the first N delta applies.
	forcedConflicts int
}

func newFakeTicketStore(tickets ...domain.Ticket) *fakeTicketStore {
	s := &fakeTicketStore{
		tickets: make(map[string]domain.Ticket),
		byToken: make(map[string]string),
	}
	for _, t := range tickets {
		s.tickets[t.ID] = t
		s.byToken[t.QRToken] = t.ID
	}
	return s
}

func (s *fakeTicketStore) CreateTicket(_ context.Context, t domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokenCollisions > 0 {
		s.tokenCollisions--
		return domain.ErrTokenExists
	}
	if _, exists := s.byToken[t.QRToken]; exists {
		return domain.ErrTokenExists
	}
	s.tickets[t.ID] = t
	s.byToken[t.QRToken] = t.ID
	return nil
}

func (s *fakeTicketStore) GetTicket(_ context.Context, id string) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return t, nil
}

func (s *fakeTicketStore) GetTicketByToken(_ context.Context, token string) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byToken[token]
	if !ok {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return s.tickets[id], nil
}

func (s *fakeTicketStore) ApplyBalanceDelta(_ context.Context, id string, delta, expectedPrior int) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	if s.forcedConflicts > 0 {
		s.forcedConflicts--
		return domain.Ticket{}, domain.ErrConflict
	}
	if t.RedeemableBalance != expectedPrior {
		return domain.Ticket{}, domain.ErrConflict
	}
	t.RedeemableBalance += delta
	if t.RedeemableBalance == 0 && t.Status == domain.TicketStatusIssued {
		t.Status = domain.TicketStatusExhausted
	}
	s.tickets[id] = t
	return t, nil
}

type fakeTransactionLog struct {
	mu        sync.Mutex
	entries   []domain.Transaction
	appendErr error
}

func (l *fakeTransactionLog) AppendTransaction(_ context.Context, tx domain.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.appendErr != nil {
		return l.appendErr
	}
	l.entries = append(l.entries, tx)
	return nil
}

// ListTransactionsByTicket mirrors the Postgres repository's balance-chain
// ordering: sale first, then redeems by descending prior balance.
func (l *fakeTransactionLog) ListTransactionsByTicket(_ context.Context, ticketID string) ([]domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Transaction
	for _, tx := range l.entries {
		if tx.TicketID == ticketID {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		bi, bj := out[i].RedeemBefore, out[j].RedeemBefore
		if (bi == nil) != (bj == nil) {
			return bi == nil
		}
		if bi == nil {
			return false
		}
		return *bi > *bj
	})
	return out, nil
}

func (l *fakeTransactionLog) byTicket(ticketID string) []domain.Transaction {
	out, _ := l.ListTransactionsByTicket(context.Background(), ticketID)
	return out
}

type fakeAuditLog struct {
	mu        sync.Mutex
	entries   []domain.AuditEntry
	appendErr error
}

func (l *fakeAuditLog) AppendAudit(_ context.Context, entry domain.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.appendErr != nil {
		return l.appendErr
	}
	l.entries = append(l.entries, entry)
	return nil
}

func (l *fakeAuditLog) byTicket(ticketID string) []domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range l.entries {
		if e.TicketID == ticketID {
			out = append(out, e)
		}
	}
	return out
}

type fakeEventLookup struct {
	events map[string]domain.Event
}

func newFakeEventLookup(events ...domain.Event) *fakeEventLookup {
	m := make(map[string]domain.Event)
	for _, e := range events {
		m[e.ID] = e
	}
	return &fakeEventLookup{events: m}
}

func (f *fakeEventLookup) GetEvent(_ context.Context, id string) (domain.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return e, nil
}
