package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cimillas/festival-pos/internal/clock"
	"github.com/cimillas/festival-pos/internal/domain"
	"golang.org/x/sync/errgroup"
)

// TestRedemptionService_ConcurrentRedemptions drains a balance of 500 with
// five concurrent redemptions of 100 each. Every redemption must land
// exactly once: final balance 0, five redeem transactions, and an unbroken
// before/after chain.
func TestRedemptionService_ConcurrentRedemptions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	ticket := domain.Ticket{
		ID:                "ticket-1",
		EventID:           "event-1",
		RedeemableBalance: 500,
		Status:            domain.TicketStatusIssued,
		QRToken:           "cafe00112233",
		IssuedAt:          now,
	}
	store := newFakeTicketStore(ticket)
	txlog := &fakeTransactionLog{}
	// High contention on one ticket needs more headroom than the default
	// retry bound.
	svc := NewRedemptionService(store, txlog, &fakeAuditLog{}, newFakeEventLookup(testEvent), clock.NewFixed(now), WithRedeemRetries(20))

	const workers = 5
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := svc.Redeem(context.Background(), RedeemInput{TicketID: "ticket-1", Amount: 100})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("expected all redemptions to succeed, got %v", err)
	}

	final, _ := store.GetTicket(context.Background(), "ticket-1")
	if final.RedeemableBalance != 0 {
		t.Fatalf("expected final balance 0, got %d", final.RedeemableBalance)
	}
	if final.Status != domain.TicketStatusExhausted {
		t.Fatalf("expected exhausted status, got %s", final.Status)
	}

	// GetHistory must come back in chain order as-is: the fixed clock gives
	// every record the same timestamp, so any wall-clock ordering would make
	// this replay flaky.
	txs, err := svc.GetHistory(context.Background(), "ticket-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(txs) != workers {
		t.Fatalf("expected exactly %d redeem transactions, got %d", workers, len(txs))
	}
	balance := 500
	for i, tx := range txs {
		if tx.RedeemBefore == nil || *tx.RedeemBefore != balance {
			t.Fatalf("transaction %d: chain break, before=%v want %d", i, tx.RedeemBefore, balance)
		}
		if tx.RedeemAfter != balance-tx.Amount {
			t.Fatalf("transaction %d: after=%d want %d", i, tx.RedeemAfter, balance-tx.Amount)
		}
		balance = tx.RedeemAfter
	}
	if balance != 0 {
		t.Fatalf("replayed chain ends at %d, want 0", balance)
	}
}

// TestRedemptionService_ConcurrentFullBalance races two redemptions of the
// entire balance: exactly one may win, the loser must see an insufficient
// balance, and the balance must never go negative.
func TestRedemptionService_ConcurrentFullBalance(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	ticket := domain.Ticket{
		ID:                "ticket-1",
		EventID:           "event-1",
		RedeemableBalance: 300,
		Status:            domain.TicketStatusIssued,
		QRToken:           "beef99887766",
		IssuedAt:          now,
	}
	store := newFakeTicketStore(ticket)
	txlog := &fakeTransactionLog{}
	svc := NewRedemptionService(store, txlog, &fakeAuditLog{}, newFakeEventLookup(testEvent), clock.NewFixed(now), WithRedeemRetries(20))

	results := make(chan error, 2)
	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			_, err := svc.Redeem(context.Background(), RedeemInput{TicketID: "ticket-1", Amount: 300})
			results <- err
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	var successes, insufficient int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one winner and one insufficient-balance loser, got %d/%d", successes, insufficient)
	}

	final, _ := store.GetTicket(context.Background(), "ticket-1")
	if final.RedeemableBalance != 0 {
		t.Fatalf("expected final balance 0, got %d", final.RedeemableBalance)
	}
	if len(txlog.byTicket("ticket-1")) != 1 {
		t.Fatalf("expected exactly one redeem transaction, got %d", len(txlog.byTicket("ticket-1")))
	}
}
