package app

import (
	"fmt"

	"github.com/cimillas/festival-pos/internal/domain"
)

// VerifyLedger replays a ticket's transactions in processed order and
// checks that the before/after chain is unbroken and that folding the
// deltas reproduces the ticket's live balance. It is a reconciliation
// helper for operators chasing a reported logging failure.
func VerifyLedger(ticket domain.Ticket, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return fmt.Errorf("ticket %s: no transactions recorded", ticket.ID)
	}
	if txs[0].Type != domain.TransactionTypeSale {
		return fmt.Errorf("ticket %s: first transaction is %s, want sale", ticket.ID, txs[0].Type)
	}
	if txs[0].RedeemBefore != nil {
		return fmt.Errorf("ticket %s: sale transaction carries a prior balance", ticket.ID)
	}

	balance := txs[0].RedeemAfter
	for i, tx := range txs[1:] {
		if tx.Type != domain.TransactionTypeRedeem {
			return fmt.Errorf("ticket %s: transaction %d is %s, want redeem", ticket.ID, i+1, tx.Type)
		}
		if tx.RedeemBefore == nil {
			return fmt.Errorf("ticket %s: redeem transaction %s missing prior balance", ticket.ID, tx.ID)
		}
		if *tx.RedeemBefore != balance {
			return fmt.Errorf("ticket %s: transaction %s chain break: before=%d, want %d", ticket.ID, tx.ID, *tx.RedeemBefore, balance)
		}
		if tx.RedeemAfter != *tx.RedeemBefore-tx.Amount {
			return fmt.Errorf("ticket %s: transaction %s after=%d, want %d", ticket.ID, tx.ID, tx.RedeemAfter, *tx.RedeemBefore-tx.Amount)
		}
		if tx.RedeemAfter < 0 {
			return fmt.Errorf("ticket %s: transaction %s drove balance negative", ticket.ID, tx.ID)
		}
		balance = tx.RedeemAfter
	}

	if balance != ticket.RedeemableBalance {
		return fmt.Errorf("ticket %s: replayed balance %d, live balance %d", ticket.ID, balance, ticket.RedeemableBalance)
	}
	return nil
}
