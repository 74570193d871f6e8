package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cimillas/festival-pos/internal/app"
	"github.com/cimillas/festival-pos/internal/domain"
)

// TicketIssuer is the minimal interface needed to issue a ticket.
type TicketIssuer interface {
	IssueTicket(ctx context.Context, in app.IssueTicketInput) (domain.Ticket, error)
}

// TicketOperations covers lookup, redemption and history for issued tickets.
type TicketOperations interface {
	GetTicket(ctx context.Context, id string) (domain.Ticket, error)
	GetTicketByToken(ctx context.Context, token string) (domain.Ticket, error)
	Redeem(ctx context.Context, in app.RedeemInput) (app.RedeemResult, error)
	GetHistory(ctx context.Context, ticketID string) ([]domain.Transaction, error)
}

// HandleIssueTicket returns an HTTP handler for selling a ticket.
func HandleIssueTicket(svc TicketIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req issueTicketRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.EventID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "event_id is required")
			return
		}

		ticket, err := svc.IssueTicket(r.Context(), app.IssueTicketInput{
			EventID:        req.EventID,
			Buyer:          req.Buyer,
			Tier:           req.Tier,
			Price:          req.Price,
			InitialBalance: req.InitialBalance,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toTicketResponse(ticket))
	}
}

// HandleTicketRoutes dispatches the per-ticket endpoints:
//
//	GET  /tickets/{id}
//	GET  /tickets/{id}/transactions
//	POST /tickets/{id}/redeem
//	GET  /tickets/qr/{token}
//	POST /tickets/qr/{token}/redeem
func HandleTicketRoutes(svc TicketOperations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segments := splitTicketPath(r.URL.Path)
		if len(segments) == 0 {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		byToken := false
		ref := segments[0]
		if ref == "qr" {
			if len(segments) < 2 {
				writeError(w, http.StatusNotFound, codeNotFound, "not found")
				return
			}
			byToken = true
			ref = segments[1]
			segments = segments[1:]
		}

		switch {
		case len(segments) == 1:
			handleGetTicket(w, r, svc, ref, byToken)
		case len(segments) == 2 && segments[1] == "redeem":
			handleRedeem(w, r, svc, ref, byToken)
		case len(segments) == 2 && segments[1] == "transactions" && !byToken:
			handleHistory(w, r, svc, ref)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleGetTicket(w http.ResponseWriter, r *http.Request, svc TicketOperations, ref string, byToken bool) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	var (
		ticket domain.Ticket
		err    error
	)
	if byToken {
		ticket, err = svc.GetTicketByToken(r.Context(), ref)
	} else {
		ticket, err = svc.GetTicket(r.Context(), ref)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toTicketResponse(ticket))
}

func handleRedeem(w http.ResponseWriter, r *http.Request, svc TicketOperations, ref string, byToken bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	var req redeemRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	in := app.RedeemInput{Amount: req.Amount}
	if byToken {
		in.Token = ref
	} else {
		in.TicketID = ref
	}

	res, err := svc.Redeem(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := redeemResponse{
		TicketID:   res.Ticket.ID,
		NewBalance: res.NewBalance,
		Status:     string(res.Ticket.Status),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func handleHistory(w http.ResponseWriter, r *http.Request, svc TicketOperations, ticketID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	txs, err := svc.GetHistory(r.Context(), ticketID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, transactionResponse{
			ID:           tx.ID,
			Type:         string(tx.Type),
			TicketID:     tx.TicketID,
			EventID:      tx.EventID,
			Amount:       tx.Amount,
			RedeemBefore: tx.RedeemBefore,
			RedeemAfter:  tx.RedeemAfter,
			ProcessedAt:  tx.ProcessedAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func splitTicketPath(path string) []string {
	rest, ok := strings.CutPrefix(path, "/tickets/")
	if !ok {
		return nil
	}
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

type issueTicketRequest struct {
	EventID string `json:"event_id"`
	Buyer   string `json:"buyer"`
	Tier    string `json:"tier"`
	Price   int    `json:"price"`
	// initial_balance defaults to price when omitted.
	InitialBalance *int `json:"initial_balance"`
}

type redeemRequest struct {
	Amount int `json:"amount"`
}

type redeemResponse struct {
	TicketID   string `json:"ticket_id"`
	NewBalance int    `json:"new_balance"`
	Status     string `json:"status"`
}

type ticketResponse struct {
	ID                string    `json:"id"`
	EventID           string    `json:"event_id"`
	Buyer             string    `json:"buyer"`
	Tier              string    `json:"tier"`
	Price             int       `json:"price"`
	RedeemableBalance int       `json:"redeemable_balance"`
	Status            string    `json:"status"`
	QRToken           string    `json:"qr_token"`
	IssuedAt          time.Time `json:"issued_at"`
}

func toTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:                t.ID,
		EventID:           t.EventID,
		Buyer:             t.Buyer,
		Tier:              t.Tier,
		Price:             t.Price,
		RedeemableBalance: t.RedeemableBalance,
		Status:            string(t.Status),
		QRToken:           t.QRToken,
		IssuedAt:          t.IssuedAt,
	}
}

type transactionResponse struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	TicketID     string    `json:"ticket_id"`
	EventID      string    `json:"event_id"`
	Amount       int       `json:"amount"`
	RedeemBefore *int      `json:"redeem_before"`
	RedeemAfter  int       `json:"redeem_after"`
	ProcessedAt  time.Time `json:"processed_at"`
}
