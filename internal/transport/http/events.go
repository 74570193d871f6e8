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

// EventService is the minimal interface needed for the event endpoints.
type EventService interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEventSummary(ctx context.Context, eventID string) (app.EventSummary, error)
}

// HandleEvents returns an HTTP handler for event creation and listing.
func HandleEvents(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			events, err := svc.ListEvents(r.Context())
			if err != nil {
				writeServiceError(w, err)
				return
			}
			resp := make([]eventResponse, 0, len(events))
			for _, event := range events {
				resp = append(resp, toEventResponse(event))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		case http.MethodPost:
			var req createEventRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			event, err := svc.CreateEvent(r.Context(), app.CreateEventInput{
				Title:    req.Title,
				Date:     req.Date,
				Capacity: req.Capacity,
			})
			if err != nil {
				writeServiceError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(toEventResponse(event))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleEventSummary returns an HTTP handler for the event detail view:
// the event, its tickets, and sales/redemption totals.
func HandleEventSummary(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		eventID, ok := parseEventPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		summary, err := svc.GetEventSummary(r.Context(), eventID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		tickets := make([]ticketResponse, 0, len(summary.Tickets))
		for _, t := range summary.Tickets {
			tickets = append(tickets, toTicketResponse(t))
		}
		resp := eventSummaryResponse{
			Event:         toEventResponse(summary.Event),
			Tickets:       tickets,
			TotalSales:    summary.TotalSales,
			TotalRedeemed: summary.TotalRedeemed,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func parseEventPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/events/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

type createEventRequest struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Capacity int    `json:"capacity"`
}

type eventResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

func toEventResponse(e domain.Event) eventResponse {
	return eventResponse{
		ID:        e.ID,
		Title:     e.Title,
		Date:      e.Date,
		Capacity:  e.Capacity,
		CreatedAt: e.CreatedAt,
	}
}

type eventSummaryResponse struct {
	Event         eventResponse    `json:"event"`
	Tickets       []ticketResponse `json:"tickets"`
	TotalSales    int              `json:"total_sales"`
	TotalRedeemed int              `json:"total_redeemed"`
}
