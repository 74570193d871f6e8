package app

import (
	"context"

	"github.com/cimillas/festival-pos/internal/clock"
	"github.com/cimillas/festival-pos/internal/domain"
)

type EventRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) error
	GetEvent(ctx context.Context, id string) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	ListTicketsByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error)
	SumRedeemedByEvent(ctx context.Context, eventID string) (int, error)
}

// EventService covers the event CRUD around the redemption core: creating
// events and reporting per-event sales/redemption totals.
type EventService struct {
	repo  EventRepository
	clock clock.Clock
}

func NewEventService(repo EventRepository, clk clock.Clock) *EventService {
	return &EventService{
		repo:  repo,
		clock: clk,
	}
}

type CreateEventInput struct {
	Title    string
	Date     string
	Capacity int
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Title == "" {
		return domain.Event{}, domain.ErrEventTitleRequired
	}
	if in.Capacity < 0 {
		return domain.Event{}, domain.ErrInvalidCapacity
	}

	event := domain.Event{
		ID:        newID(),
		Title:     in.Title,
		Date:      in.Date,
		Capacity:  in.Capacity,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

type EventSummary struct {
	Event         domain.Event
	Tickets       []domain.Ticket
	TotalSales    int
	TotalRedeemed int
}

// GetEventSummary returns the event with its tickets, the gross ticket
// sales, and the total redeemed against the event so far.
func (s *EventService) GetEventSummary(ctx context.Context, eventID string) (EventSummary, error) {
	if eventID == "" {
		return EventSummary{}, domain.ErrInvalidID
	}

	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return EventSummary{}, err
	}
	tickets, err := s.repo.ListTicketsByEvent(ctx, eventID)
	if err != nil {
		return EventSummary{}, err
	}
	redeemed, err := s.repo.SumRedeemedByEvent(ctx, eventID)
	if err != nil {
		return EventSummary{}, err
	}

	totalSales := 0
	for _, t := range tickets {
		totalSales += t.Price
	}

	return EventSummary{
		Event:         event,
		Tickets:       tickets,
		TotalSales:    totalSales,
		TotalRedeemed: redeemed,
	}, nil
}
