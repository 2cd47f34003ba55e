package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/events"
	"github.com/supportdesk/support-portal/internal/storage"
	"github.com/supportdesk/support-portal/pkg/errorutil"
)

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// TicketStatusInput describes an agent status change.
type TicketStatusInput struct {
	Status domain.TicketStatus `json:"status" validate:"required,ticketstatus"`
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	store      storage.Storage
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(store storage.Storage, dispatcher events.Dispatcher, logger *zap.Logger) *TicketService {
	return &TicketService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns every ticket for agents and the caller's own tickets otherwise.
func (s *TicketService) List(ctx context.Context, caller domain.User) ([]domain.Ticket, error) {
	if caller.IsAgent {
		return s.store.GetTickets(ctx, nil)
	}
	id := caller.ID
	return s.store.GetTickets(ctx, &id)
}

// Create files a new open ticket owned by userID.
func (s *TicketService) Create(ctx context.Context, userID int64, input TicketCreateInput) (*domain.Ticket, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	ticket, err := s.store.CreateTicket(ctx, domain.NewTicket{
		Title:       input.Title,
		Description: input.Description,
		UserID:      userID,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventTicketCreated,
		ActorID: userID,
		Payload: events.TicketCreatedPayload{TicketID: ticket.ID, Title: ticket.Title},
	})
	return ticket, nil
}

// UpdateStatus moves a ticket to a new status. Unknown ids yield
// domain.ErrNotFound.
func (s *TicketService) UpdateStatus(ctx context.Context, agentID, ticketID int64, input TicketStatusInput) (*domain.Ticket, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	status := input.Status
	ticket, err := s.store.UpdateTicket(ctx, ticketID, domain.TicketPatch{Status: &status})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errorutil.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventTicketStatusChanged,
		ActorID: agentID,
		Payload: events.TicketStatusChangedPayload{
			TicketID:  ticket.ID,
			OwnerID:   ticket.UserID,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}
