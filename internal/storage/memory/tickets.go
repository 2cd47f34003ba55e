package memory

import (
	"context"

	"github.com/supportdesk/support-portal/internal/domain"
)

func (s *Store) GetTickets(_ context.Context, userID *int64) ([]domain.Ticket, error) {
	s.tickets.mu.RLock()
	defer s.tickets.mu.RUnlock()

	result := make([]domain.Ticket, 0, len(s.tickets.rows))
	for _, t := range s.tickets.rows {
		if userID != nil && t.UserID != *userID {
			continue
		}
		result = append(result, t.Clone())
	}
	return result, nil
}

func (s *Store) CreateTicket(_ context.Context, in domain.NewTicket) (*domain.Ticket, error) {
	s.tickets.mu.Lock()
	defer s.tickets.mu.Unlock()

	ticket := domain.Ticket{
		ID:          s.tickets.allocate(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		UserID:      in.UserID,
		CreatedAt:   in.CreatedAt,
	}
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusOpen
	}
	s.tickets.rows = append(s.tickets.rows, ticket)

	out := ticket.Clone()
	return &out, nil
}

func (s *Store) UpdateTicket(_ context.Context, id int64, patch domain.TicketPatch) (*domain.Ticket, error) {
	s.tickets.mu.Lock()
	defer s.tickets.mu.Unlock()

	current, ok := s.tickets.row(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	patch.Apply(current)

	out := current.Clone()
	return &out, nil
}
