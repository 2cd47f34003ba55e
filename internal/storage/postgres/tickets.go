package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/supportdesk/support-portal/internal/domain"
)

const ticketColumns = `id, title, description, status, user_id, assigned_to_id, created_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.UserID,
		&ticket.AssignedToID,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *Store) GetTickets(ctx context.Context, userID *int64) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets`
	args := []any{}
	if userID != nil {
		query += ` WHERE user_id=$1`
		args = append(args, *userID)
	}
	query += ` ORDER BY id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (s *Store) CreateTicket(ctx context.Context, in domain.NewTicket) (*domain.Ticket, error) {
	status := in.Status
	if status == "" {
		status = domain.TicketStatusOpen
	}
	const query = `
        INSERT INTO tickets (title, description, status, user_id, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + ticketColumns
	return scanTicket(s.pool.QueryRow(ctx, query,
		in.Title,
		in.Description,
		status,
		in.UserID,
		in.CreatedAt,
	))
}

func (s *Store) UpdateTicket(ctx context.Context, id int64, patch domain.TicketPatch) (*domain.Ticket, error) {
	const query = `
        UPDATE tickets SET
            title       = COALESCE($2, title),
            description = COALESCE($3, description),
            status      = COALESCE($4, status)
        WHERE id=$1
        RETURNING ` + ticketColumns
	var status *string
	if patch.Status != nil {
		v := string(*patch.Status)
		status = &v
	}
	ticket, err := scanTicket(s.pool.QueryRow(ctx, query, id, patch.Title, patch.Description, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return ticket, err
}
