// Package storage defines the persistence contract shared by the route,
// auth and notification layers. Implementations live in the memory and
// postgres subpackages.
package storage

import (
	"context"

	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/session"
)

// Storage manages users, tickets and articles. Each collection has its own
// id sequence starting at 1. Every method is safe for concurrent use and
// applies atomically; a failed write leaves the collection unchanged.
//
// Read methods report absence as a nil result with a nil error.
type Storage interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// CreateUser rejects a taken username or email with
	// domain.ErrUsernameTaken or domain.ErrEmailTaken.
	CreateUser(ctx context.Context, user domain.NewUser) (*domain.User, error)
	// UpdateUser returns domain.ErrNotFound for an unknown id and
	// domain.ErrEmailTaken when the new email belongs to another user.
	UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)

	// GetTickets returns every ticket when userID is nil, else the tickets
	// owned by *userID, in creation order.
	GetTickets(ctx context.Context, userID *int64) ([]domain.Ticket, error)
	CreateTicket(ctx context.Context, ticket domain.NewTicket) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, id int64, patch domain.TicketPatch) (*domain.Ticket, error)

	// GetArticles returns every article when query is empty, else the
	// articles whose title or content contains query under Unicode case
	// folding ("STRASSE" matches "straße").
	GetArticles(ctx context.Context, query string) ([]domain.Article, error)
	CreateArticle(ctx context.Context, article domain.NewArticle) (*domain.Article, error)

	// SessionStore exposes the login session store to the auth layer.
	SessionStore() session.Store
	Close() error
}

// AgentPromoter is implemented by engines that let an operator grant the
// agent role. It returns domain.ErrNotFound for an unknown username.
type AgentPromoter interface {
	PromoteAgent(ctx context.Context, username string) (*domain.User, error)
}
