package dto

import (
	"time"

	"github.com/supportdesk/support-portal/internal/domain"
)

// TicketResponse is the public view of a ticket.
type TicketResponse struct {
	ID           int64               `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Status       domain.TicketStatus `json:"status"`
	UserID       int64               `json:"userId"`
	AssignedToID *int64              `json:"assignedToId"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		UserID:       t.UserID,
		AssignedToID: t.AssignedToID,
		CreatedAt:    t.CreatedAt,
	}
}

// NewTicketList maps a slice of tickets, never returning nil.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// ArticleResponse is the public view of an article.
type ArticleResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedByID int64     `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewArticleResponse maps a domain article.
func NewArticleResponse(a *domain.Article) ArticleResponse {
	return ArticleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		CreatedByID: a.CreatedByID,
		CreatedAt:   a.CreatedAt,
	}
}

// NewArticleList maps a slice of articles, never returning nil.
func NewArticleList(articles []domain.Article) []ArticleResponse {
	out := make([]ArticleResponse, 0, len(articles))
	for i := range articles {
		out = append(out, NewArticleResponse(&articles[i]))
	}
	return out
}
