package events

import (
	"time"

	"github.com/supportdesk/support-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered      EventType = "user_registered"
	EventProfileUpdated      EventType = "profile_updated"
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventArticlePublished    EventType = "article_published"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserPayload carries the full user record for mail delivery.
type UserPayload struct {
	User domain.User `json:"-"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID int64  `json:"ticket_id"`
	Title    string `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketID  int64               `json:"ticket_id"`
	OwnerID   int64               `json:"owner_id"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// ArticlePublishedPayload payload.
type ArticlePublishedPayload struct {
	ArticleID int64  `json:"article_id"`
	Title     string `json:"title"`
}
