package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusResolved   TicketStatus = "resolved"
)

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// Ticket is a support request filed by a customer.
type Ticket struct {
	ID           int64
	Title        string
	Description  string
	Status       TicketStatus
	UserID       int64
	AssignedToID *int64
	CreatedAt    time.Time
}

// NewTicket carries the fields of a ticket before an id is assigned.
type NewTicket struct {
	Title       string
	Description string
	UserID      int64
	Status      TicketStatus
	CreatedAt   time.Time
}

// TicketPatch lists the ticket fields that may change after creation.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *TicketStatus
}

// Apply merges the patch into t.
func (p TicketPatch) Apply(t *Ticket) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

// Clone returns a deep copy of t.
func (t Ticket) Clone() Ticket {
	if t.AssignedToID != nil {
		id := *t.AssignedToID
		t.AssignedToID = &id
	}
	return t
}
