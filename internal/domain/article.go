package domain

import "time"

// Article is a knowledge-base entry authored by an agent.
// Content is stored as given; it may contain markup.
type Article struct {
	ID          int64
	Title       string
	Content     string
	CreatedByID int64
	CreatedAt   time.Time
}

// NewArticle carries the fields of an article before an id is assigned.
type NewArticle struct {
	Title       string
	Content     string
	CreatedByID int64
	CreatedAt   time.Time
}
