package domain

import "time"

// Comment is a free-text note on a ticket. References to the ticket and
// author are not cascade-enforced.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
