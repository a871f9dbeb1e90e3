package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
//
// No transition graph is enforced: any status may replace any other.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses lists every status in lifecycle order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	for _, known := range TicketStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// TicketCategory classifies what a ticket is about.
type TicketCategory string

const (
	TicketCategoryGeneral  TicketCategory = "general"
	TicketCategoryHardware TicketCategory = "hardware"
	TicketCategorySoftware TicketCategory = "software"
	TicketCategoryNetwork  TicketCategory = "network"
	TicketCategoryOther    TicketCategory = "other"
)

// Valid reports whether c is a known category.
func (c TicketCategory) Valid() bool {
	switch c {
	case TicketCategoryGeneral, TicketCategoryHardware, TicketCategorySoftware,
		TicketCategoryNetwork, TicketCategoryOther:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
//
// A ticket has exactly one identity channel: CreatedBy for tickets opened by
// an account, ClientEmail for tickets submitted through the public form.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Category    TicketCategory
	Status      TicketStatus
	Priority    TicketPriority
	CreatedBy   *string
	AssignedTo  *string
	IsPublic    bool
	ClientName  string
	ClientEmail string
	ClientPhone string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether the ticket was opened by the given user.
func (t *Ticket) OwnedBy(userID string) bool {
	return t != nil && t.CreatedBy != nil && *t.CreatedBy == userID
}

// ContactEmail returns the address notifications for this ticket go to when
// it was submitted anonymously.
func (t *Ticket) ContactEmail() string {
	if t == nil {
		return ""
	}
	return t.ClientEmail
}
