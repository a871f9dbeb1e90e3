package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketUpdated EventType = "ticket_updated"
	EventCommentAdded  EventType = "comment_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, actorID *string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload. Public is set for tickets filed through the
// anonymous form.
type TicketCreatedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
	Public bool          `json:"public"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	Ticket    domain.Ticket       `json:"ticket"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// StatusChanged reports whether the update moved the ticket to a new status.
func (p TicketUpdatedPayload) StatusChanged() bool {
	return p.OldStatus != p.NewStatus
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	Comment    domain.Comment `json:"comment"`
	Ticket     domain.Ticket  `json:"ticket"`
	AuthorRole domain.Role    `json:"author_role"`
}
