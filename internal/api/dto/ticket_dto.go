package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

// CreateTicketRequest payload for signed-in users.
type CreateTicketRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// ToInput converts the request into service input.
func (r CreateTicketRequest) ToInput() service.TicketCreateInput {
	return service.TicketCreateInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    domain.TicketCategory(r.Category),
		Priority:    domain.TicketPriority(r.Priority),
	}
}

// PublicTicketRequest payload for the anonymous ticket form.
type PublicTicketRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// ToInput converts the request into service input.
func (r PublicTicketRequest) ToInput() service.PublicTicketInput {
	return service.PublicTicketInput{
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Title:       r.Title,
		Description: r.Description,
		Category:    domain.TicketCategory(r.Category),
		Priority:    domain.TicketPriority(r.Priority),
	}
}

// UpdateTicketRequest lists the fields an admin may change. Anything else in
// the body is ignored by the decoder.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssignedTo  *string `json:"assigned_to"`
}

// ToInput converts the request into service input.
func (r UpdateTicketRequest) ToInput() service.TicketUpdateInput {
	in := service.TicketUpdateInput{
		Title:       r.Title,
		Description: r.Description,
		AssignedTo:  r.AssignedTo,
	}
	if r.Category != nil {
		v := domain.TicketCategory(*r.Category)
		in.Category = &v
	}
	if r.Status != nil {
		v := domain.TicketStatus(*r.Status)
		in.Status = &v
	}
	if r.Priority != nil {
		v := domain.TicketPriority(*r.Priority)
		in.Priority = &v
	}
	return in
}

// TicketResponse is the JSON form of a ticket.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	CreatedBy   *string               `json:"created_by,omitempty"`
	AssignedTo  *string               `json:"assigned_to,omitempty"`
	IsPublic    bool                  `json:"is_public"`
	ClientName  string                `json:"client_name,omitempty"`
	ClientEmail string                `json:"client_email,omitempty"`
	ClientPhone string                `json:"client_phone,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		IsPublic:    t.IsPublic,
		ClientName:  t.ClientName,
		ClientEmail: t.ClientEmail,
		ClientPhone: t.ClientPhone,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTicketResponses maps a slice of tickets.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// PublicTicketResponse acknowledges an anonymous submission.
type PublicTicketResponse struct {
	TicketID string `json:"ticket_id"`
}
