package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

// TicketsHandler exposes ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// List handles GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	var filter service.TicketListFilter
	if v := optionalQuery(c, "category"); v != nil {
		category := domain.TicketCategory(*v)
		filter.Category = &category
	}
	if v := optionalQuery(c, "status"); v != nil {
		status := domain.TicketStatus(*v)
		filter.Status = &status
	}
	filter.Owner = optionalQuery(c, "owner")

	tickets, err := h.tickets.List(c.UserContext(), currentSession(c), filter)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewTicketResponses(tickets))
}

// ListAll handles GET /api/tickets/admin/all.
func (h *TicketsHandler) ListAll(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewTicketResponses(tickets))
}

// Create handles POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Create(c.UserContext(), currentSession(c), req.ToInput())
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewTicketResponse(ticket))
}

// CreatePublic handles POST /api/tickets/public.
func (h *TicketsHandler) CreatePublic(c *fiber.Ctx) error {
	var req dto.PublicTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.CreatePublic(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusCreated, dto.PublicTicketResponse{TicketID: ticket.ID}, "ticket submitted")
}

// MyTickets handles GET /api/tickets/my-tickets?email=.
func (h *TicketsHandler) MyTickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.LookupByContact(c.UserContext(), currentSession(c), c.Query("email"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewTicketResponses(tickets))
}

// Get handles GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), currentSession(c), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewTicketResponse(ticket))
}

// Update handles PUT /api/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Update(c.UserContext(), currentSession(c), c.Params("id"), req.ToInput())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewTicketResponse(ticket))
}

// Delete handles DELETE /api/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.tickets.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, nil, "ticket deleted")
}
