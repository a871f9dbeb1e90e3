package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/service"
)

// AdminHandler serves dashboard counters and admin-composed mail.
type AdminHandler struct {
	stats  *service.StatsService
	notify *service.NotificationService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(stats *service.StatsService, notify *service.NotificationService) *AdminHandler {
	return &AdminHandler{stats: stats, notify: notify}
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewStatsResponse(stats))
}

// SendEmail handles POST /api/mail/send.
func (h *AdminHandler) SendEmail(c *fiber.Ctx) error {
	var req dto.SendEmailRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.notify.SendCustom(c.UserContext(), req.Email, req.Subject, req.HTML); err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, nil, "email sent")
}
