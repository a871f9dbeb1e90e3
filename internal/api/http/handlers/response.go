package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

func respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(dto.Envelope{Success: true, Data: data})
}

func respondMessage(c *fiber.Ctx, status int, data interface{}, message string) error {
	return c.Status(status).JSON(dto.Envelope{Success: true, Data: data, Message: message})
}

// parseBody decodes the JSON body into req and validates it.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid request payload", nil)
	}
	return dto.Validate(req)
}

// currentSession returns the caller's session or nil for anonymous requests.
func currentSession(c *fiber.Ctx) *domain.Session {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return nil
	}
	return session
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	return &v
}
