package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/service"
)

// CommentsHandler exposes comment endpoints.
type CommentsHandler struct {
	comments *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(comments *service.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

// List handles GET /api/comments.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	comments, err := h.comments.List(c.UserContext(), currentSession(c), optionalQuery(c, "ticket_id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewCommentResponses(comments))
}

// Create handles POST /api/comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.Create(c.UserContext(), currentSession(c), req.TicketID, req.Message)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewCommentResponse(comment))
}

// Import handles POST /api/comments/import.
func (h *CommentsHandler) Import(c *fiber.Ctx) error {
	var req dto.ImportCommentsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	n, err := h.comments.Import(c.UserContext(), currentSession(c), req.ToInput())
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.ImportCommentsResponse{Imported: n})
}

// Get handles GET /api/comments/:id.
func (h *CommentsHandler) Get(c *fiber.Ctx) error {
	comment, err := h.comments.Get(c.UserContext(), currentSession(c), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewCommentResponse(comment))
}

// Update handles PUT /api/comments/:id.
func (h *CommentsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.Update(c.UserContext(), currentSession(c), c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewCommentResponse(comment))
}

// Delete handles DELETE /api/comments/:id.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	if err := h.comments.Delete(c.UserContext(), currentSession(c), c.Params("id")); err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, nil, "comment deleted")
}
