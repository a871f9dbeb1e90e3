package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	TicketID string `json:"ticket_id" validate:"required"`
	Message  string `json:"message" validate:"required"`
}

// UpdateCommentRequest payload. Only the message is editable.
type UpdateCommentRequest struct {
	Message string `json:"message" validate:"required"`
}

// ImportCommentItem is one row of a bulk import.
type ImportCommentItem struct {
	TicketID string `json:"ticket_id" validate:"required"`
	Message  string `json:"message" validate:"required"`
}

// ImportCommentsRequest payload for the bulk import.
type ImportCommentsRequest struct {
	Comments []ImportCommentItem `json:"comments" validate:"required,min=1,dive"`
}

// ToInput converts the request into service input.
func (r ImportCommentsRequest) ToInput() []service.CommentImportInput {
	out := make([]service.CommentImportInput, 0, len(r.Comments))
	for _, c := range r.Comments {
		out = append(out, service.CommentImportInput{TicketID: c.TicketID, Message: c.Message})
	}
	return out
}

// ImportCommentsResponse reports the imported row count.
type ImportCommentsResponse struct {
	Imported int `json:"imported"`
}

// CommentResponse is the JSON form of a comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TicketID:  c.TicketID,
		AuthorID:  c.AuthorID,
		Message:   c.Message,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewCommentResponses maps a slice of comments.
func NewCommentResponses(comments []domain.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, NewCommentResponse(&comments[i]))
	}
	return out
}
