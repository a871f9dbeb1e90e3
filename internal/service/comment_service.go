package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// CommentService manages ticket comments.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// CommentImportInput is one row of a bulk import.
type CommentImportInput struct {
	TicketID string
	Message  string
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{
		comments:   deps.CommentRepo,
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create adds a comment to a ticket the caller may read.
func (s *CommentService) Create(ctx context.Context, session *domain.Session, ticketID, message string) (*domain.Comment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if strings.TrimSpace(ticketID) == "" || message == "" {
		return nil, apperrors.NewValidationError("ticket_id and message are required", nil)
	}
	ticket, err := s.readableTicket(ctx, session, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{TicketID: ticket.ID, AuthorID: session.UserID, Message: message}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, storeError(err, "comment")
	}
	if s.dispatcher != nil {
		event := events.New(events.EventCommentAdded, strPtr(session.UserID), events.CommentAddedPayload{
			Comment:    *comment,
			Ticket:     *ticket,
			AuthorRole: session.Role,
		})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return comment, nil
}

// List returns comments. With a ticket id the ticket must be readable;
// without one admins see every comment and customers their own.
func (s *CommentService) List(ctx context.Context, session *domain.Session, ticketID *string) ([]domain.Comment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	filter := repository.CommentFilter{}
	if ticketID != nil {
		ticket, err := s.readableTicket(ctx, session, *ticketID)
		if err != nil {
			return nil, err
		}
		filter.TicketID = &ticket.ID
	} else if !session.IsAdmin() {
		filter.AuthorID = strPtr(session.UserID)
	}

	comments, err := s.comments.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "comment")
	}
	return comments, nil
}

// Get returns a comment visible to the caller.
func (s *CommentService) Get(ctx context.Context, session *domain.Session, id string) (*domain.Comment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	comment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsAdmin() || comment.AuthorID == session.UserID {
		return comment, nil
	}
	ticket, err := s.tickets.GetByID(ctx, comment.TicketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewForbidden("access denied")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !CanReadTicket(session, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return comment, nil
}

// Update replaces the message. Only the author or an admin may edit.
func (s *CommentService) Update(ctx context.Context, session *domain.Session, id, message string) (*domain.Comment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	comment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModifyComment(session, comment) {
		return nil, apperrors.NewForbidden("access denied")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message cannot be empty", nil)
	}
	comment.Message = message
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, storeError(err, "comment")
	}
	return comment, nil
}

// Delete removes a comment. Only the author or an admin may delete.
func (s *CommentService) Delete(ctx context.Context, session *domain.Session, id string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	comment, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !canModifyComment(session, comment) {
		return apperrors.NewForbidden("access denied")
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return storeError(err, "comment")
	}
	return nil
}

// Import stores a batch of admin comments. Every row is validated first and
// the batch is written in one transaction, so either all rows land or none.
func (s *CommentService) Import(ctx context.Context, session *domain.Session, rows []CommentImportInput) (int, error) {
	if err := requireAdmin(session); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, apperrors.NewValidationError("no comments provided", nil)
	}

	known := make(map[string]bool)
	batch := make([]*domain.Comment, 0, len(rows))
	for i, row := range rows {
		message := strings.TrimSpace(row.Message)
		if message == "" {
			return 0, apperrors.NewValidationError("message is required", map[string]any{"index": i})
		}
		ticketID, err := parseID(row.TicketID, "ticket")
		if err != nil {
			return 0, apperrors.NewValidationError("invalid ticket id", map[string]any{"index": i})
		}
		if !known[ticketID] {
			if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return 0, apperrors.NewValidationError("ticket not found", map[string]any{"index": i})
				}
				return 0, apperrors.NewInternalError(err)
			}
			known[ticketID] = true
		}
		batch = append(batch, &domain.Comment{TicketID: ticketID, AuthorID: session.UserID, Message: message})
	}

	if err := s.comments.CreateMany(ctx, batch); err != nil {
		return 0, storeError(err, "comment")
	}
	return len(batch), nil
}

func canModifyComment(session *domain.Session, comment *domain.Comment) bool {
	return session.IsAdmin() || comment.AuthorID == session.UserID
}

func (s *CommentService) readableTicket(ctx context.Context, session *domain.Session, ticketID string) (*domain.Ticket, error) {
	ticketID, err := parseID(ticketID, "ticket")
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	if !CanReadTicket(session, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

func (s *CommentService) load(ctx context.Context, id string) (*domain.Comment, error) {
	id, err := parseID(id, "comment")
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "comment")
	}
	return comment, nil
}
