package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/mailer"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// NotificationService turns domain events and admin requests into email.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     mailer.Sender
	renderer   *mailer.Renderer
	users      repository.UserRepository
	metrics    *observability.Metrics
	logger     *zap.Logger
	publicURL  string
	fromName   string
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Sender     mailer.Sender
	Renderer   *mailer.Renderer
	UserRepo   repository.UserRepository
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(cfg config.Config, deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		sender:     deps.Sender,
		renderer:   deps.Renderer,
		users:      deps.UserRepo,
		metrics:    deps.Metrics,
		logger:     logger,
		publicURL:  cfg.App.PublicURL,
		fromName:   cfg.Mail.FromName,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketUpdated, n.handleTicketUpdated)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
}

// SendWelcome greets a newly registered user.
func (n *NotificationService) SendWelcome(ctx context.Context, user *domain.User) error {
	return n.deliver(ctx, mailer.TemplateWelcome, user.Email, "Welcome to the support desk", map[string]interface{}{
		"name":      user.Name,
		"email":     user.Email,
		"login_url": n.link("/login"),
	})
}

// SendCustom delivers an admin-authored message. The HTML is sanitised first.
func (n *NotificationService) SendCustom(ctx context.Context, to, subject, html string) error {
	to = normalizeEmail(to)
	subject = strings.TrimSpace(subject)
	if to == "" || subject == "" || strings.TrimSpace(html) == "" {
		return apperrors.NewValidationError("email, subject and html are required", nil)
	}
	body := mailer.SanitizeHTML(html)
	if strings.TrimSpace(body) == "" {
		return apperrors.NewValidationError("html has no allowed content", nil)
	}
	err := n.deliver(ctx, mailer.TemplateCustom, to, subject, map[string]interface{}{
		"body":      body,
		"from_name": n.fromName,
	})
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok || !payload.Public {
		return nil
	}
	ticket := payload.Ticket
	return n.deliver(ctx, mailer.TemplateTicketCreated, ticket.ContactEmail(), "We received your ticket: "+ticket.Title, map[string]interface{}{
		"name":       ticket.ClientName,
		"title":      ticket.Title,
		"ticket_id":  ticket.ID,
		"category":   string(ticket.Category),
		"priority":   string(ticket.Priority),
		"status":     string(ticket.Status),
		"status_url": n.link("/my-tickets"),
	})
}

func (n *NotificationService) handleTicketUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	if !ok || !payload.StatusChanged() {
		return nil
	}
	name, email, err := n.contactFor(ctx, &payload.Ticket)
	if err != nil || email == "" {
		return err
	}
	return n.deliver(ctx, mailer.TemplateTicketStatus, email, "Ticket status updated: "+payload.Ticket.Title, map[string]interface{}{
		"name":       name,
		"title":      payload.Ticket.Title,
		"old_status": string(payload.OldStatus),
		"new_status": string(payload.NewStatus),
		"status_url": n.link("/my-tickets"),
	})
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok || payload.AuthorRole != domain.RoleAdmin {
		return nil
	}
	if payload.Ticket.OwnedBy(payload.Comment.AuthorID) {
		return nil
	}
	name, email, err := n.contactFor(ctx, &payload.Ticket)
	if err != nil || email == "" {
		return err
	}
	return n.deliver(ctx, mailer.TemplateCommentAdded, email, "New reply on your ticket: "+payload.Ticket.Title, map[string]interface{}{
		"name":       name,
		"title":      payload.Ticket.Title,
		"message":    payload.Comment.Message,
		"status_url": n.link("/my-tickets"),
	})
}

// contactFor resolves who hears about a ticket: the anonymous submitter, or
// the account that created it.
func (n *NotificationService) contactFor(ctx context.Context, ticket *domain.Ticket) (string, string, error) {
	if email := ticket.ContactEmail(); email != "" {
		return ticket.ClientName, email, nil
	}
	if ticket.CreatedBy == nil || n.users == nil {
		return "", "", nil
	}
	user, err := n.users.GetByID(ctx, *ticket.CreatedBy)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", "", nil
		}
		return "", "", err
	}
	return user.Name, user.Email, nil
}

func (n *NotificationService) deliver(ctx context.Context, tpl mailer.Template, to, subject string, data map[string]interface{}) error {
	if n.sender == nil || n.renderer == nil {
		return errors.New("mail delivery is not configured")
	}
	if to == "" {
		return mailer.ErrNoRecipients
	}
	html, err := n.renderer.Render(tpl, data)
	if err == nil {
		err = n.sender.Send(ctx, mailer.Message{To: []string{to}, Subject: subject, HTML: html})
	}
	n.metrics.RecordEmail(string(tpl), err)
	if err != nil {
		return fmt.Errorf("send %s email: %w", tpl, err)
	}
	n.logger.Debug("email sent", zap.String("template", string(tpl)), zap.String("to", to))
	return nil
}

func (n *NotificationService) link(path string) string {
	if n.publicURL == "" {
		return ""
	}
	return n.publicURL + path
}
