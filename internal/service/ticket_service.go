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

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes an authenticated ticket submission.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
}

// PublicTicketInput describes an anonymous ticket submission.
type PublicTicketInput struct {
	Name        string
	Email       string
	Phone       string
	Title       string
	Description string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
}

// TicketListFilter narrows ticket listings. Owner is honoured for admins only.
type TicketListFilter struct {
	Category *domain.TicketCategory
	Status   *domain.TicketStatus
	Owner    *string
}

// TicketUpdateInput carries the mutable ticket fields. Nil means unchanged;
// an empty AssignedTo clears the assignee.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Category    *domain.TicketCategory
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	AssignedTo  *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create files a ticket on behalf of the signed-in user.
func (s *TicketService) Create(ctx context.Context, session *domain.Session, in TicketCreateInput) (*domain.Ticket, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ticket, err := newTicket(in.Title, in.Description, in.Category, in.Priority)
	if err != nil {
		return nil, err
	}
	ticket.CreatedBy = strPtr(session.UserID)

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, storeError(err, "ticket")
	}
	s.publishEvent(ctx, events.New(events.EventTicketCreated, strPtr(session.UserID), events.TicketCreatedPayload{Ticket: *ticket}))
	return ticket, nil
}

// CreatePublic files a ticket from the anonymous form.
func (s *TicketService) CreatePublic(ctx context.Context, in PublicTicketInput) (*domain.Ticket, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	phone := strings.TrimSpace(in.Phone)
	if name == "" || email == "" || phone == "" || strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, apperrors.NewValidationError("name, email, phone, title and description are required", nil)
	}
	ticket, err := newTicket(in.Title, in.Description, in.Category, in.Priority)
	if err != nil {
		return nil, err
	}
	ticket.IsPublic = true
	ticket.ClientName = name
	ticket.ClientEmail = email
	ticket.ClientPhone = phone

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, storeError(err, "ticket")
	}
	s.publishEvent(ctx, events.New(events.EventTicketCreated, nil, events.TicketCreatedPayload{Ticket: *ticket, Public: true}))
	return ticket, nil
}

func newTicket(title, description string, category domain.TicketCategory, priority domain.TicketPriority) (*domain.Ticket, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}
	if category == "" {
		category = domain.TicketCategoryGeneral
	}
	if !category.Valid() {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": category})
	}
	if priority == "" {
		priority = domain.TicketPriorityLow
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	return &domain.Ticket{
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		Status:      domain.TicketStatusOpen,
	}, nil
}

// Get returns a ticket the caller may read: admins read everything,
// customers only the tickets they created.
func (s *TicketService) Get(ctx context.Context, session *domain.Session, id string) (*domain.Ticket, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanReadTicket(session, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// CanReadTicket reports whether session may see ticket.
func CanReadTicket(session *domain.Session, ticket *domain.Ticket) bool {
	if session.IsAdmin() {
		return true
	}
	return session.Authenticated() && ticket.OwnedBy(session.UserID)
}

// List returns the caller's tickets, or every ticket for admins.
func (s *TicketService) List(ctx context.Context, session *domain.Session, filter TicketListFilter) ([]domain.Ticket, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if filter.Category != nil && !filter.Category.Valid() {
		return nil, apperrors.NewValidationError("invalid category", nil)
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", nil)
	}

	repoFilter := repository.TicketFilter{Category: filter.Category, Status: filter.Status}
	if session.IsAdmin() {
		if filter.Owner != nil {
			owner, err := parseID(*filter.Owner, "user")
			if err != nil {
				return nil, err
			}
			repoFilter.CreatedBy = &owner
		}
	} else {
		repoFilter.CreatedBy = strPtr(session.UserID)
	}

	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	return tickets, nil
}

// ListAll returns every ticket without filtering.
func (s *TicketService) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	return tickets, nil
}

// LookupByContact finds tickets filed under email. A signed-in caller asking
// for their own address also gets the tickets they created while signed in.
func (s *TicketService) LookupByContact(ctx context.Context, session *domain.Session, email string) ([]domain.Ticket, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.NewValidationError("email is required", nil)
	}
	var owner *string
	if session.Authenticated() && normalizeEmail(session.Email) == email {
		owner = strPtr(session.UserID)
	}
	tickets, err := s.tickets.ListByContact(ctx, email, owner)
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	return tickets, nil
}

// Update applies the allowed field changes. Only admins may update tickets.
// Only the fields present in the input are written.
func (s *TicketService) Update(ctx context.Context, session *domain.Session, id string, in TicketUpdateInput) (*domain.Ticket, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	id, err := parseID(id, "ticket")
	if err != nil {
		return nil, err
	}

	var patch repository.TicketPatch
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title cannot be empty", nil)
		}
		patch.Title = &title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, apperrors.NewValidationError("description cannot be empty", nil)
		}
		patch.Description = &description
	}
	if in.Category != nil {
		if !in.Category.Valid() {
			return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": *in.Category})
		}
		patch.Category = in.Category
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *in.Status})
		}
		patch.Status = in.Status
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *in.Priority})
		}
		patch.Priority = in.Priority
	}
	if in.AssignedTo != nil {
		assignee, err := s.resolveAssignee(ctx, *in.AssignedTo)
		if err != nil {
			return nil, err
		}
		patch.SetAssignee = true
		patch.AssignedTo = assignee
	}

	if patch.Empty() {
		return s.load(ctx, id)
	}
	ticket, oldStatus, err := s.tickets.Patch(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	s.publishEvent(ctx, events.New(events.EventTicketUpdated, strPtr(session.UserID), events.TicketUpdatedPayload{
		Ticket:    *ticket,
		OldStatus: oldStatus,
		NewStatus: ticket.Status,
	}))
	return ticket, nil
}

func (s *TicketService) resolveAssignee(ctx context.Context, userID string) (*string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	invalid := apperrors.NewValidationError("assigned_to must reference an admin user", nil)
	userID, err := parseID(userID, "user")
	if err != nil {
		return nil, invalid
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !user.IsAdmin() {
		return nil, invalid
	}
	return &user.ID, nil
}

// Delete removes a ticket. Its comments are left in place.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	id, err := parseID(id, "ticket")
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return storeError(err, "ticket")
	}
	return nil
}

func (s *TicketService) load(ctx context.Context, id string) (*domain.Ticket, error) {
	id, err := parseID(id, "ticket")
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
