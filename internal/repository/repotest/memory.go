// Package repotest provides in-memory repository implementations that follow
// the Postgres repositories' contracts, for use in tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

// clock hands out strictly increasing timestamps so created_at ordering is
// deterministic within a test.
type clock struct {
	mu   sync.Mutex
	last time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := time.Now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

// Users is an in-memory repository.UserRepository.
type Users struct {
	mu    sync.Mutex
	clock clock
	rows  map[string]domain.User
	// Err, when set, is returned by every call.
	Err error
}

// NewUsers returns an empty store.
func NewUsers() *Users {
	return &Users{rows: make(map[string]domain.User)}
}

var _ repository.UserRepository = (*Users)(nil)

func (r *Users) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, existing := range r.rows {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.clock.now()
	user.UpdatedAt = user.CreatedAt
	r.rows[user.ID] = *user
	return nil
}

func (r *Users) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	stored, ok := r.rows[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.rows {
		if id != user.ID && existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	hash := stored.PasswordHash
	stored = *user
	stored.PasswordHash = hash
	stored.UpdatedAt = r.clock.now()
	user.UpdatedAt = stored.UpdatedAt
	r.rows[user.ID] = stored
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.PasswordHash = ""
	return &u, nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := r.GetCredentialsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (r *Users) GetCredentialsByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.rows {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]domain.User, 0, len(r.rows))
	for _, u := range r.rows {
		u.PasswordHash = ""
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Users) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *Users) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return int64(len(r.rows)), nil
}

// Tickets is an in-memory repository.TicketRepository.
type Tickets struct {
	mu    sync.Mutex
	clock clock
	rows  map[string]domain.Ticket
	Err   error
}

// NewTickets returns an empty store.
func NewTickets() *Tickets {
	return &Tickets{rows: make(map[string]domain.Ticket)}
}

var _ repository.TicketRepository = (*Tickets)(nil)

func (r *Tickets) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = r.clock.now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.rows[ticket.ID] = *ticket
	return nil
}

func (r *Tickets) Patch(_ context.Context, id string, patch repository.TicketPatch) (*domain.Ticket, domain.TicketStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, "", r.Err
	}
	stored, ok := r.rows[id]
	if !ok {
		return nil, "", repository.ErrNotFound
	}
	previous := stored.Status
	if patch.Title != nil {
		stored.Title = *patch.Title
	}
	if patch.Description != nil {
		stored.Description = *patch.Description
	}
	if patch.Category != nil {
		stored.Category = *patch.Category
	}
	if patch.Status != nil {
		stored.Status = *patch.Status
	}
	if patch.Priority != nil {
		stored.Priority = *patch.Priority
	}
	if patch.SetAssignee {
		stored.AssignedTo = patch.AssignedTo
	}
	stored.UpdatedAt = r.clock.now()
	r.rows[id] = stored
	out := stored
	return &out, previous, nil
}

func (r *Tickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	t, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *Tickets) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return r.collect(func(t domain.Ticket) bool {
		if filter.CreatedBy != nil && (t.CreatedBy == nil || *t.CreatedBy != *filter.CreatedBy) {
			return false
		}
		if filter.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *filter.AssignedTo) {
			return false
		}
		if filter.Category != nil && t.Category != *filter.Category {
			return false
		}
		if filter.Status != nil && t.Status != *filter.Status {
			return false
		}
		return true
	})
}

func (r *Tickets) ListByContact(_ context.Context, email string, ownerID *string) ([]domain.Ticket, error) {
	return r.collect(func(t domain.Ticket) bool {
		if t.ClientEmail == email {
			return true
		}
		return ownerID != nil && t.OwnedBy(*ownerID)
	})
}

func (r *Tickets) collect(keep func(domain.Ticket) bool) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []domain.Ticket
	for _, t := range r.rows {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Tickets) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *Tickets) CountByStatus(_ context.Context) (map[domain.TicketStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	counts := make(map[domain.TicketStatus]int64, len(domain.TicketStatuses))
	for _, status := range domain.TicketStatuses {
		counts[status] = 0
	}
	for _, t := range r.rows {
		counts[t.Status]++
	}
	return counts, nil
}

// Comments is an in-memory repository.CommentRepository.
type Comments struct {
	mu    sync.Mutex
	clock clock
	rows  map[string]domain.Comment
	Err   error
}

// NewComments returns an empty store.
func NewComments() *Comments {
	return &Comments{rows: make(map[string]domain.Comment)}
}

var _ repository.CommentRepository = (*Comments)(nil)

func (r *Comments) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.insert(comment)
	return nil
}

func (r *Comments) CreateMany(_ context.Context, comments []*domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, c := range comments {
		r.insert(c)
	}
	return nil
}

func (r *Comments) insert(comment *domain.Comment) {
	comment.ID = uuid.NewString()
	comment.CreatedAt = r.clock.now()
	comment.UpdatedAt = comment.CreatedAt
	r.rows[comment.ID] = *comment
}

func (r *Comments) Update(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	stored, ok := r.rows[comment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Message = comment.Message
	stored.UpdatedAt = r.clock.now()
	comment.UpdatedAt = stored.UpdatedAt
	r.rows[comment.ID] = stored
	return nil
}

func (r *Comments) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	c, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *Comments) List(_ context.Context, filter repository.CommentFilter) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []domain.Comment
	for _, c := range r.rows {
		if filter.TicketID != nil && c.TicketID != *filter.TicketID {
			continue
		}
		if filter.AuthorID != nil && c.AuthorID != *filter.AuthorID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Comments) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *Comments) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return int64(len(r.rows)), nil
}
