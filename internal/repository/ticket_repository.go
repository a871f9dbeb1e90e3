package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketFilter captures listing parameters. Nil fields do not filter.
type TicketFilter struct {
	CreatedBy  *string
	AssignedTo *string
	Category   *domain.TicketCategory
	Status     *domain.TicketStatus
}

// TicketPatch lists the admin-editable fields to change. Nil fields are left
// as stored. SetAssignee with a nil AssignedTo clears the assignee.
type TicketPatch struct {
	Title       *string
	Description *string
	Category    *domain.TicketCategory
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	SetAssignee bool
	AssignedTo  *string
}

// Empty reports whether the patch changes nothing.
func (p TicketPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.Status == nil && p.Priority == nil && !p.SetAssignee
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Patch applies the patch in one statement and returns the updated ticket
	// with the status it had before.
	Patch(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, domain.TicketStatus, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// ListByContact returns tickets whose client email matches, plus tickets
	// created by ownerID when it is set.
	ListByContact(ctx context.Context, email string, ownerID *string) ([]domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, category, status, priority, created_by, assigned_to,
               is_public, client_name, client_email, client_phone, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, category, status, priority, created_by, assigned_to,
            is_public, client_name, client_email, client_phone)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.Priority,
		ticket.CreatedBy,
		ticket.AssignedTo,
		ticket.IsPublic,
		ticket.ClientName,
		ticket.ClientEmail,
		ticket.ClientPhone,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return translate(err)
}

// Patch writes only the columns named in the patch, so concurrent updates to
// different fields do not overwrite each other. The locked subquery reads the
// previous status of the same row.
func (r *ticketRepository) Patch(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, domain.TicketStatus, error) {
	sets := []string{}
	args := []any{id}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.Priority != nil {
		set("priority", *patch.Priority)
	}
	if patch.SetAssignee {
		set("assigned_to", patch.AssignedTo)
	}
	sets = append(sets, "updated_at=NOW()")

	query := fmt.Sprintf(`
        UPDATE tickets t SET %s
        FROM (SELECT id, status FROM tickets WHERE id=$1 FOR UPDATE) prev
        WHERE t.id = prev.id
        RETURNING prev.status, %s`, strings.Join(sets, ", "), qualifiedTicketColumns("t"))

	var ticket domain.Ticket
	var previous domain.TicketStatus
	targets := append([]any{&previous}, ticketScanTargets(&ticket)...)
	if err := r.pool.QueryRow(ctx, query, args...).Scan(targets...); err != nil {
		return nil, "", translate(err)
	}
	return &ticket, previous, nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(ticketScanTargets(&ticket)...); err != nil {
		return nil, translate(err)
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC`,
		ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByContact(ctx context.Context, email string, ownerID *string) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets
             WHERE client_email=$1 OR ($2::uuid IS NOT NULL AND created_by=$2::uuid)
             ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, email, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int64, len(domain.TicketStatuses))
	for _, status := range domain.TicketStatuses {
		counts[status] = 0
	}
	for rows.Next() {
		var status domain.TicketStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func qualifiedTicketColumns(alias string) string {
	columns := strings.Split(ticketColumns, ",")
	for i, column := range columns {
		columns[i] = alias + "." + strings.TrimSpace(column)
	}
	return strings.Join(columns, ", ")
}

func ticketScanTargets(ticket *domain.Ticket) []any {
	return []any{
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.IsPublic,
		&ticket.ClientName,
		&ticket.ClientEmail,
		&ticket.ClientPhone,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(ticketScanTargets(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
