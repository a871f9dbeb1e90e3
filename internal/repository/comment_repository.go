package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CommentFilter narrows comment listings. Nil fields do not filter.
type CommentFilter struct {
	TicketID *string
	AuthorID *string
}

// CommentRepository manages ticket comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	// CreateMany inserts all comments in one transaction.
	CreateMany(ctx context.Context, comments []*domain.Comment) error
	Update(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	List(ctx context.Context, filter CommentFilter) ([]domain.Comment, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

const insertComment = `
        INSERT INTO comments (ticket_id, author_id, message)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.pool.QueryRow(ctx, insertComment,
		comment.TicketID,
		comment.AuthorID,
		comment.Message,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) CreateMany(ctx context.Context, comments []*domain.Comment) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, comment := range comments {
			if err := tx.QueryRow(ctx, insertComment,
				comment.TicketID,
				comment.AuthorID,
				comment.Message,
			).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	const query = `UPDATE comments SET message=$1, updated_at=NOW() WHERE id=$2 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query, comment.Message, comment.ID).Scan(&comment.UpdatedAt)
	return translate(err)
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	const query = `
        SELECT id, ticket_id, author_id, message, created_at, updated_at
        FROM comments WHERE id=$1`
	var c domain.Comment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.TicketID, &c.AuthorID, &c.Message, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *commentRepository) List(ctx context.Context, filter CommentFilter) ([]domain.Comment, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.TicketID != nil {
		args = append(args, *filter.TicketID)
		clauses = append(clauses, fmt.Sprintf("ticket_id=$%d", len(args)))
	}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		clauses = append(clauses, fmt.Sprintf("author_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`
        SELECT id, ticket_id, author_id, message, created_at, updated_at
        FROM comments WHERE %s ORDER BY created_at DESC`, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.Message, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *commentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comments`).Scan(&n)
	return n, err
}
