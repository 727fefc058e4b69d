package comments

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Repository provides comment persistence.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Comment, int, error)
	FindByID(ctx context.Context, id int64) (*Comment, error)
	Create(ctx context.Context, c Comment) (*Comment, error)
	Approve(ctx context.Context, id int64) (*Comment, error)
	Delete(ctx context.Context, id int64) error
	Owner(ctx context.Context, id int64) (int64, error)
}

const commentColumns = `id, post_id, author_id, content, parent_id, approved, created_at, updated_at`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanComment(row pgx.Row) (*Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.ParentID, &c.Approved, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Comment, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.PostID != nil {
		args = append(args, *filter.PostID)
		where += ` AND post_id = $` + strconv.Itoa(len(args))
	}
	if filter.Approved != nil {
		args = append(args, *filter.Approved)
		where += ` AND approved = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM comments`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pagination := shared.NewPagination(filter.Page, filter.Limit, total)
	args = append(args, pagination.PerPage, pagination.Offset())
	query := fmt.Sprintf(`
		SELECT %s FROM comments
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, commentColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Comment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	return scanComment(row)
}

func (r *repository) Create(ctx context.Context, c Comment) (*Comment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO comments (post_id, author_id, content, parent_id, approved)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+commentColumns,
		c.PostID, c.AuthorID, c.Content, c.ParentID, c.Approved)
	return scanComment(row)
}

func (r *repository) Approve(ctx context.Context, id int64) (*Comment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE comments SET approved = true, updated_at = now()
		WHERE id = $1
		RETURNING `+commentColumns, id)
	return scanComment(row)
}

// Delete removes the comment and its direct replies.
func (r *repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE parent_id = $1`, id); err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Owner(ctx context.Context, id int64) (int64, error) {
	var owner int64
	err := r.pool.QueryRow(ctx, `SELECT author_id FROM comments WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return owner, nil
}
