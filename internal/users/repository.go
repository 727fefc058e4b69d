package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Repository provides account administration persistence.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]User, int, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	UpdateStatus(ctx context.Context, id int64, status auth.Status) (*User, error)
	Update(ctx context.Context, u User) (*User, error)
	Delete(ctx context.Context, id int64) error
	SetBookmarks(ctx context.Context, id int64, bookmarks []int64) (*User, error)
}

const userColumns = `id, name, email, role, status, avatar, bio, bookmarks, created_at, updated_at`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.Avatar, &u.Bio, &u.Bookmarks, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]User, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Role != "" {
		args = append(args, filter.Role)
		where += ` AND role = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR email ILIKE $` + n + `)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pagination := shared.NewPagination(filter.Page, filter.Limit, total)
	args = append(args, pagination.PerPage, pagination.Offset())
	query := fmt.Sprintf(`
		SELECT %s FROM users
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, userColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *u)
	}
	return out, total, rows.Err()
}

func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status auth.Status) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, status)
	return scanUser(row)
}

func (r *repository) Update(ctx context.Context, u User) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $2, role = $3, status = $4, avatar = $5, bio = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		u.ID, u.Name, u.Role, u.Status, u.Avatar, u.Bio)
	return scanUser(row)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetBookmarks(ctx context.Context, id int64, bookmarks []int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET bookmarks = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, bookmarks)
	return scanUser(row)
}
