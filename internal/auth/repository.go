package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-cms/inkwell/internal/platform/db"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Repository defines principal persistence. Lookups exclude the credential
// hash unless the caller explicitly asks for it (login path only).
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Principal, error)
	FindByEmail(ctx context.Context, email string) (*Principal, error)
	FindByEmailWithHash(ctx context.Context, email string) (*Principal, string, error)
	Create(ctx context.Context, p Principal, passwordHash string) (*Principal, error)
}

const principalColumns = `id, name, email, role, status, avatar, bio, bookmarks, created_at, updated_at`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanPrincipal(row pgx.Row) (*Principal, error) {
	var p Principal
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.Status, &p.Avatar, &p.Bio, &p.Bookmarks, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Principal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+principalColumns+` FROM users WHERE id = $1`, id)
	return scanPrincipal(row)
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Principal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+principalColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanPrincipal(row)
}

func (r *repository) FindByEmailWithHash(ctx context.Context, email string) (*Principal, string, error) {
	var p Principal
	var hash string
	row := r.pool.QueryRow(ctx, `SELECT `+principalColumns+`, password_hash FROM users WHERE lower(email) = lower($1)`, email)
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.Status, &p.Avatar, &p.Bio, &p.Bookmarks, &p.CreatedAt, &p.UpdatedAt, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", shared.ErrNotFound
		}
		return nil, "", err
	}
	return &p, hash, nil
}

func (r *repository) Create(ctx context.Context, p Principal, passwordHash string) (*Principal, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role, status, avatar, bio, bookmarks)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)
		RETURNING `+principalColumns,
		p.Name, p.Email, passwordHash, p.Role, p.Status, p.Avatar, p.Bio, p.Bookmarks)
	created, err := scanPrincipal(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrConflict
		}
		return nil, err
	}
	return created, nil
}
