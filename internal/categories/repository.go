package categories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-cms/inkwell/internal/platform/db"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Repository provides category-node persistence. A node's parent/level
// update is a single row write; the store's per-row atomicity is what the
// level invariant relies on under concurrency.
type Repository interface {
	List(ctx context.Context, includeInactive bool) ([]Node, error)
	FindByID(ctx context.Context, id int64) (*Node, error)
	FindBySlug(ctx context.Context, slug string) (*Node, error)
	Create(ctx context.Context, n Node) (*Node, error)
	Update(ctx context.Context, n Node) (*Node, error)
	Delete(ctx context.Context, id int64) error
	CountChildren(ctx context.Context, id int64) (int, error)
	CountAll(ctx context.Context) (int, error)
	UpdateOrder(ctx context.Context, id int64, order int) error
}

const nodeColumns = `c.id, c.name, c.slug, c.description, c.parent_id, c.level, c.sort_order, c.icon, c.color, c.is_active, c.created_at, c.updated_at`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanNode(row pgx.Row, withCount bool) (*Node, error) {
	var n Node
	dest := []any{&n.ID, &n.Name, &n.Slug, &n.Description, &n.Parent, &n.Level, &n.Order, &n.Icon, &n.Color, &n.IsActive, &n.CreatedAt, &n.UpdatedAt}
	if withCount {
		dest = append(dest, &n.PostCount)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *repository) List(ctx context.Context, includeInactive bool) ([]Node, error) {
	query := `
		SELECT ` + nodeColumns + `, count(p.id)
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
	`
	if !includeInactive {
		query += ` WHERE c.is_active`
	}
	query += `
		GROUP BY c.id
		ORDER BY c.sort_order, c.name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows, true)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *n)
	}
	return nodes, rows.Err()
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Node, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+nodeColumns+` FROM categories c WHERE c.id = $1`, id)
	return scanNode(row, false)
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*Node, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+nodeColumns+` FROM categories c WHERE c.slug = $1`, slug)
	return scanNode(row, false)
}

func (r *repository) Create(ctx context.Context, n Node) (*Node, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name, slug, description, parent_id, level, sort_order, icon, color, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+nodeColumns,
		n.Name, n.Slug, n.Description, n.Parent, n.Level, n.Order, n.Icon, n.Color, n.IsActive)
	created, err := scanNode(row, false)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrConflict
		}
		return nil, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, n Node) (*Node, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, parent_id = $5, level = $6,
		    sort_order = $7, icon = $8, color = $9, is_active = $10, updated_at = now()
		WHERE id = $1
		RETURNING `+nodeColumns,
		n.ID, n.Name, n.Slug, n.Description, n.Parent, n.Level, n.Order, n.Icon, n.Color, n.IsActive)
	updated, err := scanNode(row, false)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrConflict
		}
		return nil, err
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CountChildren(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM categories WHERE parent_id = $1`, id).Scan(&count)
	return count, err
}

func (r *repository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM categories`).Scan(&count)
	return count, err
}

func (r *repository) UpdateOrder(ctx context.Context, id int64, order int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE categories SET sort_order = $2, updated_at = now() WHERE id = $1`, id, order)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
