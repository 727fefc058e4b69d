package posts

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-cms/inkwell/internal/platform/db"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Repository provides post persistence.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Post, int, error)
	FindByID(ctx context.Context, id int64) (*Post, error)
	FindBySlug(ctx context.Context, slug string) (*Post, error)
	Create(ctx context.Context, p Post) (*Post, error)
	Update(ctx context.Context, p Post) (*Post, error)
	Delete(ctx context.Context, id int64) error
	Owner(ctx context.Context, id int64) (int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
	IncrementViews(ctx context.Context, id int64) (int, error)
	IncrementLikes(ctx context.Context, id int64) (int, error)
}

const postColumns = `p.id, p.title, p.slug, p.content, p.excerpt, p.category_id, p.tags, p.featured_image, p.published, p.author_id, u.name, p.views, p.likes, p.created_at, p.updated_at`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.CategoryID, &p.Tags,
		&p.FeaturedImage, &p.Published, &p.AuthorID, &p.AuthorName, &p.Views, &p.Likes,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List uses a dynamically assembled query due to filter complexity.
func (r *repository) List(ctx context.Context, filter ListFilter) ([]Post, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filter.Published != nil {
		args = append(args, *filter.Published)
		where += ` AND p.published = $` + strconv.Itoa(len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where += ` AND p.category_id = $` + strconv.Itoa(len(args))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		where += ` AND $` + strconv.Itoa(len(args)) + ` = ANY(p.tags)`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (p.title ILIKE $` + n + ` OR p.content ILIKE $` + n + `)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM posts p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := `p.created_at DESC`
	if filter.Sort == "views" {
		orderBy = `p.views DESC`
	}

	pagination := shared.NewPagination(filter.Page, filter.Limit, total)
	args = append(args, pagination.PerPage, pagination.Offset())
	query := fmt.Sprintf(`
		SELECT %s FROM posts p
		JOIN users u ON u.id = p.author_id
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, postColumns, where, orderBy, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Post, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts p JOIN users u ON u.id = p.author_id WHERE p.id = $1`, id)
	return scanPost(row)
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*Post, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts p JOIN users u ON u.id = p.author_id WHERE p.slug = $1`, slug)
	return scanPost(row)
}

func (r *repository) Create(ctx context.Context, p Post) (*Post, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO posts (title, slug, content, excerpt, category_id, tags, featured_image, published, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		p.Title, p.Slug, p.Content, p.Excerpt, p.CategoryID, p.Tags, p.FeaturedImage, p.Published, p.AuthorID).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrConflict
		}
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *repository) Update(ctx context.Context, p Post) (*Post, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET title = $2, slug = $3, content = $4, excerpt = $5, category_id = $6,
		    tags = $7, featured_image = $8, published = $9, updated_at = now()
		WHERE id = $1`,
		p.ID, p.Title, p.Slug, p.Content, p.Excerpt, p.CategoryID, p.Tags, p.FeaturedImage, p.Published)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrConflict
		}
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.FindByID(ctx, p.ID)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
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
	err := r.pool.QueryRow(ctx, `SELECT author_id FROM posts WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return owner, nil
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *repository) IncrementViews(ctx context.Context, id int64) (int, error) {
	var views int
	err := r.pool.QueryRow(ctx, `UPDATE posts SET views = views + 1 WHERE id = $1 RETURNING views`, id).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return views, nil
}

func (r *repository) IncrementLikes(ctx context.Context, id int64) (int, error) {
	var likes int
	err := r.pool.QueryRow(ctx, `UPDATE posts SET likes = likes + 1 WHERE id = $1 RETURNING likes`, id).Scan(&likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return likes, nil
}
