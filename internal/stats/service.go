// Package stats aggregates dashboard counters across the content domains.
package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// Dashboard summarises the platform for the admin overview.
type Dashboard struct {
	TotalUsers      int64   `json:"totalUsers"`
	PendingUsers    int64   `json:"pendingUsers"`
	TotalPosts      int64   `json:"totalPosts"`
	PublishedPosts  int64   `json:"publishedPosts"`
	TotalComments   int64   `json:"totalComments"`
	PendingComments int64   `json:"pendingComments"`
	TotalCategories int64   `json:"totalCategories"`
	TotalViews      int64   `json:"totalViews"`
	TotalLikes      int64   `json:"totalLikes"`
	TopPosts        []Entry `json:"topPosts"`
	GeneratedAt     string  `json:"generatedAt"`
}

// Entry is a post leaderboard row.
type Entry struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Views int    `json:"views"`
	Likes int    `json:"likes"`
}

const queryTimeout = 5 * time.Second

// Service computes dashboard aggregates directly against the database.
// The counters touch independent tables, so they run concurrently.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewService(pool *pgxpool.Pool, logger *slog.Logger) *Service {
	return &Service{pool: pool, logger: logger}
}

func (s *Service) count(ctx context.Context, query string, dest *int64) func() error {
	return func() error {
		return s.pool.QueryRow(ctx, query).Scan(dest)
	}
}

// Dashboard gathers all counters in parallel and fails as a unit.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(s.count(ctx, `SELECT count(*) FROM users`, &d.TotalUsers))
	g.Go(s.count(ctx, `SELECT count(*) FROM users WHERE status = 'pending'`, &d.PendingUsers))
	g.Go(s.count(ctx, `SELECT count(*) FROM posts`, &d.TotalPosts))
	g.Go(s.count(ctx, `SELECT count(*) FROM posts WHERE published`, &d.PublishedPosts))
	g.Go(s.count(ctx, `SELECT count(*) FROM comments`, &d.TotalComments))
	g.Go(s.count(ctx, `SELECT count(*) FROM comments WHERE NOT approved`, &d.PendingComments))
	g.Go(s.count(ctx, `SELECT count(*) FROM categories`, &d.TotalCategories))
	g.Go(s.count(ctx, `SELECT coalesce(sum(views), 0) FROM posts`, &d.TotalViews))
	g.Go(s.count(ctx, `SELECT coalesce(sum(likes), 0) FROM posts`, &d.TotalLikes))
	g.Go(func() error {
		rows, err := s.pool.Query(ctx, `
			SELECT id, title, views, likes FROM posts
			WHERE published
			ORDER BY views DESC
			LIMIT 5`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var e Entry
			if err := rows.Scan(&e.ID, &e.Title, &e.Views, &e.Likes); err != nil {
				return err
			}
			d.TopPosts = append(d.TopPosts, e)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	d.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	return &d, nil
}
