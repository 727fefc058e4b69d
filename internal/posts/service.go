package posts

import (
	"context"
	"errors"

	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Service handles post business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries a post creation request.
type CreateInput struct {
	Title         string
	Content       string
	Excerpt       string
	CategoryID    *int64
	Tags          []string
	FeaturedImage string
	Published     *bool
}

// Create inserts a post owned by the acting principal.
func (s *Service) Create(ctx context.Context, authorID int64, in CreateInput) (*Post, error) {
	published := true
	if in.Published != nil {
		published = *in.Published
	}
	return s.repo.Create(ctx, Post{
		Title:         in.Title,
		Slug:          shared.Slugify(in.Title),
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		CategoryID:    in.CategoryID,
		Tags:          in.Tags,
		FeaturedImage: in.FeaturedImage,
		Published:     published,
		AuthorID:      authorID,
	})
}

// UpdateInput carries a partial post update; nil fields are left unchanged.
type UpdateInput struct {
	Title         *string
	Content       *string
	Excerpt       *string
	CategoryID    *int64
	Tags          []string
	FeaturedImage *string
	Published     *bool
}

// Update applies a partial update. The ownership gate has already run by
// the time this executes; the service does not re-check.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil && *in.Title != "" {
		post.Title = *in.Title
		post.Slug = shared.Slugify(*in.Title)
	}
	if in.Content != nil && *in.Content != "" {
		post.Content = *in.Content
	}
	if in.Excerpt != nil {
		post.Excerpt = *in.Excerpt
	}
	if in.CategoryID != nil {
		post.CategoryID = in.CategoryID
	}
	if in.Tags != nil {
		post.Tags = in.Tags
	}
	if in.FeaturedImage != nil {
		post.FeaturedImage = *in.FeaturedImage
	}
	if in.Published != nil {
		post.Published = *in.Published
	}
	return s.repo.Update(ctx, *post)
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns posts matching the filter with pagination metadata.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Post, shared.Pagination, error) {
	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return posts, shared.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get resolves a post by numeric id or slug. Only a missing id falls back
// to the slug lookup; a storage failure surfaces as-is.
func (s *Service) Get(ctx context.Context, identifier string) (*Post, error) {
	if id, ok := parseID(identifier); ok {
		post, err := s.repo.FindByID(ctx, id)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	return s.repo.FindBySlug(ctx, identifier)
}

// View increments and returns the view counter.
func (s *Service) View(ctx context.Context, id int64) (int, error) {
	return s.repo.IncrementViews(ctx, id)
}

// Like increments and returns the like counter.
func (s *Service) Like(ctx context.Context, id int64) (int, error) {
	return s.repo.IncrementLikes(ctx, id)
}

func parseID(s string) (int64, bool) {
	var id int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		id = id*10 + int64(r-'0')
	}
	return id, s != ""
}
