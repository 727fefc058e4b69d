package comments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkwell-cms/inkwell/internal/shared"
)

// PostChecker reports whether the referenced post exists.
type PostChecker interface {
	Exists(ctx context.Context, postID int64) (bool, error)
}

// Service implements comment moderation workflows.
type Service struct {
	repo   Repository
	posts  PostChecker
	logger *slog.Logger
}

func NewService(repo Repository, posts PostChecker, logger *slog.Logger) *Service {
	return &Service{repo: repo, posts: posts, logger: logger}
}

// CreateInput carries a new comment submission.
type CreateInput struct {
	PostID   int64
	AuthorID int64
	Content  string
	ParentID *int64
}

// Create stores a comment awaiting moderation. The target post must exist,
// and a reply must reference a comment on the same post.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Comment, error) {
	ok, err := s.posts.Exists(ctx, in.PostID)
	if err != nil {
		return nil, fmt.Errorf("check post: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: post %d", shared.ErrNotFound, in.PostID)
	}

	if in.ParentID != nil {
		parent, err := s.repo.FindByID(ctx, *in.ParentID)
		if err != nil {
			return nil, fmt.Errorf("load parent comment: %w", err)
		}
		if parent.PostID != in.PostID {
			return nil, fmt.Errorf("%w: parent comment belongs to another post", shared.ErrInvalidOperation)
		}
	}

	created, err := s.repo.Create(ctx, Comment{
		PostID:   in.PostID,
		AuthorID: in.AuthorID,
		Content:  in.Content,
		ParentID: in.ParentID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("comment submitted", "comment_id", created.ID, "post_id", created.PostID)
	return created, nil
}

// Approve publishes a pending comment.
func (s *Service) Approve(ctx context.Context, id int64) (*Comment, error) {
	return s.repo.Approve(ctx, id)
}

// Delete removes a comment together with its replies.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ListForPost returns approved comments on a post, newest first.
func (s *Service) ListForPost(ctx context.Context, postID int64, page, limit int) ([]Comment, shared.Pagination, error) {
	approved := true
	items, total, err := s.repo.List(ctx, ListFilter{PostID: &postID, Approved: &approved, Page: page, Limit: limit})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, limit, total), nil
}

// ListAll returns comments across all posts, optionally filtered by
// moderation state. Used by the moderation dashboard.
func (s *Service) ListAll(ctx context.Context, filter ListFilter) ([]Comment, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, filter.Limit, total), nil
}
