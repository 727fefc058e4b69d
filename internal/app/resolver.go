package app

import (
	"context"
	"fmt"

	"github.com/inkwell-cms/inkwell/internal/comments"
	"github.com/inkwell-cms/inkwell/internal/posts"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

// OwnershipResolver maps resource types to their owner lookups. It backs
// the ownership gate for routes that mutate owned resources.
type OwnershipResolver struct {
	Posts    posts.Repository
	Comments comments.Repository
}

// Owner returns the owning principal id for the given resource.
func (r OwnershipResolver) Owner(ctx context.Context, resourceType string, id int64) (int64, error) {
	switch resourceType {
	case "post":
		return r.Posts.Owner(ctx, id)
	case "comment":
		return r.Comments.Owner(ctx, id)
	default:
		return 0, fmt.Errorf("%w: unknown resource type %q", shared.ErrNotFound, resourceType)
	}
}
