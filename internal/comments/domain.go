// Package comments implements comment CRUD and moderation.
package comments

import "time"

// Comment belongs to a post; AuthorID is the owner reference compared by
// the ownership gate. Comments start unapproved and become visible after
// moderation.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post"`
	AuthorID  int64     `json:"author"`
	Content   string    `json:"content"`
	ParentID  *int64    `json:"parentComment"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListFilter narrows a comment listing.
type ListFilter struct {
	PostID   *int64
	Approved *bool
	Page     int
	Limit    int
}
