// Package posts implements content-item CRUD. It is mechanical plumbing
// around the store; the interesting access decisions happen in the
// authorization pipeline, which this package feeds through its ownership
// resolver.
package posts

import "time"

// Post is a content item. Author is the owner reference compared by the
// ownership gate.
type Post struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"content"`
	Excerpt       string    `json:"excerpt"`
	CategoryID    *int64    `json:"category"`
	Tags          []string  `json:"tags"`
	FeaturedImage string    `json:"featuredImage,omitempty"`
	Published     bool      `json:"published"`
	AuthorID      int64     `json:"author"`
	AuthorName    string    `json:"authorName,omitempty"`
	Views         int       `json:"views"`
	Likes         int       `json:"likes"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ListFilter narrows a post listing.
type ListFilter struct {
	CategoryID *int64
	Tag        string
	Search     string
	Published  *bool
	Sort       string
	Page       int
	Limit      int
}
