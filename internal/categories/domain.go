// Package categories maintains the classification-node forest: parent
// links, derived levels, sibling ordering, and cycle safety.
package categories

import "time"

// Node is a category entry in the classification hierarchy. Parent is nil
// for roots; Level is derived and always equals the parent's level plus one.
type Node struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Parent      *int64    `json:"parent"`
	Level       int       `json:"level"`
	Order       int       `json:"order"`
	Icon        string    `json:"icon,omitempty"`
	Color       string    `json:"color"`
	IsActive    bool      `json:"isActive"`
	PostCount   int       `json:"postsCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TreeNode is a node with its children attached. Produced as a fresh
// snapshot, never a live view.
type TreeNode struct {
	Node
	Children []*TreeNode `json:"children"`
}

// DefaultColor is assigned when a category is created without one.
const DefaultColor = "#1e3a8a"
