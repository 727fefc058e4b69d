package categories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Service orchestrates hierarchy operations and holds the invariants:
// slug uniqueness, derived levels, cycle safety, and the has-children
// delete guard.
type Service struct {
	repo   Repository
	cache  *TreeCache
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, cache *TreeCache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// CreateInput carries a category creation request.
type CreateInput struct {
	Name        string
	Description string
	Parent      *int64
	Order       int
	Icon        string
	Color       string
}

// Create inserts a node. Level is derived from the parent at creation time;
// a duplicate slug surfaces as Conflict, a missing parent as NotFound.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Node, error) {
	node := Node{
		Name:        in.Name,
		Slug:        shared.Slugify(in.Name),
		Description: in.Description,
		Parent:      in.Parent,
		Order:       in.Order,
		Icon:        in.Icon,
		Color:       in.Color,
		IsActive:    true,
	}
	if node.Color == "" {
		node.Color = DefaultColor
	}
	if in.Parent != nil {
		parent, err := s.repo.FindByID(ctx, *in.Parent)
		if err != nil {
			return nil, err
		}
		node.Level = parent.Level + 1
	}
	created, err := s.repo.Create(ctx, node)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return created, nil
}

// OptionalParent distinguishes an absent parent field from an explicit
// null: absent leaves the parent unchanged, null reparents to root.
type OptionalParent struct {
	Set   bool
	Value *int64
}

// UnmarshalJSON records presence alongside the value.
func (o *OptionalParent) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

// UpdateInput carries a partial update; nil pointer fields are left
// unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Parent      OptionalParent
	Order       *int
	Icon        *string
	Color       *string
	IsActive    *bool
}

// Update applies a partial update. When the parent changes, the ancestor
// chain of the proposed parent is walked first; any occurrence of the node
// itself fails with CircularReference before anything is written, and the
// level is recomputed on success.
//
// The walk and the write are two store round-trips, not one transaction: a
// concurrent reparent of an ancestor between them can reintroduce a cycle.
// That race is accepted and documented rather than locked away.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Node, error) {
	node, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Parent.Set && !sameParent(node.Parent, in.Parent.Value) {
		if in.Parent.Value != nil {
			if err := s.checkCycle(ctx, id, *in.Parent.Value); err != nil {
				return nil, err
			}
			parent, err := s.repo.FindByID(ctx, *in.Parent.Value)
			if err != nil {
				return nil, err
			}
			node.Level = parent.Level + 1
		} else {
			node.Level = 0
		}
		node.Parent = in.Parent.Value
	}

	if in.Name != nil && *in.Name != "" {
		node.Name = *in.Name
		node.Slug = shared.Slugify(*in.Name)
	}
	if in.Description != nil {
		node.Description = *in.Description
	}
	if in.Order != nil {
		node.Order = *in.Order
	}
	if in.Icon != nil {
		node.Icon = *in.Icon
	}
	if in.Color != nil && *in.Color != "" {
		node.Color = *in.Color
	}
	if in.IsActive != nil {
		node.IsActive = *in.IsActive
	}

	updated, err := s.repo.Update(ctx, *node)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return updated, nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// checkCycle walks the ancestor chain starting at the proposed parent. The
// loop is bounded by the total node count so a pre-existing corrupt cycle
// cannot walk forever.
func (s *Service) checkCycle(ctx context.Context, nodeID, proposedParent int64) error {
	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return err
	}
	current := proposedParent
	for i := 0; i <= total; i++ {
		if current == nodeID {
			return shared.ErrCircularReference
		}
		ancestor, err := s.repo.FindByID(ctx, current)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if ancestor.Parent == nil {
			return nil
		}
		current = *ancestor.Parent
	}
	return shared.ErrCircularReference
}

// Delete removes a node unless it still has children.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return shared.ErrHasChildren
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// List returns all nodes flat, ordered by sort key then name.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]Node, error) {
	return s.repo.List(ctx, includeInactive)
}

// GetBySlug returns a single node with its direct children attached.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*TreeNode, error) {
	node, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	out := &TreeNode{Node: *node, Children: []*TreeNode{}}
	for i := range all {
		if all[i].Parent != nil && *all[i].Parent == node.ID {
			out.Children = append(out.Children, &TreeNode{Node: all[i], Children: []*TreeNode{}})
		}
	}
	return out, nil
}

// Tree materializes the forest as a fresh snapshot: one pass grouping
// nodes by parent, then children attached from the root set. Pure over the
// snapshot, so two calls without intervening writes are structurally
// identical.
func (s *Service) Tree(ctx context.Context, activeOnly bool) ([]*TreeNode, error) {
	if cached, ok := s.cache.Get(ctx, activeOnly); ok {
		return cached, nil
	}

	nodes, err := s.repo.List(ctx, !activeOnly)
	if err != nil {
		return nil, err
	}

	byParent := make(map[int64][]*TreeNode)
	var roots []*TreeNode
	index := make(map[int64]*TreeNode, len(nodes))
	for i := range nodes {
		tn := &TreeNode{Node: nodes[i], Children: []*TreeNode{}}
		index[tn.ID] = tn
		if tn.Parent == nil {
			roots = append(roots, tn)
		} else {
			byParent[*tn.Parent] = append(byParent[*tn.Parent], tn)
		}
	}
	// Attach iteratively; depth is bounded by the node count, so no
	// recursion over uncontrolled input.
	stack := make([]*TreeNode, 0, len(index))
	stack = append(stack, roots...)
	for len(stack) > 0 {
		tn := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		children := byParent[tn.ID]
		sort.SliceStable(children, func(i, j int) bool {
			if children[i].Order != children[j].Order {
				return children[i].Order < children[j].Order
			}
			return children[i].Name < children[j].Name
		})
		tn.Children = children
		stack = append(stack, children...)
	}
	if roots == nil {
		roots = []*TreeNode{}
	}

	s.cache.Set(ctx, activeOnly, roots)
	return roots, nil
}

// OrderPair assigns a sibling sort key to a node.
type OrderPair struct {
	ID    int64 `json:"id" validate:"required"`
	Order int   `json:"order"`
}

// Reorder applies sibling order updates independently per pair. A failing
// pair is reported but does not roll back or block the others.
func (s *Service) Reorder(ctx context.Context, pairs []OrderPair) (failed []int64, err error) {
	var errs []error
	for _, pair := range pairs {
		if updateErr := s.repo.UpdateOrder(ctx, pair.ID, pair.Order); updateErr != nil {
			failed = append(failed, pair.ID)
			errs = append(errs, fmt.Errorf("category %d: %w", pair.ID, updateErr))
			if s.logger != nil {
				s.logger.Warn("reorder pair failed", slog.Int64("id", pair.ID), slog.Any("error", updateErr))
			}
		}
	}
	if len(errs) > 0 {
		s.cache.Invalidate(ctx)
		return failed, errors.Join(errs...)
	}
	s.cache.Invalidate(ctx)
	return nil, nil
}
