// Package auth implements the account lifecycle state machine and the
// bearer-token authentication gate.
package auth

import (
	"fmt"
	"time"

	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Role classifies a principal. The set is closed.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAuthor Role = "author"
	RoleViewer Role = "viewer"
)

// ParseRole validates a raw role value. Empty input defaults to viewer.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case "":
		return RoleViewer, nil
	case RoleAdmin, RoleAuthor, RoleViewer:
		return Role(raw), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", shared.ErrValidation, raw)
}

// Status is the account lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(raw), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", shared.ErrValidation, raw)
}

// CanTransitionTo reports whether the lifecycle state machine defines a
// transition from s to next. Only pending accounts move, and only to
// approved or rejected.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && (next == StatusApproved || next == StatusRejected)
}

// NeedsApproval reports whether registration under the role starts pending.
// Authors and admins require an admin decision; viewers are approved outright.
func NeedsApproval(role Role) bool {
	return role == RoleAdmin || role == RoleAuthor
}

// InitialStatus returns the lifecycle state assigned at registration.
func InitialStatus(role Role) Status {
	if NeedsApproval(role) {
		return StatusPending
	}
	return StatusApproved
}

// Principal is an authenticated account. The credential hash never leaves
// this package; Principal carries everything else.
type Principal struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	Avatar    string    `json:"avatar,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Bookmarks []int64   `json:"bookmarks,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CanAuthenticate reports whether the account may act on authenticated
// routes. Consulted by the authorization pipeline, not by token
// verification: an unapproved principal still resolves to an identity but
// is blocked downstream.
func (p *Principal) CanAuthenticate() bool {
	return p != nil && p.Status == StatusApproved
}
