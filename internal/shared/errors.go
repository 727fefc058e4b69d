// Package shared holds the error taxonomy and request-scoped helpers used
// across the access-control and content packages.
package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated covers missing, malformed, expired credentials and
	// credentials whose principal no longer exists. Callers never learn which.
	ErrUnauthenticated = errors.New("not authorized to access this route")
	// ErrInvalidCredentials indicates a failed login attempt. Collapsed into
	// ErrUnauthenticated at the HTTP boundary.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)

	// ErrForbidden is the base kind for authorization failures.
	ErrForbidden = errors.New("forbidden")
	// ErrPendingApproval rejects principals whose account is not approved.
	ErrPendingApproval = fmt.Errorf("%w: account is pending approval", ErrForbidden)
	// ErrRoleNotAllowed rejects principals whose role is not on a route's allow-list.
	ErrRoleNotAllowed = fmt.Errorf("%w: role not authorized for this route", ErrForbidden)
	// ErrPermissionDenied rejects principals lacking a required capability.
	ErrPermissionDenied = fmt.Errorf("%w: permission denied", ErrForbidden)
	// ErrNotOwner rejects principals acting on a resource they do not own.
	ErrNotOwner = fmt.Errorf("%w: not the resource owner", ErrForbidden)

	// ErrNotFound indicates the resource or a referenced parent is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation on email or slug.
	ErrConflict = errors.New("already exists")

	// ErrInvalidOperation is the base kind for structurally invalid writes.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrCircularReference rejects reparenting a category under its own descendant.
	ErrCircularReference = fmt.Errorf("%w: circular reference", ErrInvalidOperation)
	// ErrHasChildren rejects deleting a category that still has subcategories.
	ErrHasChildren = fmt.Errorf("%w: category has subcategories", ErrInvalidOperation)

	// ErrValidation indicates a malformed request body.
	ErrValidation = errors.New("validation failed")
)
