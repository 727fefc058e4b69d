package users

import "github.com/inkwell-cms/inkwell/internal/auth"

// User is the administrative view of an account. It is the same record
// auth exposes as a Principal; this alias keeps handler signatures honest
// about which domain they operate in.
type User = auth.Principal

// ListFilter narrows the admin user listing.
type ListFilter struct {
	Role   auth.Role
	Status auth.Status
	Search string
	Page   int
	Limit  int
}
