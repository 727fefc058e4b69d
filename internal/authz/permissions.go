// Package authz implements the layered authorization pipeline: the
// role→capability table and the status, role, permission, and ownership
// gates composed per route.
package authz

import "github.com/inkwell-cms/inkwell/internal/auth"

// Capability tokens. One string per fine-grained permitted action.
const (
	PermManageUsers    = "manage_users"
	PermManagePosts    = "manage_posts"
	PermManageComments = "manage_comments"
	PermViewAnalytics  = "view_analytics"
	PermApproveUsers   = "approve_users"
	PermDeleteUsers    = "delete_users"

	PermCreatePost    = "create_post"
	PermEditOwnPost   = "edit_own_post"
	PermDeleteOwnPost = "delete_own_post"
	PermViewOwnPosts  = "view_own_posts"

	PermViewPosts  = "view_posts"
	PermAddComment = "add_comment"
	PermLikePost   = "like_post"
)

// permissions maps every role to its allow-set. Initialized once, never
// mutated at runtime.
var permissions = map[auth.Role][]string{
	auth.RoleAdmin: {
		PermManageUsers,
		PermManagePosts,
		PermManageComments,
		PermViewAnalytics,
		PermApproveUsers,
		PermDeleteUsers,
	},
	auth.RoleAuthor: {
		PermCreatePost,
		PermEditOwnPost,
		PermDeleteOwnPost,
		PermViewOwnPosts,
	},
	auth.RoleViewer: {
		PermViewPosts,
		PermAddComment,
		PermLikePost,
	},
}

// PermissionsFor returns the capability tokens granted to a role. The
// mapping is total over defined roles; an unknown role yields an empty set
// rather than an error since roles are validated on write.
func PermissionsFor(role auth.Role) []string {
	granted, ok := permissions[role]
	if !ok {
		return nil
	}
	out := make([]string, len(granted))
	copy(out, granted)
	return out
}

// HasPermission reports whether the role's allow-set contains the token.
func HasPermission(role auth.Role, token string) bool {
	for _, p := range permissions[role] {
		if p == token {
			return true
		}
	}
	return false
}
