package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/observability"
	"github.com/inkwell-cms/inkwell/internal/platform/httpx"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

// OwnershipResolver loads the owner reference of a stored resource.
type OwnershipResolver interface {
	Owner(ctx context.Context, resourceType string, id int64) (int64, error)
}

// RequireStatus is the status gate: it passes only approved principals.
func RequireStatus(p *auth.Principal) error {
	if p == nil {
		return shared.ErrUnauthenticated
	}
	if !p.CanAuthenticate() {
		return shared.ErrPendingApproval
	}
	return nil
}

// RequireRole is the role gate: the principal's role must be on the
// route's allow-list.
func RequireRole(p *auth.Principal, allowed ...auth.Role) error {
	if p == nil {
		return shared.ErrUnauthenticated
	}
	for _, role := range allowed {
		if p.Role == role {
			return nil
		}
	}
	return shared.ErrRoleNotAllowed
}

// RequirePermission is the permission gate: the principal's role must grant
// the capability token. Orthogonal to the role gate.
func RequirePermission(p *auth.Principal, token string) error {
	if p == nil {
		return shared.ErrUnauthenticated
	}
	if !HasPermission(p.Role, token) {
		return shared.ErrPermissionDenied
	}
	return nil
}

// RequireOwnership is the ownership gate: it loads the target resource and
// compares its owner reference against the acting principal. Admins pass
// unconditionally.
func RequireOwnership(ctx context.Context, resolver OwnershipResolver, p *auth.Principal, resourceType string, id int64) error {
	if p == nil {
		return shared.ErrUnauthenticated
	}
	owner, err := resolver.Owner(ctx, resourceType, id)
	if err != nil {
		return err
	}
	if p.Role == auth.RoleAdmin {
		return nil
	}
	if owner != p.ID {
		return shared.ErrNotOwner
	}
	return nil
}

// Middleware composes gates for HTTP routes. The status gate always runs
// first; each wrapper stops at the first failing gate and the remaining
// gates never run. Gates never mutate principal or resource state.
type Middleware struct {
	Resolver OwnershipResolver
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

func (m Middleware) fail(w http.ResponseWriter, r *http.Request, err error) {
	if m.Logger != nil {
		m.Logger.Debug("authorization rejected",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	if gate := gateLabel(err); gate != "" {
		m.Metrics.CountDenial(gate)
	}
	httpx.RespondError(w, err)
}

func gateLabel(err error) string {
	switch {
	case errors.Is(err, shared.ErrPendingApproval):
		return "status"
	case errors.Is(err, shared.ErrRoleNotAllowed):
		return "role"
	case errors.Is(err, shared.ErrPermissionDenied):
		return "permission"
	case errors.Is(err, shared.ErrNotOwner):
		return "ownership"
	case errors.Is(err, shared.ErrUnauthenticated):
		return "authentication"
	}
	return ""
}

// Authorize runs the status gate followed by the role gate.
func (m Middleware) Authorize(allowed ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := auth.PrincipalFromContext(r.Context())
			if err := RequireStatus(p); err != nil {
				m.fail(w, r, err)
				return
			}
			if err := RequireRole(p, allowed...); err != nil {
				m.fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CheckPermission runs the permission gate for a single capability token.
func (m Middleware) CheckPermission(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := auth.PrincipalFromContext(r.Context())
			if err := RequirePermission(p, token); err != nil {
				m.fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CheckOwnership runs the ownership gate against the route's id parameter.
func (m Middleware) CheckOwnership(resourceType, paramName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := auth.PrincipalFromContext(r.Context())
			id, err := strconv.ParseInt(chi.URLParam(r, paramName), 10, 64)
			if err != nil {
				m.fail(w, r, shared.ErrNotFound)
				return
			}
			if err := RequireOwnership(r.Context(), m.Resolver, p, resourceType, id); err != nil {
				m.fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
