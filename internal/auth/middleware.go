package auth

import (
	"net/http"
	"strings"

	"github.com/inkwell-cms/inkwell/internal/platform/httpx"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

// BearerToken extracts the bearer credential from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// Middleware is the authentication gate: it verifies the bearer credential,
// resolves the principal, and attaches it to the request context. It does
// not consult account status; unapproved principals are blocked by the
// downstream status gate, not here.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		principal, err := s.Authenticate(r.Context(), token)
		if err != nil {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}
