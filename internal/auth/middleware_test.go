package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := BearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "Basic abc")
	_, ok = BearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "Bearer ")
	_, ok = BearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "Bearer some-token")
	token, ok := BearerToken(req)
	require.True(t, ok)
	assert.Equal(t, "some-token", token)
}

func TestMiddlewareAttachesPrincipal(t *testing.T) {
	repo := newMockRepository()
	issuer := NewTokenIssuer("test-secret", time.Hour)
	svc := NewService(repo, issuer, NewDenylist(nil), slog.Default())
	id := seedUser(t, repo, "mw@example.com", "pw", RoleAuthor, StatusApproved)

	token, err := issuer.Issue(id)
	require.NoError(t, err)

	var seen *Principal
	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.NotNil(t, seen)
	assert.Equal(t, id, seen.ID)
}

func TestMiddlewareRejectsMissingAndBadTokens(t *testing.T) {
	repo := newMockRepository()
	issuer := NewTokenIssuer("test-secret", time.Hour)
	svc := NewService(repo, issuer, NewDenylist(nil), slog.Default())

	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// The middleware resolves identity only; an unapproved principal still
// reaches the handler and is blocked by the downstream status gate.
func TestMiddlewarePassesPendingPrincipalThrough(t *testing.T) {
	repo := newMockRepository()
	issuer := NewTokenIssuer("test-secret", time.Hour)
	svc := NewService(repo, issuer, NewDenylist(nil), slog.Default())
	id := seedUser(t, repo, "pend@example.com", "pw", RoleAuthor, StatusPending)

	token, err := issuer.Issue(id)
	require.NoError(t, err)

	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := PrincipalFromContext(r.Context())
		require.NotNil(t, p)
		assert.Equal(t, StatusPending, p.Status)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMiddlewareRejectsContext(t *testing.T) {
	assert.Nil(t, PrincipalFromContext(context.Background()))
}
