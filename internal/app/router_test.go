package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/authz"
	"github.com/inkwell-cms/inkwell/internal/comments"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

type principalStore struct {
	byID map[int64]*auth.Principal
}

func (s *principalStore) FindByID(ctx context.Context, id int64) (*auth.Principal, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *principalStore) FindByEmail(ctx context.Context, email string) (*auth.Principal, error) {
	return nil, shared.ErrNotFound
}

func (s *principalStore) FindByEmailWithHash(ctx context.Context, email string) (*auth.Principal, string, error) {
	return nil, "", shared.ErrNotFound
}

func (s *principalStore) Create(ctx context.Context, p auth.Principal, passwordHash string) (*auth.Principal, error) {
	return nil, shared.ErrConflict
}

type commentStore struct {
	created []comments.Comment
}

func (s *commentStore) List(ctx context.Context, filter comments.ListFilter) ([]comments.Comment, int, error) {
	return nil, 0, nil
}

func (s *commentStore) FindByID(ctx context.Context, id int64) (*comments.Comment, error) {
	return nil, shared.ErrNotFound
}

func (s *commentStore) Create(ctx context.Context, c comments.Comment) (*comments.Comment, error) {
	c.ID = int64(len(s.created) + 1)
	s.created = append(s.created, c)
	return &c, nil
}

func (s *commentStore) Approve(ctx context.Context, id int64) (*comments.Comment, error) {
	return nil, shared.ErrNotFound
}

func (s *commentStore) Delete(ctx context.Context, id int64) error {
	return shared.ErrNotFound
}

func (s *commentStore) Owner(ctx context.Context, id int64) (int64, error) {
	return 0, shared.ErrNotFound
}

type anyPostChecker struct{}

func (anyPostChecker) Exists(ctx context.Context, postID int64) (bool, error) {
	return true, nil
}

// Commenting is open to every approved account regardless of role; a
// pending account is still blocked and a missing credential is rejected
// outright. Exercises the mounted route, not the gates in isolation.
func TestCommentCreationAcrossRoles(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenIssuer("router-test-secret", time.Hour)
	store := &principalStore{byID: map[int64]*auth.Principal{
		1: {ID: 1, Name: "Ada", Email: "ada@example.com", Role: auth.RoleAdmin, Status: auth.StatusApproved},
		2: {ID: 2, Name: "Ben", Email: "ben@example.com", Role: auth.RoleAuthor, Status: auth.StatusApproved},
		3: {ID: 3, Name: "Cleo", Email: "cleo@example.com", Role: auth.RoleViewer, Status: auth.StatusApproved},
		4: {ID: 4, Name: "Dan", Email: "dan@example.com", Role: auth.RoleAuthor, Status: auth.StatusPending},
	}}
	authService := auth.NewService(store, tokens, auth.NewDenylist(nil), logger)
	commentsService := comments.NewService(&commentStore{}, anyPostChecker{}, logger)

	router := NewRouter(RouterParams{
		Logger:          logger,
		AuthService:     authService,
		Authz:           authz.Middleware{Logger: logger},
		CommentsHandler: comments.NewHandler(logger, commentsService),
	})

	post := func(t *testing.T, token string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/posts/1/comments", strings.NewReader(`{"content":"well said"}`))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	for id, role := range map[int64]auth.Role{1: auth.RoleAdmin, 2: auth.RoleAuthor, 3: auth.RoleViewer} {
		token, err := tokens.Issue(id)
		require.NoError(t, err)
		rr := post(t, token)
		assert.Equal(t, http.StatusCreated, rr.Code, "role %s", role)
	}

	pendingToken, err := tokens.Issue(4)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, post(t, pendingToken).Code)

	assert.Equal(t, http.StatusUnauthorized, post(t, "").Code)
}
