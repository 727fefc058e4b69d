package auth

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell-cms/inkwell/internal/shared"
)

type mockRepository struct {
	byID    map[int64]*Principal
	byEmail map[string]*Principal
	hashes  map[int64]string
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		byID:    make(map[int64]*Principal),
		byEmail: make(map[string]*Principal),
		hashes:  make(map[int64]string),
		nextID:  1,
	}
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*Principal, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*Principal, error) {
	p, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockRepository) FindByEmailWithHash(ctx context.Context, email string) (*Principal, string, error) {
	p, err := m.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	return p, m.hashes[p.ID], nil
}

func (m *mockRepository) Create(ctx context.Context, p Principal, passwordHash string) (*Principal, error) {
	key := strings.ToLower(p.Email)
	if _, exists := m.byEmail[key]; exists {
		return nil, shared.ErrConflict
	}
	p.ID = m.nextID
	m.nextID++
	stored := p
	m.byID[p.ID] = &stored
	m.byEmail[key] = &stored
	m.hashes[p.ID] = passwordHash
	copied := p
	return &copied, nil
}

func newTestService(t *testing.T) (*Service, *mockRepository) {
	t.Helper()
	repo := newMockRepository()
	issuer := NewTokenIssuer("test-secret", time.Hour)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, issuer, NewDenylist(client), slog.Default()), repo
}

func TestRegisterViewerIsApprovedAndLoggedIn(t *testing.T) {
	svc, _ := newTestService(t)

	p, token, err := svc.Register(context.Background(), RegisterInput{
		Name: "Victor", Email: "victor@example.com", Password: "pw", Role: "viewer",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, p.Status)
	assert.NotEmpty(t, token)
}

func TestRegisterAuthorStartsPendingWithoutToken(t *testing.T) {
	svc, _ := newTestService(t)

	p, token, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "pw", Role: "author",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	assert.Empty(t, token)
}

func TestRegisterDefaultsToViewer(t *testing.T) {
	svc, _ := newTestService(t)

	p, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Nameless", Email: "n@example.com", Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleViewer, p.Role)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "X", Email: "x@example.com", Password: "pw", Role: "superuser",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestRequestAccessDefaultsToAuthorPending(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.RequestAccess(context.Background(), RegisterInput{
		Name: "Paula", Email: "paula@example.com", Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleAuthor, p.Role)
	assert.Equal(t, StatusPending, p.Status)
}

func TestLoginUnknownEmailFailsWithInvalidCredentials(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Login(context.Background(), "missing@example.com", "pw")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginWrongPasswordFailsWithInvalidCredentials(t *testing.T) {
	svc, repo := newTestService(t)
	seedUser(t, repo, "a@example.com", "correct", RoleViewer, StatusApproved)

	_, _, err := svc.Login(context.Background(), "a@example.com", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginPendingAccountFailsFast(t *testing.T) {
	svc, repo := newTestService(t)
	seedUser(t, repo, "p@example.com", "pw", RoleAuthor, StatusPending)

	_, _, err := svc.Login(context.Background(), "p@example.com", "pw")
	assert.ErrorIs(t, err, shared.ErrPendingApproval)
	// The pending signal still counts as a forbidden outcome.
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestLoginRejectedAccountFailsFast(t *testing.T) {
	svc, repo := newTestService(t)
	seedUser(t, repo, "r@example.com", "pw", RoleAuthor, StatusRejected)

	_, _, err := svc.Login(context.Background(), "r@example.com", "pw")
	assert.ErrorIs(t, err, shared.ErrPendingApproval)
}

func TestLoginApprovedIssuesVerifiableToken(t *testing.T) {
	svc, repo := newTestService(t)
	id := seedUser(t, repo, "ok@example.com", "pw", RoleAdmin, StatusApproved)

	p, token, err := svc.Login(context.Background(), "ok@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)

	resolved, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, id, resolved.ID)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, repo := newTestService(t)
	seedUser(t, repo, "out@example.com", "pw", RoleViewer, StatusApproved)

	_, token, err := svc.Login(context.Background(), "out@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), token))

	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestAuthenticateRejectsExpired(t *testing.T) {
	repo := newMockRepository()
	expired := NewTokenIssuer("test-secret", -time.Minute)
	svc := NewService(repo, expired, NewDenylist(nil), slog.Default())
	seedUser(t, repo, "e@example.com", "pw", RoleViewer, StatusApproved)

	raw, err := expired.Issue(1)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), raw)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func seedUser(t *testing.T, repo *mockRepository, email, password string, role Role, status Status) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	p, err := repo.Create(context.Background(), Principal{
		Name:   "Seeded",
		Email:  email,
		Role:   role,
		Status: status,
	}, string(hash))
	require.NoError(t, err)
	return p.ID
}
