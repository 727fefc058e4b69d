package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Service wraps registration and login business rules.
type Service struct {
	repo     Repository
	tokens   *TokenIssuer
	denylist *Denylist
	logger   *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenIssuer, denylist *Denylist, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, denylist: denylist, logger: logger}
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Register creates a principal. Admin and author requests start pending and
// receive no token; viewers are approved and logged in immediately.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Principal, string, error) {
	role, err := ParseRole(in.Role)
	if err != nil {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	created, err := s.repo.Create(ctx, Principal{
		Name:   in.Name,
		Email:  in.Email,
		Role:   role,
		Status: InitialStatus(role),
	}, string(hash))
	if err != nil {
		return nil, "", err
	}
	if !created.CanAuthenticate() {
		return created, "", nil
	}
	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

// RequestAccess registers an elevated-role account that always starts
// pending, defaulting to author when no role is given.
func (s *Service) RequestAccess(ctx context.Context, in RegisterInput) (*Principal, error) {
	if in.Role == "" {
		in.Role = string(RoleAuthor)
	}
	role, err := ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, Principal{
		Name:   in.Name,
		Email:  in.Email,
		Role:   role,
		Status: StatusPending,
	}, string(hash))
}

// Login validates credentials and issues a token. A non-approved account
// fails fast with a distinct signal so the client can show the account
// state instead of a generic authorization failure.
func (s *Service) Login(ctx context.Context, email, password string) (*Principal, string, error) {
	principal, hash, err := s.repo.FindByEmailWithHash(ctx, email)
	if err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	if !principal.CanAuthenticate() {
		return nil, "", shared.ErrPendingApproval
	}
	token, err := s.tokens.Issue(principal.ID)
	if err != nil {
		return nil, "", err
	}
	return principal, token, nil
}

// Me returns the acting principal's own record.
func (s *Service) Me(ctx context.Context, id int64) (*Principal, error) {
	return s.repo.FindByID(ctx, id)
}

// Logout revokes the presented token for the remainder of its lifetime.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.tokens.Verify(rawToken)
	if err != nil {
		return shared.ErrUnauthenticated
	}
	until := time.Now().Add(s.tokens.TTL())
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.denylist.Revoke(ctx, rawToken, until)
}

// Authenticate resolves a raw bearer token to a principal. Expired and
// malformed tokens are distinguished internally for observability but
// collapse to the same external signal.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*Principal, error) {
	claims, err := s.tokens.Verify(rawToken)
	if err != nil {
		if s.logger != nil {
			reason := "invalid"
			if errors.Is(err, jwt.ErrTokenExpired) {
				reason = "expired"
			}
			s.logger.Debug("token rejected", slog.String("reason", reason), slog.Any("error", err))
		}
		return nil, shared.ErrUnauthenticated
	}
	if s.denylist.IsRevoked(ctx, rawToken) {
		return nil, shared.ErrUnauthenticated
	}
	principal, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, shared.ErrUnauthenticated
	}
	return principal, nil
}
