package users

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/shared"
	"github.com/inkwell-cms/inkwell/jobs"
)

// Service implements account administration workflows.
type Service struct {
	repo   Repository
	jobs   *jobs.Client
	logger *slog.Logger
}

func NewService(repo Repository, jobsClient *jobs.Client, logger *slog.Logger) *Service {
	return &Service{repo: repo, jobs: jobsClient, logger: logger}
}

// List returns accounts matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]User, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, filter.Limit, total), nil
}

// ListPending returns accounts awaiting an approval decision.
func (s *Service) ListPending(ctx context.Context, page, limit int) ([]User, shared.Pagination, error) {
	return s.List(ctx, ListFilter{Status: auth.StatusPending, Page: page, Limit: limit})
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// Approve moves a pending account to approved and notifies the owner.
func (s *Service) Approve(ctx context.Context, id int64) (*User, error) {
	return s.decide(ctx, id, auth.StatusApproved)
}

// Reject moves a pending account to rejected and notifies the owner.
func (s *Service) Reject(ctx context.Context, id int64) (*User, error) {
	return s.decide(ctx, id, auth.StatusRejected)
}

func (s *Service) decide(ctx context.Context, id int64, next auth.Status) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot move account from %s to %s", shared.ErrInvalidOperation, user.Status, next)
	}
	updated, err := s.repo.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account decision", "user_id", id, "status", next)
	s.notifyDecision(ctx, updated)
	return updated, nil
}

func (s *Service) notifyDecision(ctx context.Context, user *User) {
	if s.jobs == nil {
		return
	}
	subject := "Your account has been approved"
	body := fmt.Sprintf("Hi %s, your account is now active. You can sign in right away.", user.Name)
	if user.Status == auth.StatusRejected {
		subject = "Your account request was declined"
		body = fmt.Sprintf("Hi %s, your access request was not approved. Reply to this email if you believe this is a mistake.", user.Name)
	}
	_, err := s.jobs.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
		To:      user.Email,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		s.logger.Warn("enqueue decision email failed", "user_id", user.ID, "error", err)
	}
}

// UpdateInput carries an administrative account edit. Nil fields are
// left unchanged.
type UpdateInput struct {
	Name   *string
	Role   *string
	Status *string
	Avatar *string
	Bio    *string
}

// Update applies an administrative edit. Role and status are written as
// given; the approval state machine only constrains the pending decision
// endpoints, administrators may correct records directly.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Role != nil {
		role, err := auth.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	if in.Status != nil {
		status, err := auth.ParseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		user.Status = status
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	return s.repo.Update(ctx, *user)
}

// Delete removes an account. Administrators cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return fmt.Errorf("%w: cannot delete your own account", shared.ErrInvalidOperation)
	}
	return s.repo.Delete(ctx, id)
}

// ToggleBookmark adds or removes a post from the account's bookmarks and
// reports whether the post is bookmarked afterwards.
func (s *Service) ToggleBookmark(ctx context.Context, userID, postID int64) (*User, bool, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	bookmarks := slices.Clone(user.Bookmarks)
	idx := slices.Index(bookmarks, postID)
	added := idx < 0
	if added {
		bookmarks = append(bookmarks, postID)
	} else {
		bookmarks = slices.Delete(bookmarks, idx, idx+1)
	}
	updated, err := s.repo.SetBookmarks(ctx, userID, bookmarks)
	if err != nil {
		return nil, false, err
	}
	return updated, added, nil
}
