package users

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/platform/httpx"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Handler wires HTTP endpoints for account administration.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountAdminRoutes registers the user management endpoints. The caller
// wraps them in the admin role and manage_users permission gates.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/pending", h.handleListPending)
	r.Get("/{id}", h.handleGet)
	r.Patch("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	r.Patch("/{id}/approve", h.handleApprove)
	r.Patch("/{id}/reject", h.handleReject)
}

// MountBookmarkRoutes registers the bookmark toggle for the signed-in
// account.
func (h *Handler) MountBookmarkRoutes(r chi.Router) {
	r.Post("/bookmarks/{postId}", h.handleToggleBookmark)
}

type updateRequest struct {
	Name   *string `json:"name"`
	Role   *string `json:"role"`
	Status *string `json:"status"`
	Avatar *string `json:"avatar"`
	Bio    *string `json:"bio"`
}

func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Search: q.Get("search")}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	if raw := q.Get("role"); raw != "" {
		role, err := auth.ParseRole(raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		filter.Role = role
	}
	if raw := q.Get("status"); raw != "" {
		status, err := auth.ParseStatus(raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		filter.Status = status
	}

	items, pagination, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"users":      items,
		"pagination": pagination,
	})
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	items, pagination, err := h.service.ListPending(r.Context(), page, limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"users":      items,
		"pagination": pagination,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	updated, err := h.service.Update(r.Context(), id, UpdateInput{
		Name:   req.Name,
		Role:   req.Role,
		Status: req.Status,
		Avatar: req.Avatar,
		Bio:    req.Bio,
	})
	if err != nil {
		h.logger.Warn("update user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "User updated",
		"user":    updated,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), principal.ID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve, "User approved")
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject, "User rejected")
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) (*User, error), message string) {
	id, err := idParam(r, "id")
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	user, err := fn(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": message,
		"user":    user,
	})
}

func (h *Handler) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	postID, err := idParam(r, "postId")
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	user, added, err := h.service.ToggleBookmark(r.Context(), principal.ID, postID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	message := "Bookmark removed"
	if added {
		message = "Bookmark added"
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":   message,
		"bookmarks": user.Bookmarks,
	})
}
