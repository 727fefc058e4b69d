package comments

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/platform/httpx"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Handler wires HTTP endpoints for comments.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountPostRoutes registers the per-post comment listing under /posts.
// The id segment name matches the sibling post routes.
func (h *Handler) MountPostRoutes(r chi.Router) {
	r.Get("/{id}/comments", h.handleListForPost)
}

// MountCreateRoute registers comment submission; the caller wraps it in the
// status and permission gates.
func (h *Handler) MountCreateRoute(r chi.Router) {
	r.Post("/{id}/comments", h.handleCreate)
}

// MountModerationRoutes registers the moderation endpoints.
func (h *Handler) MountModerationRoutes(r chi.Router) {
	r.Get("/", h.handleListAll)
	r.Patch("/{id}/approve", h.handleApprove)
}

// MountOwnerRoutes registers deletion; the caller wraps it in the
// ownership gate.
func (h *Handler) MountOwnerRoutes(r chi.Router) {
	r.Delete("/{id}", h.handleDelete)
}

type createRequest struct {
	Content string `json:"content" validate:"required"`
	Parent  *int64 `json:"parent"`
}

func (h *Handler) handleListForPost(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	items, pagination, err := h.service.ListForPost(r.Context(), postID, page, limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"comments":   items,
		"pagination": pagination,
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	created, err := h.service.Create(r.Context(), CreateInput{
		PostID:   postID,
		AuthorID: principal.ID,
		Content:  req.Content,
		ParentID: req.Parent,
	})
	if err != nil {
		h.logger.Warn("create comment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Comment submitted for moderation",
		"comment": created,
	})
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	if raw := q.Get("approved"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.Approved = &v
		}
	}
	if raw := q.Get("post"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.PostID = &id
		}
	}

	items, pagination, err := h.service.ListAll(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"comments":   items,
		"pagination": pagination,
	})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	approved, err := h.service.Approve(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Comment approved",
		"comment": approved,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}
