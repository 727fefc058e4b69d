package posts

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

// Handler wires HTTP endpoints for posts.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountPublicRoutes registers the read-only post routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/recent", h.handleRecent)
	r.Get("/popular", h.handlePopular)
	r.Get("/{id}", h.handleGet)
	r.Post("/{id}/view", h.handleView)
	r.Post("/{id}/like", h.handleLike)
}

// MountCreateRoute registers post creation; the caller wraps it in the
// role and permission gates.
func (h *Handler) MountCreateRoute(r chi.Router) {
	r.Post("/", h.handleCreate)
}

// MountOwnerRoutes registers mutate/delete; the caller wraps them in the
// ownership gate.
func (h *Handler) MountOwnerRoutes(r chi.Router) {
	r.Patch("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

type createRequest struct {
	Title         string   `json:"title" validate:"required"`
	Content       string   `json:"content" validate:"required"`
	Excerpt       string   `json:"excerpt"`
	Category      *int64   `json:"category"`
	Tags          []string `json:"tags"`
	FeaturedImage string   `json:"featuredImage"`
	Published     *bool    `json:"published"`
}

type updateRequest struct {
	Title         *string  `json:"title"`
	Content       *string  `json:"content"`
	Excerpt       *string  `json:"excerpt"`
	Category      *int64   `json:"category"`
	Tags          []string `json:"tags"`
	FeaturedImage *string  `json:"featuredImage"`
	Published     *bool    `json:"published"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Tag:    q.Get("tag"),
		Search: q.Get("search"),
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	if raw := q.Get("category"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.CategoryID = &id
		}
	}
	if raw := q.Get("published"); raw != "" {
		published := raw == "true"
		filter.Published = &published
	}

	posts, pagination, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list posts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if posts == nil {
		posts = []Post{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"count":       pagination.Total,
		"totalPages":  pagination.TotalPages,
		"currentPage": pagination.Page,
		"posts":       posts,
	})
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	h.listPublished(w, r, "")
}

func (h *Handler) handlePopular(w http.ResponseWriter, r *http.Request) {
	h.listPublished(w, r, "views")
}

func (h *Handler) listPublished(w http.ResponseWriter, r *http.Request, sort string) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 5
	}
	published := true
	posts, _, err := h.service.List(r.Context(), ListFilter{Published: &published, Page: 1, Limit: limit, Sort: sort})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if posts == nil {
		posts = []Post{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"count": len(posts), "posts": posts})
}

// handleGet accepts a numeric id or a slug in the id segment.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"post": post})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
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
	post, err := h.service.Create(r.Context(), principal.ID, CreateInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		CategoryID:    req.Category,
		Tags:          req.Tags,
		FeaturedImage: req.FeaturedImage,
		Published:     req.Published,
	})
	if err != nil {
		h.logger.Warn("create post", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"message": "Post created successfully", "post": post})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	post, err := h.service.Update(r.Context(), id, UpdateInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		CategoryID:    req.Category,
		Tags:          req.Tags,
		FeaturedImage: req.FeaturedImage,
		Published:     req.Published,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Post updated successfully", "post": post})
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
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Post deleted successfully"})
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	views, err := h.service.View(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"views": views})
}

func (h *Handler) handleLike(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	likes, err := h.service.Like(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"likes": likes})
}
