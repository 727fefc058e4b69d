package categories

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/inkwell-cms/inkwell/internal/platform/httpx"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Handler wires HTTP endpoints for category management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountPublicRoutes registers the read-only category routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/tree", h.handleTree)
	r.Get("/{slug}", h.handleGet)
}

// MountAdminRoutes registers the mutating category routes. The caller
// wraps them in the authentication gate and the admin role gate.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Patch("/reorder", h.handleReorder)
	r.Patch("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

type createRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Parent      *int64 `json:"parent"`
	Order       int    `json:"order"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

type updateRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Parent      OptionalParent `json:"parent"`
	Order       *int           `json:"order"`
	Icon        *string        `json:"icon"`
	Color       *string        `json:"color"`
	IsActive    *bool          `json:"isActive"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	includeInactive, _ := strconv.ParseBool(r.URL.Query().Get("includeInactive"))
	nodes, err := h.service.List(r.Context(), includeInactive)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if nodes == nil {
		nodes = []Node{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"count": len(nodes), "categories": nodes})
}

func (h *Handler) handleTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.Tree(r.Context(), true)
	if err != nil {
		h.logger.Error("category tree", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tree": tree})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	node, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"category": node})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	node, err := h.service.Create(r.Context(), CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Parent:      req.Parent,
		Order:       req.Order,
		Icon:        req.Icon,
		Color:       req.Color,
	})
	if err != nil {
		h.logger.Warn("create category", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"message": "Category created successfully", "category": node})
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
	node, err := h.service.Update(r.Context(), id, UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Parent:      req.Parent,
		Order:       req.Order,
		Icon:        req.Icon,
		Color:       req.Color,
		IsActive:    req.IsActive,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Category updated successfully", "category": node})
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
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Category deleted successfully"})
}

type reorderRequest struct {
	Categories []OrderPair `json:"categories" validate:"required,min=1,dive"`
}

func (h *Handler) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	failed, err := h.service.Reorder(r.Context(), req.Categories)
	if err != nil {
		// Partial success: independent pairs were still applied.
		httpx.JSON(w, http.StatusOK, map[string]any{
			"message": "Categories reordered with failures",
			"failed":  failed,
		})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Categories reordered successfully"})
}
