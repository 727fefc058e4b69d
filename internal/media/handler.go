package media

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-cms/inkwell/internal/platform/httpx"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Handler wires the upload endpoint.
type Handler struct {
	logger  *slog.Logger
	storage *Storage
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, storage *Storage) *Handler {
	return &Handler{logger: logger, storage: storage}
}

// MountRoutes registers the upload endpoint. The caller wraps it in the
// status and role gates.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleUpload)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1024)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	defer file.Close()

	name, err := h.storage.Save(header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Warn("upload rejected", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("media uploaded", "file", name, "size", header.Size)
	httpx.JSON(w, http.StatusCreated, map[string]string{
		"message": "File uploaded",
		"file":    name,
		"url":     "/uploads/" + name,
	})
}
