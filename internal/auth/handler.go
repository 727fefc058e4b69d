package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/inkwell-cms/inkwell/internal/platform/httpx"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountPublicRoutes registers unauthenticated auth routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/request-access", h.handleRequestAccess)
}

// MountProtectedRoutes registers routes behind the authentication gate.
func (h *Handler) MountProtectedRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.Post("/logout", h.handleLogout)
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin author viewer"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Message   string     `json:"message"`
	Token     string     `json:"token,omitempty"`
	Principal *Principal `json:"user"`
}

func (h *Handler) decodeValid(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return shared.ErrValidation
	}
	if err := h.validator.Struct(target); err != nil {
		return shared.ErrValidation
	}
	return nil
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, token, err := h.service.Register(r.Context(), RegisterInput(req))
	if err != nil {
		h.logger.Warn("register failed", slog.String("email", req.Email), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	message := "Registration successful"
	if !principal.CanAuthenticate() {
		message = "Registration successful. Your account is pending approval."
	}
	httpx.JSON(w, http.StatusCreated, sessionResponse{Message: message, Token: token, Principal: principal})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{Message: "Login successful", Token: token, Principal: principal})
}

func (h *Handler) handleRequestAccess(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, err := h.service.RequestAccess(r.Context(), RegisterInput(req))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sessionResponse{
		Message:   "Access request submitted successfully. Please wait for admin approval.",
		Principal: principal,
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	current, err := h.service.Me(r.Context(), principal.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": current})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := BearerToken(r)
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	if err := h.service.Logout(r.Context(), token); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
}
