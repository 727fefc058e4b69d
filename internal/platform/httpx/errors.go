package httpx

import (
	"errors"
	"net/http"

	"github.com/inkwell-cms/inkwell/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Authentication failures never reveal whether the cause was a bad
// credential or a missing principal; both collapse to a generic 401.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrPendingApproval):
		Problem(w, http.StatusForbidden, "Forbidden", "Your account is pending approval. Please contact an administrator.")
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrUnauthenticated):
		Problem(w, http.StatusUnauthorized, "Unauthorized", shared.ErrUnauthenticated.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrInvalidOperation):
		Problem(w, http.StatusBadRequest, "Invalid Operation", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
