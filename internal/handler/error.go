package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/digichit/digichit-server/internal/domain"
)

// ErrorResponse is the error envelope of the API
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and a human message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithError writes an error envelope
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, code domain.ErrorCode, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Error: ErrorDetail{
			Code:    string(code),
			Message: message,
		},
	})
}

// HandleError translates domain errors into HTTP responses. The conflict
// family maps to 400 to match the client contract. Unknown errors are
// logged and surface as a generic 500 without leaking internals.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.MapErrorToCode(err)

	switch {
	case errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrGroupInactive),
		errors.Is(err, domain.ErrAlreadyMember),
		errors.Is(err, domain.ErrGroupFull),
		errors.Is(err, domain.ErrDuplicateRequest),
		errors.Is(err, domain.ErrAlreadyProcessed),
		errors.Is(err, domain.ErrEmailTaken):
		RespondWithError(w, r, http.StatusBadRequest, code, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		RespondWithError(w, r, http.StatusForbidden, code, err.Error())
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrRequestNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		RespondWithError(w, r, http.StatusNotFound, code, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken):
		RespondWithError(w, r, http.StatusUnauthorized, code, err.Error())
	case errors.Is(err, domain.ErrPaymentFailed):
		RespondWithError(w, r, http.StatusBadGateway, code, "payment gateway error")
	default:
		slog.Error("unhandled error", "path", r.URL.Path, "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, domain.CodeInternal, "internal server error")
	}
}
