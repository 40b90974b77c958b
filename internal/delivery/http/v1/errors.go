package v1

import (
	"errors"
	"net/http"

	"pharmacare-backend/internal/domain"
	"pharmacare-backend/pkg/logger"
	"pharmacare-backend/pkg/utils"
)

// writeDomainError maps domain sentinels to HTTP status codes. Anything
// unmapped is logged and surfaced as a bare 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrMedicineNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrBillNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrNoValidSelection),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrWeakPassword):
		utils.WriteError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, domain.ErrInvalidCredentials):
		utils.WriteError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrOrderFinalized),
		errors.Is(err, domain.ErrConcurrencyConflict),
		errors.Is(err, domain.ErrDuplicateRequest):
		utils.WriteError(w, http.StatusConflict, err.Error())

	default:
		logger.WithContext(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).Msg("unhandled error")
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// userFrom pulls the authenticated user the auth middleware stored.
func userFrom(r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	return user, ok
}
