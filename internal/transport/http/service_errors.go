package http

import (
	"errors"
	"net/http"

	"github.com/cimillas/festival-pos/internal/domain"
)

// writeServiceError maps domain errors onto HTTP statuses. Logging failures
// map to 500 with their own code: the balance commit succeeded, only the
// trail is incomplete, and the caller must not blindly retry.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, codeInvalidAmount, err.Error())
	case errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case errors.Is(err, domain.ErrInvalidBalance):
		writeError(w, http.StatusBadRequest, codeInvalidBalance, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrEventTitleRequired):
		writeError(w, http.StatusBadRequest, codeEventTitleRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidCapacity):
		writeError(w, http.StatusBadRequest, codeInvalidCapacity, err.Error())
	case errors.Is(err, domain.ErrEventNotFound):
		writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
	case errors.Is(err, domain.ErrTicketNotFound):
		writeError(w, http.StatusNotFound, codeTicketNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, codeInsufficientBalance, err.Error())
	case errors.Is(err, domain.ErrTicketNotActive):
		writeError(w, http.StatusConflict, codeTicketNotActive, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, domain.ErrLoggingFailure):
		writeError(w, http.StatusInternalServerError, codeLoggingFailure, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
