package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mliu7/trackrest/internal/resource"
	"github.com/mliu7/trackrest/internal/store"
	"github.com/mliu7/trackrest/internal/trackable"
	"github.com/mliu7/trackrest/internal/validate"
)

// respondJSON renders a JSON response.
func (a *API) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			a.logger.Error().Err(err).Msg("failed to encode response")
		}
	}
}

// respondError maps a pipeline failure to its transport representation.
// Validation failures carry per-field messages under "errors"; everything
// else carries a single "error_message". Every error kind has a stable
// status; nothing is retried.
func (a *API) respondError(w http.ResponseWriter, err error) {
	var ve *validate.ValidationErrors
	if errors.As(err, &ve) {
		a.respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": ve.Fields})
		return
	}

	var le *validate.LimitError
	if errors.As(err, &le) {
		a.respondErrorMessage(w, http.StatusBadRequest, le.Error())
		return
	}

	var re *resource.Error
	if errors.As(err, &re) {
		a.respondErrorMessage(w, statusForKind(re.Kind), re.Message)
		return
	}

	switch {
	case errors.Is(err, trackable.ErrUnauthorized):
		a.respondErrorMessage(w, http.StatusForbidden, "You are not authorized to modify this resource.")
	case errors.Is(err, trackable.ErrRemoved):
		a.respondErrorMessage(w, http.StatusGone, "This resource has been removed and is no longer accessible.")
	case errors.Is(err, store.ErrNotFound):
		a.respondErrorMessage(w, http.StatusNotFound, "A resource with this id could not be found.")
	case errors.Is(err, store.ErrTooManyResults):
		a.respondErrorMessage(w, http.StatusMultipleChoices, "More than one resource is found at this URI.")
	case errors.Is(err, store.ErrInvalidFilter):
		a.respondErrorMessage(w, http.StatusBadRequest, "Invalid resource lookup data provided.")
	default:
		a.logger.Error().Err(err).Msg("internal error")
		a.respondErrorMessage(w, http.StatusInternalServerError, "Internal server error.")
	}
}

// respondErrorMessage renders the single-message error payload.
func (a *API) respondErrorMessage(w http.ResponseWriter, statusCode int, message string) {
	a.respondJSON(w, statusCode, map[string]string{"error_message": message})
}

// statusForKind maps the error taxonomy to HTTP statuses.
func statusForKind(kind resource.ErrorKind) int {
	switch kind {
	case resource.KindInvalidField, resource.KindMalformedInput:
		return http.StatusBadRequest
	case resource.KindUnauthenticated:
		return http.StatusUnauthorized
	case resource.KindUnauthorized:
		return http.StatusForbidden
	case resource.KindNotFound:
		return http.StatusNotFound
	case resource.KindGone:
		return http.StatusGone
	case resource.KindTooManyResults:
		return http.StatusMultipleChoices
	default:
		return http.StatusInternalServerError
	}
}
