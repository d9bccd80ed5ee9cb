package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/userforms/internal/common"
	"github.com/dmitrijs2005/userforms/internal/validation"
	"github.com/goccy/go-json"
)

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error      string                 `json:"error"`
	Violations []validation.Violation `json:"violations,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, common.ErrorInternal.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// statusOf maps flow and storage errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)

	resp := errorResponse{Error: err.Error()}
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		resp.Error = common.ErrorValidation.Error()
		resp.Violations = verr.Violations
	}

	if code == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		if !errors.Is(err, common.ErrStoreCorrupted) {
			resp.Error = common.ErrorInternal.Error()
		}
	}

	respondWithJSON(w, code, resp)
}
