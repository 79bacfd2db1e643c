package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/paralleldiary/pardiary/internal/backend"
	"github.com/paralleldiary/pardiary/internal/domain/activity"
	"github.com/paralleldiary/pardiary/internal/domain/diary"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), ErrorResponse{Error: err.Error()})
}

// errorStatus maps domain errors onto HTTP status codes. Backend errors keep
// their upstream code; generation failures are reported as bad gateway.
func errorStatus(err error) int {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, activity.ErrInvalidInput), errors.Is(err, diary.ErrInvalidInput), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, activity.ErrActivityNotFound), errors.Is(err, diary.ErrDiaryNotFound):
		return http.StatusNotFound
	case errors.Is(err, activity.ErrGenerationTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400:
		return apiErr.StatusCode
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
