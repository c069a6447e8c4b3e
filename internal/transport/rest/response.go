// Package rest serves the command API and health probes over net/http.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/japanese-cards/internal/domain"
)

type errorResponse struct {
	Error         string       `json:"error"`
	Fields        []fieldError `json:"fields,omitempty"`
	Notifications []string     `json:"notifications,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps a domain error to its HTTP status. Stage errors are matched
// first: a failed stage may wrap a validation error from an adapter, and the
// request itself was still valid.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrGeneration),
		errors.Is(err, domain.ErrAudioSynthesis),
		errors.Is(err, domain.ErrMutation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMissingCredential):
		return http.StatusPreconditionFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the response for err. Internal errors are logged and
// reported without detail.
func errorBody(ctx context.Context, log *slog.Logger, status int, err error) errorResponse {
	if status == http.StatusInternalServerError {
		log.ErrorContext(ctx, "internal error", slog.String("error", err.Error()))
		return errorResponse{Error: "internal server error"}
	}

	body := errorResponse{Error: err.Error()}
	var verr *domain.ValidationError
	if status == http.StatusBadRequest && errors.As(err, &verr) {
		body.Error = "validation failed"
		for _, fe := range verr.Errors {
			body.Fields = append(body.Fields, fieldError{Field: fe.Field, Message: fe.Message})
		}
	}
	return body
}
