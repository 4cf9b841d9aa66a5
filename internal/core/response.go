// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Envelope is merged into the success body next to "success": true.
type Envelope map[string]any

type ErrorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func success(payload Envelope) Envelope {
	body := make(Envelope, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	return body
}

func OK(w http.ResponseWriter, payload Envelope) {
	JSON(w, http.StatusOK, success(payload))
}

func Created(w http.ResponseWriter, payload Envelope) {
	JSON(w, http.StatusCreated, success(payload))
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, message)
}

func NotFound(w http.ResponseWriter, resource string) {
	writeError(w, http.StatusNotFound, capitalize(resource)+" not found")
}

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Forbidden"
	}
	writeError(w, http.StatusForbidden, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	writeError(w, http.StatusUnauthorized, message)
}

func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// JSONError renders err as {"error": ...}. AppErrors keep their own status
// and message, bare sentinels map to their generic status, anything else
// is logged and reported as a 500.
func JSONError(w http.ResponseWriter, err error) {
	if appErr, ok := AsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			slog.Error("internal server error", "error", appErr.Err)
		}
		writeError(w, appErr.StatusCode, appErr.Message)
		return
	}

	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenRevoked),
		errors.Is(err, ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicateKey):
		writeError(w, http.StatusBadRequest, "Already exists")
	default:
		InternalServerError(w, err)
	}
}
