// Package response writes the storefront JSON envelope: {success, error?, code?, ...payload}.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// ProfileRedirect is where clients send users whose profile is incomplete.
const ProfileRedirect = "/complete-profile"

// Fields is the payload merged into a success envelope.
type Fields map[string]any

// JSON writes data as-is with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK writes {success: true, ...fields}.
func OK(w http.ResponseWriter, status int, fields Fields) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	JSON(w, status, body)
}

// Error writes {success: false, error, code}.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, map[string]any{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindUnauthenticated:
		return http.StatusUnauthorized
	case model.KindProfileIncomplete:
		return http.StatusForbidden
	case model.KindEmptyCart, model.KindInsufficientCoins, model.KindValidation:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err as an envelope. Domain errors carry their own message and code;
// anything else is logged and reported as a generic internal error.
func Fail(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		Error(w, http.StatusInternalServerError, model.ErrCodeInternalError, "Something went wrong, please try again")
		return
	}

	status := StatusFor(de.Kind)
	logger.Debug().
		Str("code", de.Code).
		Int("status", status).
		Str("path", r.URL.Path).
		Msg("request rejected")

	body := map[string]any{
		"success": false,
		"error":   de.Message,
		"code":    de.Code,
	}
	if de.Kind == model.KindProfileIncomplete {
		body["redirect"] = ProfileRedirect
	}
	JSON(w, status, body)
}
