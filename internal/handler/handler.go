package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/session"

	"github.com/google/uuid"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var errInvalidJSON = model.NewValidationError(model.ErrCodeInvalidJSON, "Request body must be valid JSON")

// decodeJSON decodes the request body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidJSON
	}
	return nil
}

// currentUser returns the authenticated user's id, or uuid.Nil.
func currentUser(r *http.Request) uuid.UUID {
	if id, ok := session.FromContext(r.Context()); ok {
		return id.UserID
	}
	return uuid.Nil
}
