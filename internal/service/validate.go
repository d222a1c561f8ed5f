package service

import (
	"net/mail"
	"strings"
	"unicode"

	"storefront/internal/model"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordLength = 72
	maxUsernameLength = 50
)

// normalizeEmail lower-cases and trims email and checks it is a bare address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", model.NewValidationError(model.ErrCodeMissingField, "Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", model.NewValidationError(model.ErrCodeInvalidField, "Email address is not valid")
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return model.NewValidationError(model.ErrCodeInvalidField, "Password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return model.NewValidationError(model.ErrCodeInvalidField, "Password must be at most %d bytes", maxPasswordLength)
	}
	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return model.NewValidationError(model.ErrCodeMissingField, "Username is required")
	}
	if len([]rune(username)) > maxUsernameLength {
		return model.NewValidationError(model.ErrCodeInvalidField, "Username must be at most %d characters", maxUsernameLength)
	}
	return nil
}

// validateMobile accepts 10 to 15 digits with an optional leading '+'.
func validateMobile(mobile string) error {
	if mobile == "" {
		return model.NewValidationError(model.ErrCodeMissingField, "Mobile number is required")
	}
	digits := strings.TrimPrefix(mobile, "+")
	if len(digits) < 10 || len(digits) > 15 {
		return model.NewValidationError(model.ErrCodeInvalidField, "Mobile number must have 10 to 15 digits")
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return model.NewValidationError(model.ErrCodeInvalidField, "Mobile number must have 10 to 15 digits")
		}
	}
	return nil
}

// normalizeAddress trims every field of req and checks the required ones.
func normalizeAddress(req *model.AddressRequest) (model.AddressRequest, error) {
	if req == nil {
		return model.AddressRequest{}, model.NewValidationError(model.ErrCodeMissingField, "Address is required")
	}

	a := model.AddressRequest{
		Name:        strings.TrimSpace(req.Name),
		AddressLine: strings.TrimSpace(req.AddressLine),
		City:        strings.TrimSpace(req.City),
		State:       strings.TrimSpace(req.State),
		Zip:         strings.TrimSpace(req.Zip),
		Phone:       strings.TrimSpace(req.Phone),
		IsDefault:   req.IsDefault,
	}

	required := []struct {
		field, value string
	}{
		{"name", a.Name},
		{"address_line", a.AddressLine},
		{"city", a.City},
		{"state", a.State},
		{"zip", a.Zip},
		{"phone", a.Phone},
	}
	for _, r := range required {
		if r.value == "" {
			return a, model.NewValidationError(model.ErrCodeMissingField, "Address field %s is required", r.field)
		}
	}

	return a, nil
}
