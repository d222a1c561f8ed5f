package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered customer.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     *string   `json:"username,omitempty" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Mobile       *string   `json:"mobile,omitempty" db:"mobile"`
	CoinBalance  int64     `json:"coin_balance" db:"coin_balance"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// HasBasicInfo reports whether username and mobile are both set.
func (u *User) HasBasicInfo() bool {
	return u.Username != nil && *u.Username != "" && u.Mobile != nil && *u.Mobile != ""
}

// RegisterRequest is the payload of POST /register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// LoginRequest is the payload of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CompleteProfileRequest is the payload of POST /complete_profile.
type CompleteProfileRequest struct {
	Username string         `json:"username"`
	Mobile   string         `json:"mobile"`
	Address  AddressRequest `json:"address"`
}

// ProfileResponse describes the caller's account and completion state.
type ProfileResponse struct {
	User         *User `json:"user"`
	HasBasicInfo bool  `json:"has_basic_info"`
	HasAddress   bool  `json:"has_address"`
}

// AccessStatus is the outcome of the access gate.
type AccessStatus int

const (
	AccessOK AccessStatus = iota
	AccessNeedsLogin
	AccessNeedsProfile
)

func (s AccessStatus) String() string {
	switch s {
	case AccessOK:
		return "ok"
	case AccessNeedsLogin:
		return "needs_login"
	case AccessNeedsProfile:
		return "needs_profile"
	default:
		return "unknown"
	}
}

// Access is returned by the gate: the resolved user when Status is AccessOK or AccessNeedsProfile.
type Access struct {
	Status AccessStatus
	User   *User
}

// Err converts a non-OK access result into the matching domain error.
func (a Access) Err() error {
	switch a.Status {
	case AccessOK:
		return nil
	case AccessNeedsProfile:
		return ErrProfileIncomplete
	default:
		return ErrUnauthenticated
	}
}
