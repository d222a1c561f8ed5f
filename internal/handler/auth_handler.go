package handler

import (
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/response"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/rs/zerolog"
)

// AuthHandler handles account, session and profile requests.
type AuthHandler struct {
	auth     service.AuthService
	sessions *session.Manager
	revoker  session.Revoker
	cookie   config.SessionConfig
	logger   zerolog.Logger
}

// NewAuthHandler creates a new auth handler. A nil revoker disables logout revocation.
func NewAuthHandler(
	auth service.AuthService,
	sessions *session.Manager,
	revoker session.Revoker,
	cookie config.SessionConfig,
	logger zerolog.Logger,
) *AuthHandler {
	if revoker == nil {
		revoker = session.NopRevoker{}
	}
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		revoker:  revoker,
		cookie:   cookie,
		logger:   logger.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /register. The new user is signed in and sent to complete their profile.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	user, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	if err := h.startSession(w, user); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusCreated, response.Fields{"redirect": response.ProfileRedirect})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	user, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	if err := h.startSession(w, user); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	redirect := "/"
	access, err := h.auth.Gate(r.Context(), user.ID)
	if err != nil || access.Status != model.AccessOK {
		redirect = response.ProfileRedirect
	}

	response.OK(w, http.StatusOK, response.Fields{"redirect": redirect})
}

// Logout handles GET /logout: the token is revoked, the cookie cleared and the client sent home.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := session.FromContext(r.Context()); ok {
		if err := h.revoker.Revoke(r.Context(), id.TokenID, id.ExpiresAt); err != nil {
			h.logger.Warn().Err(err).Str("user_id", id.UserID.String()).Msg("failed to revoke session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Profile handles GET /profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.auth.Profile(r.Context(), currentUser(r))
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusOK, response.Fields{
		"user":           profile.User,
		"has_basic_info": profile.HasBasicInfo,
		"has_address":    profile.HasAddress,
	})
}

// CompleteProfile handles POST /complete_profile.
func (h *AuthHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	var req model.CompleteProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	if err := h.auth.CompleteProfile(r.Context(), currentUser(r), &req); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusOK, response.Fields{"redirect": "/"})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, user *model.User) error {
	token, expiresAt, err := h.sessions.Issue(user.ID, user.Email)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
