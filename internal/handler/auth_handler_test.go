package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testSessionConfig = config.SessionConfig{
	Secret:     "handler-test-secret",
	TTL:        time.Hour,
	CookieName: "storefront_session",
	Issuer:     "storefront-test",
}

type authFixture struct {
	auth     *MockAuthService
	revoker  *MockRevoker
	sessions *session.Manager
	handler  *AuthHandler
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		auth:     new(MockAuthService),
		revoker:  new(MockRevoker),
		sessions: session.NewManager(testSessionConfig),
	}
	f.handler = NewAuthHandler(f.auth, f.sessions, f.revoker, testSessionConfig, zerolog.Nop())
	return f
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == testSessionConfig.CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", testSessionConfig.CookieName)
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("Signs in and redirects to profile completion", func(t *testing.T) {
		f := newAuthFixture()
		user := &model.User{ID: uuid.New(), Email: "new@example.com", CoinBalance: 1000}
		f.auth.On("Register", mock.Anything, &model.RegisterRequest{Email: "new@example.com", Password: "secret123"}).Return(user, nil)

		w := httptest.NewRecorder()
		f.handler.Register(w, newRequest(http.MethodPost, "/register", `{"email":"new@example.com","password":"secret123"}`, uuid.Nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"success":true,"redirect":"/complete-profile"}`, w.Body.String())

		cookie := sessionCookie(t, w)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		identity, err := f.sessions.Parse(cookie.Value)
		require.NoError(t, err)
		assert.Equal(t, user.ID, identity.UserID)
		f.auth.AssertExpectations(t)
	})

	t.Run("Email taken", func(t *testing.T) {
		f := newAuthFixture()
		f.auth.On("Register", mock.Anything, mock.Anything).Return(nil, model.ErrEmailTaken)

		w := httptest.NewRecorder()
		f.handler.Register(w, newRequest(http.MethodPost, "/register", `{"email":"a@example.com","password":"secret123"}`, uuid.Nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		f := newAuthFixture()

		w := httptest.NewRecorder()
		f.handler.Register(w, newRequest(http.MethodPost, "/register", `{"email":`, uuid.Nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.auth.AssertNotCalled(t, "Register")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "alice@example.com"}

	tests := []struct {
		name         string
		access       model.Access
		gateErr      error
		wantRedirect string
	}{
		{name: "Complete profile goes home", access: model.Access{Status: model.AccessOK, User: user}, wantRedirect: "/"},
		{name: "Incomplete profile", access: model.Access{Status: model.AccessNeedsProfile, User: user}, wantRedirect: "/complete-profile"},
		{name: "Gate failure", access: model.Access{}, gateErr: errors.New("db down"), wantRedirect: "/complete-profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			f.auth.On("Login", mock.Anything, mock.Anything).Return(user, nil)
			f.auth.On("Gate", mock.Anything, user.ID).Return(tt.access, tt.gateErr)

			w := httptest.NewRecorder()
			f.handler.Login(w, newRequest(http.MethodPost, "/login", `{"email":"alice@example.com","password":"secret123"}`, uuid.Nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantRedirect, decodeBody(t, w)["redirect"])
			assert.NotEmpty(t, sessionCookie(t, w).Value)
		})
	}

	t.Run("Invalid credentials", func(t *testing.T) {
		f := newAuthFixture()
		f.auth.On("Login", mock.Anything, mock.Anything).Return(nil, model.ErrInvalidCredentials)

		w := httptest.NewRecorder()
		f.handler.Login(w, newRequest(http.MethodPost, "/login", `{"email":"alice@example.com","password":"nope"}`, uuid.Nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, model.ErrCodeInvalidCredentials, decodeBody(t, w)["code"])
		assert.Empty(t, w.Result().Cookies())
		f.auth.AssertNotCalled(t, "Gate", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("Revokes token and clears cookie", func(t *testing.T) {
		f := newAuthFixture()
		userID := uuid.New()
		f.revoker.On("Revoke", mock.Anything, "token-"+userID.String(), mock.AnythingOfType("time.Time")).Return(nil)

		w := httptest.NewRecorder()
		f.handler.Logout(w, newRequest(http.MethodGet, "/logout", "", userID))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		cookie := sessionCookie(t, w)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
		f.revoker.AssertExpectations(t)
	})

	t.Run("Revocation failure still logs out", func(t *testing.T) {
		f := newAuthFixture()
		f.revoker.On("Revoke", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

		w := httptest.NewRecorder()
		f.handler.Logout(w, newRequest(http.MethodGet, "/logout", "", uuid.New()))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Empty(t, sessionCookie(t, w).Value)
	})

	t.Run("Anonymous", func(t *testing.T) {
		f := newAuthFixture()

		w := httptest.NewRecorder()
		f.handler.Logout(w, newRequest(http.MethodGet, "/logout", "", uuid.Nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		f.revoker.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Profile(t *testing.T) {
	f := newAuthFixture()
	userID := uuid.New()
	username := "alice"
	f.auth.On("Profile", mock.Anything, userID).Return(&model.ProfileResponse{
		User:         &model.User{ID: userID, Email: "alice@example.com", Username: &username, CoinBalance: 800},
		HasBasicInfo: true,
		HasAddress:   false,
	}, nil)

	w := httptest.NewRecorder()
	f.handler.Profile(w, newRequest(http.MethodGet, "/profile", "", userID))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["has_basic_info"])
	assert.Equal(t, false, body["has_address"])
	user := body["user"].(map[string]any)
	assert.Equal(t, float64(800), user["coin_balance"])
	assert.NotContains(t, user, "password_hash")
}

func TestAuthHandler_CompleteProfile(t *testing.T) {
	userID := uuid.New()
	payload := `{"username":"alice","mobile":"9876543210","address":{"name":"Home","address_line":"1 MG Road","city":"Pune","state":"MH","zip":"411001","phone":"9876543210"}}`

	t.Run("Success", func(t *testing.T) {
		f := newAuthFixture()
		f.auth.On("CompleteProfile", mock.Anything, userID, mock.MatchedBy(func(req *model.CompleteProfileRequest) bool {
			return req.Username == "alice" && req.Address.City == "Pune"
		})).Return(nil)

		w := httptest.NewRecorder()
		f.handler.CompleteProfile(w, newRequest(http.MethodPost, "/complete_profile", payload, userID))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"redirect":"/"}`, w.Body.String())
	})

	t.Run("Invalid mobile", func(t *testing.T) {
		f := newAuthFixture()
		f.auth.On("CompleteProfile", mock.Anything, userID, mock.Anything).
			Return(model.NewValidationError(model.ErrCodeInvalidField, "Mobile number must be 10 digits"))

		w := httptest.NewRecorder()
		f.handler.CompleteProfile(w, newRequest(http.MethodPost, "/complete_profile", payload, userID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Mobile number must be 10 digits", decodeBody(t, w)["error"])
	})
}
