package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/phrasebook/internal/auth"
	"github.com/sakif/phrasebook/internal/handler"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	t.Run("valid credentials", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/login", map[string]string{
			"username": adminUser, "password": adminPass,
		}, "")
		require.Equal(t, http.StatusOK, rr.Code)

		resp := decodeBody[handler.LoginResponse](t, rr)
		assert.True(t, resp.Success)
		assert.Equal(t, adminUser, resp.User.Username)
		assert.NotZero(t, resp.User.ID)
		assert.NotContains(t, rr.Body.String(), adminPass)
		assert.NotContains(t, rr.Body.String(), "password")

		var cookie *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == auth.TokenCookieName {
				cookie = c
			}
		}
		require.NotNil(t, cookie, "token cookie should be set")
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, resp.Token, cookie.Value)
	})

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{"wrong password", map[string]string{"username": adminUser, "password": "nope"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"username": "ghost", "password": adminPass}, http.StatusUnauthorized},
		{"missing password", map[string]string{"username": adminUser}, http.StatusBadRequest},
		{"missing username", map[string]string{"password": adminPass}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/login", tt.body, "")
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Empty(t, rr.Result().Cookies())
		})
	}

	t.Run("failure message is generic", func(t *testing.T) {
		wrongPass := decodeBody[handler.ErrorResponse](t, env.do(t, http.MethodPost, "/api/login",
			map[string]string{"username": adminUser, "password": "nope"}, ""))
		unknownUser := decodeBody[handler.ErrorResponse](t, env.do(t, http.MethodPost, "/api/login",
			map[string]string{"username": "ghost", "password": "nope"}, ""))
		assert.Equal(t, wrongPass, unknownUser)
		assert.Equal(t, "Invalid credentials", wrongPass.Message)
	})
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/logout", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.TokenCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rr := env.do(t, http.MethodGet, "/api/me", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":1,"username":"admin"}`, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/api/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMe_CookieAuth(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: token})
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMe_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)

	expired, err := env.tokens.GenerateWithDuration(1, adminUser, -time.Minute)
	require.NoError(t, err)

	rr := env.do(t, http.MethodGet, "/api/me", nil, expired)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	tests := []struct {
		name       string
		token      string
		body       any
		wantStatus int
	}{
		{"no token", "", map[string]any{"userId": 1, "currentPassword": adminPass, "newPassword": "newpass1"}, http.StatusUnauthorized},
		{"short new password", token, map[string]any{"userId": 1, "currentPassword": adminPass, "newPassword": "12345"}, http.StatusBadRequest},
		{"missing userId", token, map[string]any{"currentPassword": adminPass, "newPassword": "newpass1"}, http.StatusBadRequest},
		{"wrong type", token, `{"userId": "one", "currentPassword": "a", "newPassword": "bbbbbb"}`, http.StatusBadRequest},
		{"another user", token, map[string]any{"userId": 2, "currentPassword": adminPass, "newPassword": "newpass1"}, http.StatusForbidden},
		{"wrong current password", token, map[string]any{"userId": 1, "currentPassword": "nope", "newPassword": "newpass1"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/change-password", tt.body, tt.token)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
		})
	}

	t.Run("success", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/change-password", map[string]any{
			"userId": 1, "currentPassword": adminPass, "newPassword": "newpass1",
		}, token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.True(t, decodeBody[handler.SuccessResponse](t, rr).Success)

		rr = env.do(t, http.MethodPost, "/api/login", map[string]string{
			"username": adminUser, "password": adminPass,
		}, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		rr = env.do(t, http.MethodPost, "/api/login", map[string]string{
			"username": adminUser, "password": "newpass1",
		}, "")
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestChangePassword_DeletedUser(t *testing.T) {
	env := newTestEnv(t)

	// A valid token for a user id that was never stored.
	token, err := env.tokens.Generate(42, "ghost")
	require.NoError(t, err)

	rr := env.do(t, http.MethodPost, "/api/change-password", map[string]any{
		"userId": 42, "currentPassword": "whatever", "newPassword": "newpass1",
	}, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPasswordHashNeverStoredInPlaintext(t *testing.T) {
	env := newTestEnv(t)

	authUser, err := env.db.GetByUsername(context.Background(), adminUser)
	require.NoError(t, err)
	assert.NotEqual(t, adminPass, authUser.PasswordHash)
	assert.True(t, strings.HasPrefix(authUser.PasswordHash, "$2"))
}
