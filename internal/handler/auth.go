package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/phrasebook/internal/apperror"
	"github.com/sakif/phrasebook/internal/auth"
	"github.com/sakif/phrasebook/internal/model"
	"github.com/sakif/phrasebook/internal/service"
)

// AuthHandler manages login, logout and password changes.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLogin          → check credentials, issue the session token
//   - HandleLogout         → clear the token cookie
//   - HandleMe             → return the logged-in user
//   - HandleChangePassword → replace the caller's own password
type AuthHandler struct {
	service      *service.AuthService
	tokenTTL     int // seconds, for the cookie MaxAge
	secureCookie bool
	logger       *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, tokens *auth.TokenService, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:      svc,
		tokenTTL:     int(tokens.TTL().Seconds()),
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the identity and the token. The token is also set as
// an HttpOnly cookie for browser clients; API clients send it as a Bearer header.
type LoginResponse struct {
	Success bool             `json:"success"`
	User    model.PublicUser `json:"user"`
	Token   string           `json:"token"`
}

type changePasswordRequest struct {
	UserID          int64  `json:"userId" validate:"required"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// HandleLogin checks a username/password pair.
//
// HTTP: POST /api/login
// REQUEST BODY: {"username": "admin", "password": "..."}
//
// Both failure cases (unknown user, wrong password) produce the same 401.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setTokenCookie(w, result.Token, h.tokenTTL)

	writeJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		User:    result.User.Public(),
		Token:   result.Token,
	})
}

// HandleLogout clears the token cookie. Tokens are stateless, so one already
// copied elsewhere stays valid until it expires.
//
// HTTP: POST /api/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.setTokenCookie(w, "", -1)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleMe returns the authenticated user's public profile.
//
// HTTP: GET /api/me
// Auth: Required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("valid authentication required"))
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}

// HandleChangePassword replaces the caller's password.
//
// HTTP: POST /api/change-password
// Auth: Required
// REQUEST BODY: {"userId": 1, "currentPassword": "...", "newPassword": "..."}
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), actorID, req.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Password changed successfully"})
}

// setTokenCookie writes the session cookie. maxAge -1 deletes it.
// HttpOnly keeps it away from JavaScript; SameSite=Lax keeps it off
// cross-site POSTs.
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
