package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sakif/phrasebook/internal/apperror"
	"github.com/sakif/phrasebook/internal/auth"
	"github.com/sakif/phrasebook/internal/model"
	"github.com/sakif/phrasebook/internal/repository"
)

// invalidCredentials is the only message a failed login ever produces, so a
// caller cannot tell an unknown username from a wrong password.
const invalidCredentials = "Invalid credentials"

// AuthService handles the authentication business logic.
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued token so the handler can
// set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Login checks a username/password pair and issues a session token.
// Unknown usernames still pay for a bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("username", "Username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("service/auth: looking up %q: %w", username, err)
		}
		_ = s.passwords.Verify(s.fallbackHash(), password)
		s.logger.Warn("login failed", slog.String("username", username))
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, fmt.Errorf("service/auth: verifying password: %w", err)
		}
		s.logger.Warn("login failed", slog.String("username", username))
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	s.logger.Info("user logged in",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// ChangePassword replaces a user's password after checking the current one.
// actorID is the authenticated caller; only users may change their own password.
func (s *AuthService) ChangePassword(ctx context.Context, actorID, userID int64, current, next string) error {
	if actorID != userID {
		return apperror.Forbidden("You can only change your own password")
	}
	if current == "" {
		return apperror.ValidationFailed("currentPassword", "currentPassword is a required field")
	}
	if len(next) < auth.MinPasswordLength {
		return apperror.ValidationFailed("newPassword",
			fmt.Sprintf("newPassword must be at least %d characters in length", auth.MinPasswordLength))
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.passwords.Verify(user.PasswordHash, current); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return apperror.Unauthorized("Current password is incorrect")
		}
		return fmt.Errorf("service/auth: verifying password: %w", err)
	}

	if err := s.setPassword(ctx, user, next); err != nil {
		return err
	}

	s.logger.Info("password changed", slog.Int64("userID", user.ID))
	return nil
}

// ResetPassword sets a new password without checking the old one. It backs
// the passwd command and is not reachable over HTTP.
func (s *AuthService) ResetPassword(ctx context.Context, username, next string) error {
	if len(next) < auth.MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters in length", auth.MinPasswordLength))
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return err
	}

	if err := s.setPassword(ctx, user, next); err != nil {
		return err
	}

	s.logger.Info("password reset", slog.String("username", user.Username))
	return nil
}

// EnsureAdmin creates the initial account when there are no users at all.
// It reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	n, err := s.users.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("service/auth: counting users: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return false, apperror.ValidationFailed("username", "admin username must not be blank")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return false, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{Username: username, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return false, fmt.Errorf("service/auth: creating admin: %w", err)
	}

	s.logger.Info("admin user created", slog.String("username", user.Username))
	return true, nil
}

// GetUserByID is used by /api/me after the middleware has validated the token.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetUserByID(ctx, id)
}

func (s *AuthService) setPassword(ctx context.Context, user *model.User, plaintext string) error {
	hash, err := s.passwords.Hash(plaintext)
	if err != nil {
		return apperror.ValidationFailed("newPassword", err.Error())
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("service/auth: updating password for user %d: %w", user.ID, err)
	}
	return nil
}

// fallbackHash is compared against when the username does not exist.
func (s *AuthService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.passwords.Hash("phrasebook-no-such-user")
		if err != nil {
			s.logger.Error("failed to build fallback hash", slog.String("error", err.Error()))
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
