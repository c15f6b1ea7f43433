// Package service holds the business logic of the auth service.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/paperbark/journal/internal/auth/domain"
	"github.com/paperbark/journal/internal/auth/store"
	"github.com/paperbark/journal/pkg/cryptox"
	"github.com/paperbark/journal/pkg/idx"
	"github.com/paperbark/journal/pkg/jwtx"
	"github.com/paperbark/journal/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers unknown username, wrong password and
	// disabled accounts alike, so callers cannot enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrDuplicateUsername reports a registration against a taken username.
	ErrDuplicateUsername = errors.New("duplicate_username")

	// ErrInvalidRefresh covers every way a refresh can fail: bad signature,
	// expiry, malformed token, or an account disabled since issuance.
	ErrInvalidRefresh = errors.New("invalid_refresh_token")
)

// SessionService orchestrates login, registration and refresh. Sessions are
// stateless: a token is trusted purely on signature and expiry, nothing is
// persisted per session and logout is purely client-side.
type SessionService struct {
	Store      store.Store
	AccessCtx  jwtx.SigningContext
	RefreshCtx jwtx.SigningContext
}

// RegisterParams are the fields collected by the registration form.
type RegisterParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// Login verifies username/password and issues a fresh token pair. Every
// failure mode returns ErrInvalidCredentials; the real cause is logged, not
// returned.
func (s *SessionService) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("login rejected: unknown username")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !u.Enabled {
		l.Info("login rejected: account disabled", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}

	ok, err := cryptox.VerifyPassword(password, u.PasswordHash)
	if err != nil {
		// Malformed stored hash. Surfacing the detail would leak store
		// internals; log it and fail like any bad credential.
		l.Error("stored password hash unreadable", "user_id", u.ID, "err", err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		l.Info("login rejected: password mismatch", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(u, time.Now())
}

// Register creates the user and its default preferences as one atomic unit,
// then issues a token pair exactly as login does. The new account is enabled
// and carries the default role.
func (s *SessionService) Register(ctx context.Context, p RegisterParams) (*domain.TokenPair, error) {
	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     strings.TrimSpace(p.Username),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		PasswordHash: hash,
		Role:         domain.DefaultRole,
		Enabled:      true,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return tx.Preferences().CreateDefaultPreferences(ctx, u.ID)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	return s.issuePair(u, time.Now())
}

// Refresh verifies a refresh token and mints a new access token carrying the
// user's current role and username. The user record is re-read so an account
// disabled since issuance is rejected even with a still-valid refresh token.
// The refresh token itself is not rotated; it stays valid until its own
// expiry.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.RefreshCtx.Verify(refreshToken)
	if err != nil {
		l.Info("refresh rejected", "err", err)
		return "", ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("refresh rejected: user gone", "user_id", claims.UserID())
			return "", ErrInvalidRefresh
		}
		return "", err
	}

	if !u.Enabled {
		l.Info("refresh rejected: account disabled", "user_id", u.ID)
		return "", ErrInvalidRefresh
	}

	return s.AccessCtx.Issue(u.ID, u.Username, u.Role.String(), time.Now())
}

// issuePair signs both tokens from the user's current identity. Role is read
// at issuance time; a later role change does not invalidate tokens already
// out there until they expire.
func (s *SessionService) issuePair(u domain.User, now time.Time) (*domain.TokenPair, error) {
	access, err := s.AccessCtx.Issue(u.ID, u.Username, u.Role.String(), now)
	if err != nil {
		return nil, err
	}

	refresh, err := s.RefreshCtx.Issue(u.ID, u.Username, u.Role.String(), now)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessCtx.TTL,
	}, nil
}
