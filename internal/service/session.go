// Package service holds the application's stateful collaborators that sit
// between handlers and repositories: the session (auth) service and the
// activity event publisher.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/daikitazaki/foodswho/internal/config"
	"github.com/daikitazaki/foodswho/internal/model"
	"github.com/daikitazaki/foodswho/internal/repository"
	"github.com/daikitazaki/foodswho/internal/utils"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// Session is the result of a successful sign-in or refresh.
type Session struct {
	User    model.User
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// SessionService implements sign-up, sign-in, sign-out and the current
// session lookup on top of the users and refresh_tokens tables.
type SessionService struct {
	cfg    config.Config
	users  *repository.UserRepo
	tokens *repository.TokenRepo
	deny   Denylist
	log    *zap.Logger
}

// NewSessionService wires the service.  deny may be nil, in which case
// signed-out access tokens stay valid until they expire.
func NewSessionService(cfg config.Config, users *repository.UserRepo, tokens *repository.TokenRepo, deny Denylist, log *zap.Logger) *SessionService {
	return &SessionService{cfg: cfg, users: users, tokens: tokens, deny: deny, log: log}
}

// SignUp creates the account.  No session is opened; the user signs in
// separately, so the only write is the users row.
func (s *SessionService) SignUp(ctx context.Context, email, password string) (model.User, error) {
	return s.users.Create(ctx, email, password, s.cfg.BcryptCost)
}

// SignIn checks the password and opens a session.
func (s *SessionService) SignIn(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

// Refresh rotates a refresh token: the old one is revoked and a new pair
// is issued.
func (s *SessionService) Refresh(ctx context.Context, raw string) (Session, error) {
	hash := utils.HashRefreshRaw(raw)
	tok, err := s.tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return Session{}, err
	}
	u, err := s.users.GetByID(ctx, tok.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return Session{}, err
	}
	// Only the caller that flips revoked_at gets the new pair.
	revoked, err := s.tokens.RevokeByHash(ctx, hash)
	if err != nil {
		return Session{}, err
	}
	if !revoked {
		return Session{}, ErrInvalidRefreshToken
	}
	return s.issue(ctx, u)
}

// SignOut ends a session.  The refresh token is revoked when given,
// otherwise every refresh token of the access token's owner is.  The
// access token itself is denylisted until it expires.
func (s *SessionService) SignOut(ctx context.Context, access, refresh string) error {
	claims, claimsErr := utils.ParseAccessToken(s.cfg.JWTSecret, access)
	if refresh == "" && claimsErr != nil {
		return nil
	}

	var errs error
	if refresh != "" {
		_, err := s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(refresh))
		errs = multierr.Append(errs, err)
	} else {
		errs = multierr.Append(errs, s.tokens.RevokeAllForUser(ctx, claims.UserID))
	}
	if claimsErr == nil && claims.JTI != "" && s.deny != nil {
		errs = multierr.Append(errs, s.deny.Revoke(ctx, claims.JTI, time.Until(claims.Exp)))
	}
	if errs != nil {
		return fmt.Errorf("sign out: %w", errs)
	}
	return nil
}

// Current resolves an access token to its user.  It returns nil with no
// error when there is no session: empty, invalid, expired or signed-out
// tokens, or a user that no longer exists.
func (s *SessionService) Current(ctx context.Context, access string) (*model.User, error) {
	if access == "" {
		return nil, nil
	}
	claims, err := utils.ParseAccessToken(s.cfg.JWTSecret, access)
	if err != nil {
		return nil, nil
	}
	if s.deny != nil && claims.JTI != "" {
		revoked, err := s.deny.IsRevoked(ctx, claims.JTI)
		if err != nil {
			// An unreachable denylist should not log everybody out.
			s.log.Warn("denylist lookup failed", zap.Error(err))
		} else if revoked {
			return nil, nil
		}
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SessionService) issue(ctx context.Context, u model.User) (Session, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Email, s.cfg.AccessTTLMin)
	if err != nil {
		return Session{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return Session{}, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, fmt.Errorf("store refresh token: %w", err)
	}
	return Session{User: u, Access: access, Refresh: refresh}, nil
}
