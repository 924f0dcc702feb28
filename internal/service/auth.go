// Package service contains application services for authentication and
// case management.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/thskolan/casetrack/internal/crypto"
	"github.com/thskolan/casetrack/internal/errs"
	"github.com/thskolan/casetrack/internal/limiter"
	"github.com/thskolan/casetrack/internal/model"
	"github.com/thskolan/casetrack/internal/repository"
	"github.com/thskolan/casetrack/internal/token"
)

// Mode selects the token strategy a deployment issues and accepts.
type Mode int

const (
	// ModeJWT issues signed self-contained tokens; stateless verification.
	ModeJWT Mode = iota
	// ModeSession issues opaque tokens persisted server-side.
	ModeSession
)

const (
	// DefaultAccessTTL is the jwt lifetime when none is configured.
	DefaultAccessTTL = 60 * time.Second
	// SessionTTL is the opaque token lifetime; renew extends by the same span.
	SessionTTL = 24 * time.Hour
)

// AuthService defines account and token operations.
type AuthService interface {
	// Register creates a new account with secure password hashing.
	Register(ctx context.Context, username, password string) (*model.Credential, error)
	// UsernameIsAvailable reports whether a username is free to register.
	UsernameIsAvailable(ctx context.Context, username string) (bool, error)
	// VerifyCredentials checks a username/password pair without side effects.
	VerifyCredentials(ctx context.Context, username, password string) (bool, error)
	// Login applies rate-limiting, authenticates and issues a token.
	Login(ctx context.Context, username, password, ip string) (model.Issued, error)
	// Verify validates a token and returns its claims.
	Verify(ctx context.Context, tok string) (map[string]string, error)
	// Renew extends an opaque token's lifetime and returns the new expiry.
	Renew(ctx context.Context, tok string) (time.Time, error)
	// Logout removes an opaque session token.
	Logout(ctx context.Context, tok string) error
	// DeleteAccount removes an account after verifying its password.
	DeleteAccount(ctx context.Context, username, password string) (uuid.UUID, error)
}

type AuthServiceImpl struct {
	creds     repository.CredentialRepository
	codec     *token.Codec
	mode      Mode
	accessTTL time.Duration
	lim       limiter.Limiter
	now       func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
// A non-positive accessTTL falls back to DefaultAccessTTL.
func NewAuthService(creds repository.CredentialRepository, codec *token.Codec, mode Mode, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	return &AuthServiceImpl{
		creds:     creds,
		codec:     codec,
		mode:      mode,
		accessTTL: accessTTL,
		lim:       lim,
		now:       time.Now,
	}
}

// Register creates a credential with a fresh salt and hashed password.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (*model.Credential, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: empty username or password", errs.ErrInvalidArgument)
	}
	taken, err := s.creds.Exists(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: username is taken", errs.ErrInvalidArgument)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	salt, err := pkgcrypto.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := pkgcrypto.HashPassword(password, salt, pkgcrypto.DefaultIterations)
	if err != nil {
		return nil, err
	}

	c := &model.Credential{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
		Iterations:   pkgcrypto.DefaultIterations,
	}
	if err := s.creds.Create(ctx, c); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			// lost the race against a concurrent registration
			return nil, fmt.Errorf("%w: username is taken", errs.ErrInvalidArgument)
		}
		return nil, err
	}
	return c, nil
}

// UsernameIsAvailable reports whether no credential holds the username.
func (s *AuthServiceImpl) UsernameIsAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := s.creds.Exists(ctx, username)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// VerifyCredentials recomputes the stored hash and compares in constant time.
// Unknown usernames report false without error.
func (s *AuthServiceImpl) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	c, err := s.creds.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return pkgcrypto.VerifyPassword(password, c.Salt, c.PasswordHash, c.Iterations), nil
}

// Login authenticates with rate limiting by (username, ip) and issues a token
// according to the configured mode.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password, ip string) (model.Issued, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Issued{}, err
	}
	if !allowed {
		return model.Issued{}, errs.ErrRateLimited
	}

	c, err := s.creds.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
				return model.Issued{}, errs.ErrRateLimited
			}
			return model.Issued{}, fmt.Errorf("%w: no such user", errs.ErrNotFound)
		}
		return model.Issued{}, err
	}
	if !pkgcrypto.VerifyPassword(password, c.Salt, c.PasswordHash, c.Iterations) {
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.Issued{}, errs.ErrRateLimited
		}
		return model.Issued{}, fmt.Errorf("%w: wrong password", errs.ErrNotAuthorized)
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, username, ipHash)

	switch s.mode {
	case ModeSession:
		return s.issueSessionToken(ctx, c)
	default:
		return s.issueJWT(c)
	}
}

func (s *AuthServiceImpl) issueJWT(c *model.Credential) (model.Issued, error) {
	exp := s.now().Add(s.accessTTL)
	claims := map[string]string{
		"username": c.Username,
		"exp":      strconv.FormatInt(exp.Unix(), 10),
	}
	tok, err := s.codec.Build(claims)
	if err != nil {
		return model.Issued{}, err
	}
	return model.Issued{Token: tok, ExpiresAt: exp}, nil
}

func (s *AuthServiceImpl) issueSessionToken(ctx context.Context, c *model.Credential) (model.Issued, error) {
	tok, err := pkgcrypto.GenerateToken(pkgcrypto.SessionTokenLength)
	if err != nil {
		return model.Issued{}, err
	}
	exp := s.now().Add(SessionTTL)
	st := model.SessionToken{Token: tok, UserID: c.ID, ExpiresAt: exp}
	if err := s.creds.AddToken(ctx, st); err != nil {
		return model.Issued{}, err
	}
	return model.Issued{Token: tok, ExpiresAt: exp}, nil
}

// Verify validates a token and returns its claims. In session mode the
// owner's expired tokens are pruned lazily on every lookup.
func (s *AuthServiceImpl) Verify(ctx context.Context, tok string) (map[string]string, error) {
	if s.mode == ModeJWT {
		return s.codec.ReadClaims(tok)
	}

	st, err := s.creds.GetToken(ctx, tok)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%w: not authorized", errs.ErrNotAuthorized)
		}
		return nil, err
	}

	now := s.now()
	_ = s.creds.PruneExpired(ctx, st.UserID, now)

	if !st.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: login session expired", errs.ErrNotAuthorized)
	}

	c, err := s.creds.GetByID(ctx, st.UserID)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"username": c.Username,
		"exp":      strconv.FormatInt(st.ExpiresAt.Unix(), 10),
	}, nil
}

// Renew extends a session token by SessionTTL from now and returns the new
// expiry. Not available in jwt mode.
func (s *AuthServiceImpl) Renew(ctx context.Context, tok string) (time.Time, error) {
	if s.mode == ModeJWT {
		return time.Time{}, fmt.Errorf("%w: jwt tokens cannot be renewed", errs.ErrNotAllowed)
	}
	until, err := s.creds.RenewToken(ctx, tok, s.now().Add(SessionTTL))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return time.Time{}, fmt.Errorf("%w: not authorized", errs.ErrNotAuthorized)
		}
		return time.Time{}, err
	}
	return until, nil
}

// Logout removes a session token. Unknown tokens are a no-op.
func (s *AuthServiceImpl) Logout(ctx context.Context, tok string) error {
	if s.mode == ModeJWT {
		return nil
	}
	if err := s.creds.DeleteToken(ctx, tok); err != nil && !errors.Is(err, errs.ErrNotFound) {
		return err
	}
	return nil
}

// DeleteAccount verifies the password and removes the credential; session
// tokens go with it by cascade.
func (s *AuthServiceImpl) DeleteAccount(ctx context.Context, username, password string) (uuid.UUID, error) {
	c, err := s.creds.GetByUsername(ctx, username)
	if err != nil {
		return uuid.Nil, err
	}
	if !pkgcrypto.VerifyPassword(password, c.Salt, c.PasswordHash, c.Iterations) {
		return uuid.Nil, fmt.Errorf("%w: wrong password", errs.ErrNotAuthorized)
	}
	if err := s.creds.Delete(ctx, c.ID); err != nil {
		return uuid.Nil, err
	}
	return c.ID, nil
}
