package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/akulakov/docscan/internal/crypto"
	"github.com/akulakov/docscan/internal/errs"
	"github.com/akulakov/docscan/internal/limiter"
	"github.com/akulakov/docscan/internal/model"
	"github.com/akulakov/docscan/internal/repository"
)

// AccessClaims is the JWT payload issued on login and checked by the HTTP
// auth middleware.
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService defines registration and authentication operations.
type AuthService interface {
	// Register creates a new user with secure password hashing and the
	// starting credit balance.
	Register(ctx context.Context, username, password string) (userID string, err error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, model.User, error)
}

type AuthServiceImpl struct {
	users        repository.UserRepository
	signKey      []byte
	accessTTL    time.Duration
	lim          limiter.Limiter
	startCredits int64
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter, startCredits int64) *AuthServiceImpl {
	if lim == nil {
		lim = limiter.Nop{}
	}
	if startCredits <= 0 {
		startCredits = 20
	}
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim, startCredits: startCredits}
}

// Register creates a new user record with a per-user auth salt.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: empty username/password", errs.ErrValidation)
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	salt, err := pkgcrypto.NewSalt()
	if err != nil {
		return "", err
	}

	u := &model.User{
		ID:       uid,
		Username: username,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), salt),
		SaltAuth: salt,
		Role:     model.RoleUser,
		Credits:  s.startCredits,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	return uid.String(), nil
}

// LoginWithIP authenticates with rate limiting by (username, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, model.User, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		// Record failure; if the threshold was reached, report rate-limited.
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// Wrong password and unknown user are indistinguishable to the caller.
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, username, ipHash)

	access, exp, err := s.issueAccessToken(u)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

// issueAccessToken creates a signed HS256 JWT carrying the user's role.
func (s *AuthServiceImpl) issueAccessToken(u *model.User) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := AccessClaims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

// ParseAccessToken validates a signed token and returns its claims.
func ParseAccessToken(token string, signKey []byte) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return signKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.Join(errs.ErrUnauthorized, err)
	}
	return claims, nil
}
