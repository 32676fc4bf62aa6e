package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"medicase/internal/config"
	"medicase/internal/model"
)

// TokenUse distinguishes access tokens from refresh tokens so that a refresh
// token cannot be presented on protected endpoints.
type TokenUse string

const (
	UseAccess  TokenUse = "access"
	UseRefresh TokenUse = "refresh"
)

var (
	// ErrTokenInvalid indicates a bad signature, wrong issuer, or malformed claims.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired indicates a well-signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// seam for expiry boundary tests
var timeNow = time.Now

// Claims are the JWT claims carried by every issued token.
type Claims struct {
	Email    string   `json:"email"`
	Role     string   `json:"role"`
	TokenUse TokenUse `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed bearer tokens. The signing
// secret is process-scoped configuration; the service holds no mutable state
// and is safe for concurrent use.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService builds a TokenService from configuration.
func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("auth secret is not configured")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token TTLs must be greater than zero")
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "medicase"
	}
	return &TokenService{
		secret:     []byte(cfg.Secret),
		issuer:     issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// TokenPair bundles the two tokens returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// IssuePair signs an access token and a refresh token for the user.
func (s *TokenService) IssuePair(u *model.User) (TokenPair, error) {
	access, err := s.issue(u, UseAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.issue(u, UseRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) issue(u *model.User, use TokenUse, ttl time.Duration) (string, error) {
	now := timeNow().UTC()
	claims := Claims{
		Email:    u.Email,
		Role:     string(u.Role),
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature first, then its claims. A forged token
// always fails with ErrTokenInvalid regardless of its expiry; only a token
// with a valid signature can report ErrTokenExpired.
func (s *TokenService) Verify(token string, use TokenUse) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return timeNow().UTC() }))
	if err != nil {
		// jwt/v5 validates the signature before registered claims, so an
		// expiry error here implies the signature already checked out.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Issuer != s.issuer {
		return nil, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrTokenInvalid
	}
	if claims.TokenUse != use {
		return nil, ErrTokenInvalid
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
