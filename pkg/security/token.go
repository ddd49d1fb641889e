package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

var ErrTokenInvalid = errors.New("invalid token")

type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// Claims is the payload of both token kinds. Type keeps an access token from
// being accepted where a refresh token is expected even if the secrets were
// misconfigured to the same value.
type Claims struct {
	UserID string    `json:"user_id"`
	Role   string    `json:"role"`
	Type   TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies access and refresh tokens. Each kind has its
// own secret and lifetime.
type TokenIssuer struct {
	issuer  string
	access  TokenConfig
	refresh TokenConfig
	now     func() time.Time
}

func NewTokenIssuer(issuer string, access, refresh TokenConfig) (*TokenIssuer, error) {
	if access.Secret == "" || refresh.Secret == "" {
		return nil, errors.New("token secrets can't be empty")
	}

	if access.Secret == refresh.Secret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	if access.TTL <= 0 || refresh.TTL <= 0 {
		return nil, errors.New("token lifetimes must be bigger than 0")
	}

	return &TokenIssuer{
		issuer:  issuer,
		access:  access,
		refresh: refresh,
		now:     time.Now,
	}, nil
}

// WithClock replaces the time source, used by tests to move past expiry.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

func (t *TokenIssuer) IssueAccess(userID, role string) (string, error) {
	return t.issue(AccessToken, userID, role)
}

func (t *TokenIssuer) IssueRefresh(userID, role string) (string, error) {
	return t.issue(RefreshToken, userID, role)
}

// RefreshTTL is exposed so the transport can match cookie lifetimes.
func (t *TokenIssuer) RefreshTTL() time.Duration { return t.refresh.TTL }

func (t *TokenIssuer) AccessTTL() time.Duration { return t.access.TTL }

func (t *TokenIssuer) issue(kind TokenKind, userID, role string) (string, error) {
	cfg := t.config(kind)
	now := t.now()

	claims := Claims{
		UserID: userID,
		Role:   role,
		Type:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token, %w", kind, err)
	}

	return s, nil
}

// Verify checks the signature, expiry and kind of token and returns its claims.
// Every failure is reported as ErrTokenInvalid.
func (t *TokenIssuer) Verify(token string, kind TokenKind) (*Claims, error) {
	cfg := t.config(kind)

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !parsed.Valid || claims.Type != kind || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (t *TokenIssuer) config(kind TokenKind) TokenConfig {
	if kind == RefreshToken {
		return t.refresh
	}

	return t.access
}
