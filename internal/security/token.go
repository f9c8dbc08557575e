package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cityconnect/internal/apperr"
	"cityconnect/internal/models"
)

const keyIDHeader = "kid"

type AccessClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the verified identity behind a request.
type Principal struct {
	UserID string
	Role   models.Role
}

type signingKey struct {
	id     string
	secret []byte
}

// TokenManager issues HS512 tokens with the primary key and verifies tokens
// signed by any configured key, so keys can be rotated without logging
// everybody out.
type TokenManager struct {
	primary signingKey
	keys    map[string][]byte
	ttl     time.Duration
	now     func() time.Time
}

// NewTokenManager parses "kid:secret" entries. The first entry signs.
func NewTokenManager(entries []string, ttl time.Duration) (*TokenManager, error) {
	if len(entries) == 0 {
		return nil, errors.New("at least one signing key is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	m := &TokenManager{
		keys: make(map[string][]byte, len(entries)),
		ttl:  ttl,
		now:  time.Now,
	}
	for i, entry := range entries {
		id, secret, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok || id == "" || secret == "" {
			return nil, fmt.Errorf("signing key %d: expected kid:secret", i)
		}
		if _, dup := m.keys[id]; dup {
			return nil, fmt.Errorf("signing key %q configured twice", id)
		}
		m.keys[id] = []byte(secret)
		if i == 0 {
			m.primary = signingKey{id: id, secret: []byte(secret)}
		}
	}
	return m, nil
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func (m *TokenManager) Issue(userID string, role models.Role) (string, error) {
	now := m.now()
	claims := AccessClaims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	token.Header[keyIDHeader] = m.primary.id
	signed, err := token.SignedString(m.primary.secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Verify returns apperr.ErrMissingToken for an empty token and
// apperr.ErrInvalidToken for anything that fails signature, expiry or
// claim checks.
func (m *TokenManager) Verify(tokenStr string) (Principal, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return Principal{}, apperr.MissingToken("authentication token is required")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, m.keyFor,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, apperr.InvalidToken("token has expired")
		}
		return Principal{}, apperr.InvalidToken("token is invalid")
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return Principal{}, apperr.InvalidToken("token is invalid")
	}

	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return Principal{}, apperr.InvalidToken("token carries an unknown role")
	}

	return Principal{UserID: claims.UserID, Role: role}, nil
}

func (m *TokenManager) keyFor(token *jwt.Token) (interface{}, error) {
	id, _ := token.Header[keyIDHeader].(string)
	if id == "" {
		return m.primary.secret, nil
	}
	secret, ok := m.keys[id]
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", id)
	}
	return secret, nil
}
