package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bloggers-platform/accounts-api/internal/core/domain"
)

// TokenIssuer signs and verifies compact access tokens carrying a user id.
// The signing key and TTL are process-wide configuration; rotation is out of
// scope.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Sign issues an HS256 token for the given user id.
func (t *TokenIssuer) Sign(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(t.ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses a token and yields the user id it carries. Malformed,
// expired and wrongly-signed tokens all fail with Unauthorized.
func (t *TokenIssuer) Verify(token string) (string, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", domain.NewError(domain.CodeUnauthorized, "Invalid token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.NewError(domain.CodeUnauthorized, "Invalid token")
	}
	return sub, nil
}
