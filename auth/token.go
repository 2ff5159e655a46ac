package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec issues and validates compact signed bearer tokens (HS256).
// The signing key is read-only after construction, so a single codec is safe
// for concurrent use. Validation is stateless: there is no server-side
// revocation, a token stays valid until its expiry.
type TokenCodec struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	now        func() time.Time
}

// NewTokenCodec creates a TokenCodec. The key must be at least 32 bytes
// (256-bit) for HS256.
func NewTokenCodec(signingKey []byte, ttl time.Duration, issuer string) (*TokenCodec, error) {
	if len(signingKey) < 32 {
		return nil, fmt.Errorf("signing key must be at least 32 bytes, got %d", len(signingKey))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token TTL must be positive")
	}
	return &TokenCodec{
		signingKey: signingKey,
		ttl:        ttl,
		issuer:     issuer,
		now:        time.Now,
	}, nil
}

// Issue signs a token whose subject is the principal's email. Extra claims are
// merged into the payload; registered claims always win.
func (c *TokenCodec) Issue(principal *Principal, extraClaims map[string]any) (string, error) {
	now := c.now()

	claims := jwt.MapClaims{}
	for k, v := range extraClaims {
		claims[k] = v
	}
	claims["sub"] = principal.Email
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(c.ttl))
	if c.issuer != "" {
		claims["iss"] = c.issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and expiry of tokenString and returns its
// subject. A missing token is the caller's decision point, not the codec's:
// Validate treats empty input as malformed like any other unparseable string.
func (c *TokenCodec) Validate(tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrTokenSignature
		default:
			return "", ErrTokenMalformed
		}
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrTokenMalformed
	}
	return subject, nil
}

// IsValidFor reports whether tokenString is valid and issued for the given
// principal. It returns false (never an error) on expiry, tampering, or a
// subject mismatch, so callers cannot distinguish an invalid token from a
// token belonging to someone else.
func (c *TokenCodec) IsValidFor(tokenString string, principal *Principal) bool {
	subject, err := c.Validate(tokenString)
	if err != nil {
		return false
	}
	return subject == principal.Email
}

func (c *TokenCodec) keyFunc(token *jwt.Token) (any, error) {
	return c.signingKey, nil
}
