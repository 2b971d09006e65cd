package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid covers every way a session token can fail verification:
// bad signature, unexpected signing algorithm, structurally malformed input,
// or expiry. Callers treat all of these identically (the session is not
// usable now), so the codec does not distinguish them in its error value.
var ErrTokenInvalid = errors.New("session token invalid")

func init() {
	// The library default truncates iat/exp to whole seconds, which shortens
	// a token's lifetime by up to 999ms and makes a freshly signed token with
	// a sub-second ttl fail verification. Millisecond precision governs both
	// claim marshaling and validation-time truncation.
	jwt.TimePrecision = time.Millisecond
}

// Codec signs and verifies session tokens using HMAC-SHA256.
// A token is self-contained: verification needs only the secret and the
// wall clock, no external state.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec from the configured signing secret.
// An empty secret is a configuration error, never a silent fallback.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("session signing secret is required")
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Sign serializes the claims, stamps jti/iat/exp, and signs with HS256.
// The expiry is derived from ttl relative to the current wall clock.
func (c *Codec) Sign(claims SessionClaims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("session ttl must be positive, got %s", ttl)
	}

	now := time.Now()
	claims.ID = uuid.NewString()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify recomputes the MAC over the received token and returns the decoded
// claims, or ErrTokenInvalid. The signing method is pinned to HS256 so an
// altered algorithm header fails verification rather than downgrading it.
//
// Verification failure is an expected outcome (expired, replayed, or forged
// tokens), not an anomaly: this function never panics on malformed input and
// callers decide the user-facing behaviour.
func (c *Codec) Verify(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}
