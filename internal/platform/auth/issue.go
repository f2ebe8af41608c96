package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Issuer mints HS256 tokens in the shape RequireUser accepts. Production
// tokens come from the identity provider; this exists for local development
// and tests.
type Issuer struct {
	Secret []byte
	TTL    time.Duration
}

func (i Issuer) Issue(userID, name, role string, now time.Time) (string, time.Time, error) {
	if len(i.Secret) == 0 {
		return "", time.Time{}, errors.New("missing jwt secret")
	}
	if userID == "" {
		return "", time.Time{}, errors.New("missing subject")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	ttl := i.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	exp := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Name: name,
		Role: role,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
