// Package auth mints and verifies the HS256 tokens handed to clients.
// Verification here only proves signature and expiry; whether a token is
// still admissible is decided by the token ledger.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Payload is what a token asserts about its bearer. Role is empty for
// refresh, reset and verification tokens.
type Payload struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// Claims are the registered claims plus the optional role.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Issue signs payload with secretKey. Expiry is now+ttl; the jti is random
// so tokens minted in the same second for the same subject still differ.
func Issue(p Payload, secretKey []byte, ttl time.Duration) (string, error) {
	return issueAt(p, secretKey, time.Now(), ttl)
}

func issueAt(p Payload, secretKey []byte, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: p.Role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify reports whether tokenString was signed with secretKey, uses HS256,
// has not expired and names a subject. It never returns an error: every
// failure is simply "not verified".
func Verify(tokenString string, secretKey []byte) (Payload, bool) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return Payload{}, false
	}

	p := Payload{Subject: claims.Subject, Role: claims.Role}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, true
}
