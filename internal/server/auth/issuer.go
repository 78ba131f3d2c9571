package auth

import (
	"fmt"
	"time"

	"github.com/sethnnections/authkeeper/internal/server/models"
)

// TTLs holds the lifetime of each token kind.
type TTLs struct {
	Access        time.Duration
	Refresh       time.Duration
	ResetPassword time.Duration
	VerifyEmail   time.Duration
}

// DefaultTTLs mirrors the production defaults.
var DefaultTTLs = TTLs{
	Access:        15 * time.Minute,
	Refresh:       7 * 24 * time.Hour,
	ResetPassword: 10 * time.Minute,
	VerifyEmail:   24 * time.Hour,
}

// Issuer binds secrets and lifetimes to token kinds. Refresh tokens are the
// only kind signed with the refresh secret; everything else uses the access
// secret. An Issuer is immutable after construction.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	ttls          TTLs
}

func NewIssuer(accessSecret, refreshSecret string, ttls TTLs) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		ttls:          ttls,
	}
}

func (i *Issuer) params(kind models.TokenKind) ([]byte, time.Duration, error) {
	switch kind {
	case models.TokenAccess:
		return i.accessSecret, i.ttls.Access, nil
	case models.TokenRefresh:
		return i.refreshSecret, i.ttls.Refresh, nil
	case models.TokenResetPassword:
		return i.accessSecret, i.ttls.ResetPassword, nil
	case models.TokenVerifyEmail:
		return i.accessSecret, i.ttls.VerifyEmail, nil
	}
	return nil, 0, fmt.Errorf("unknown token kind %q", kind)
}

// Mint signs a token of the given kind and returns it with its expiry, which
// matches the exp claim to the second.
func (i *Issuer) Mint(kind models.TokenKind, p Payload) (string, time.Time, error) {
	secret, ttl, err := i.params(kind)
	if err != nil {
		return "", time.Time{}, err
	}
	if kind != models.TokenAccess {
		p.Role = ""
	}

	now := time.Now()
	token, err := issueAt(p, secret, now, ttl)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error signing %s token: %w", kind, err)
	}
	return token, now.Add(ttl).Truncate(time.Second), nil
}

// Check verifies token against the secret of kind.
func (i *Issuer) Check(kind models.TokenKind, token string) (Payload, bool) {
	secret, _, err := i.params(kind)
	if err != nil {
		return Payload{}, false
	}
	return Verify(token, secret)
}
