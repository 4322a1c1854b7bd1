package auth

import (
	"errors"
	"time"

	"github.com/tentech-me/tentech-api/internal/cryptox"
)

// DefaultValidity is the lifetime of a token unless configured otherwise.
const DefaultValidity = 24 * time.Hour

var (
	// ErrMalformed means the token could not be decrypted or decoded.
	ErrMalformed = errors.New("malformed token")
	// ErrExpired means the token decoded fine but its lifetime is over.
	ErrExpired = errors.New("token expired")

	// ErrEmptyIdentity is returned by Issue for an identity with a zero ID.
	// Stored users are numbered from 1, so a zero ID means the snapshot was
	// never loaded from storage.
	ErrEmptyIdentity = errors.New("identity has no id")
)

// Authority issues and verifies tokens. It holds no per-token state; the
// cipher key is fixed for the lifetime of the process.
type Authority struct {
	cipher   *cryptox.Cipher
	validity time.Duration
	now      func() time.Time
}

// NewAuthority builds an Authority. Zero validity falls back to
// DefaultValidity and a nil clock to time.Now.
func NewAuthority(c *cryptox.Cipher, validity time.Duration, now func() time.Time) *Authority {
	if validity <= 0 {
		validity = DefaultValidity
	}
	if now == nil {
		now = time.Now
	}
	return &Authority{cipher: c, validity: validity, now: now}
}

// Issue seals id into a token valid for the configured lifetime. Any
// identity with a non-zero ID round-trips through Verify unchanged; a zero
// ID is rejected with ErrEmptyIdentity.
func (a *Authority) Issue(id Identity) (string, error) {
	if id.ID == 0 {
		return "", ErrEmptyIdentity
	}
	p := &Payload{Identity: id, ExpiresAt: a.now().Add(a.validity)}
	return a.cipher.Encrypt(encodePayload(p)), nil
}

// Verify opens a token. Expired tokens are returned as well; callers decide
// with IsExpired.
func (a *Authority) Verify(token string) (*Payload, error) {
	raw, err := a.cipher.Decrypt(token)
	if err != nil {
		return nil, ErrMalformed
	}
	p, err := decodePayload(raw)
	if err != nil {
		return nil, ErrMalformed
	}
	return p, nil
}

// IsExpired reports whether the current time has reached p.ExpiresAt.
func (a *Authority) IsExpired(p *Payload) bool {
	return !a.now().Before(p.ExpiresAt)
}
