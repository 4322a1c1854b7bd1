// Package auth issues and verifies the encrypted, stateless tokens used for
// sessions and account activation, and guards requests carrying them.
package auth

import (
	"context"
	"time"

	"github.com/tentech-me/tentech-api/internal/server/models"
)

// Identity is the copy of a user taken when a token is issued. Changes to
// the account made later are not visible through tokens already handed out.
type Identity struct {
	ID           int64
	Username     string
	Nickname     string
	Email        string
	PasswordHash string
	Activated    bool
	ActivatedAt  *time.Time
}

// Payload is what a token carries.
type Payload struct {
	Identity  Identity
	ExpiresAt time.Time
}

func IdentityFromUser(u *models.User) Identity {
	id := Identity{
		ID:           u.ID,
		Username:     u.Username,
		Nickname:     u.Nickname,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Activated:    u.Activated,
	}
	if u.ActivatedAt != nil {
		t := *u.ActivatedAt
		id.ActivatedAt = &t
	}
	return id
}

type ctxKey struct{}

// WithIdentity returns a child context carrying the identity of the caller.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil
}
