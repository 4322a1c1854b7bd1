package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_Authenticate(t *testing.T) {
	clock := &fakeClock{t: t0}
	a := newTestAuthority(t, clock)
	g := NewGuard(a)

	tok, err := a.Issue(sampleIdentity())
	require.NoError(t, err)

	tests := []struct {
		name    string
		values  []string
		advance time.Duration
		wantErr error
	}{
		{name: "no header", values: nil, wantErr: ErrMissing},
		{name: "two headers", values: []string{tok, tok}, wantErr: ErrBadCount},
		{name: "garbage", values: []string{"abc"}, wantErr: ErrInvalid},
		{name: "empty value", values: []string{""}, wantErr: ErrInvalid},
		{name: "expired", values: []string{tok}, advance: 25 * time.Hour, wantErr: ErrExpired},
		{name: "valid", values: []string{tok}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.t = t0.Add(tt.advance)
			id, err := g.Authenticate(tt.values)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sampleIdentity(), *id)
		})
	}
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	id := sampleIdentity()
	got, ok := IdentityFromContext(WithIdentity(context.Background(), &id))
	require.True(t, ok)
	assert.Equal(t, int64(42), got.ID)
}
