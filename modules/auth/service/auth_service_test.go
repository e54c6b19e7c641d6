package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"book-my-session/core/errors"
	"book-my-session/core/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRevoker struct {
	tokenID string
	ttl     time.Duration
	err     error
}

func (r *fakeRevoker) BlacklistToken(_ context.Context, tokenID string, ttl time.Duration) error {
	r.tokenID, r.ttl = tokenID, ttl
	return r.err
}

func claimsExpiringAt(exp time.Time) *utils.TokenClaims {
	return &utils.TokenClaims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func TestLogout(t *testing.T) {
	now := time.Date(2030, 1, 6, 10, 0, 0, 0, time.UTC)

	t.Run("revokes for the remaining lifetime", func(t *testing.T) {
		revoker := &fakeRevoker{}
		svc := &authService{revoker: revoker, now: func() time.Time { return now }}

		require.Nil(t, svc.Logout(context.Background(), claimsExpiringAt(now.Add(30*time.Minute))))
		assert.Equal(t, "jti-1", revoker.tokenID)
		assert.Equal(t, 30*time.Minute, revoker.ttl)
	})

	t.Run("expired token needs no entry", func(t *testing.T) {
		revoker := &fakeRevoker{}
		svc := &authService{revoker: revoker, now: func() time.Time { return now }}

		require.Nil(t, svc.Logout(context.Background(), claimsExpiringAt(now.Add(-time.Minute))))
		assert.Empty(t, revoker.tokenID)
	})

	t.Run("store failure", func(t *testing.T) {
		svc := &authService{revoker: &fakeRevoker{err: fmt.Errorf("redis: connection refused")}, now: func() time.Time { return now }}

		appErr := svc.Logout(context.Background(), claimsExpiringAt(now.Add(time.Hour)))
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInternalServer, appErr.Code)
	})

	t.Run("no revoker configured", func(t *testing.T) {
		appErr := NewAuthService(nil).Logout(context.Background(), claimsExpiringAt(now.Add(time.Hour)))
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrDependency, appErr.Code)
	})

	t.Run("no claims", func(t *testing.T) {
		appErr := NewAuthService(&fakeRevoker{}).Logout(context.Background(), nil)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrUnauthorized, appErr.Code)
	})
}
