package service

import (
	"context"
	"time"

	"book-my-session/core/errors"
	"book-my-session/core/logger"
	"book-my-session/core/utils"
)

// TokenRevoker blocks a token id until ttl elapses.
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error
}

type AuthService interface {
	Logout(ctx context.Context, claims *utils.TokenClaims) *errors.AppError
}

type authService struct {
	revoker TokenRevoker
	now     func() time.Time
}

// NewAuthService accepts a nil revoker; Logout then reports the dependency as unavailable.
func NewAuthService(revoker TokenRevoker) AuthService {
	return &authService{revoker: revoker, now: time.Now}
}

// Logout revokes the presented token for the rest of its lifetime. Tokens are
// issued elsewhere, so this is the only session state kept here.
func (s *authService) Logout(ctx context.Context, claims *utils.TokenClaims) *errors.AppError {
	if claims == nil {
		return errors.NewAppError(errors.ErrUnauthorized, "Unauthorized", nil)
	}
	if claims.ID == "" {
		return errors.NewAppError(errors.ErrInvalidTokenFormat, "Token cannot be revoked", nil)
	}
	if s.revoker == nil {
		logger.Warn("AuthService:Logout:RevokerUnavailable", "user_id", claims.UserID)
		return errors.NewAppError(errors.ErrDependency, "Session revocation is unavailable", nil)
	}

	ttl := time.Duration(0)
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.revoker.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		logger.Error("AuthService:Logout:BlacklistToken:Error", "error", err, "user_id", claims.UserID)
		return errors.NewAppError(errors.ErrInternalServer, "Logout failed", err)
	}

	logger.Info("AuthService:Logout:Success", "user_id", claims.UserID)
	return nil
}
