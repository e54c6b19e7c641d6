package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"book-my-session/core/config"
	"book-my-session/core/constants"
	"book-my-session/core/logger"
	"book-my-session/modules/calendar/repository"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	ErrNoCredential      = errors.New("calendar: no credential available")
	ErrCredentialExpired = errors.New("calendar: credential could not be refreshed")
)

// CredentialSource hands out an HTTP client authorised as the calendar owner.
type CredentialSource interface {
	HTTPClient(ctx context.Context, ownerID uuid.UUID) (*http.Client, error)
}

// CredentialHolder builds a token per call from the owner's stored connection,
// falling back to the configured service refresh token. Nothing is cached
// between calls.
type CredentialHolder struct {
	oauth        *oauth2.Config
	repo         repository.CalendarRepository
	refreshToken string
}

type HolderOption func(*CredentialHolder)

// WithEndpoint replaces Google's token endpoint.
func WithEndpoint(endpoint oauth2.Endpoint) HolderOption {
	return func(h *CredentialHolder) {
		h.oauth.Endpoint = endpoint
	}
}

func NewCredentialHolder(cfg config.GoogleAPIConfig, repo repository.CalendarRepository, opts ...HolderOption) *CredentialHolder {
	h := &CredentialHolder{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint:     google.Endpoint,
		},
		repo:         repo,
		refreshToken: cfg.RefreshToken,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *CredentialHolder) HTTPClient(ctx context.Context, ownerID uuid.UUID) (*http.Client, error) {
	conn, err := h.repo.GetActiveConnection(ctx, ownerID, constants.CalendarProviderGoogle)
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{RefreshToken: h.refreshToken}
	if conn != nil {
		token = &oauth2.Token{
			AccessToken:  conn.AccessToken,
			RefreshToken: conn.RefreshToken,
			TokenType:    "Bearer",
		}
		if conn.TokenExpiresAt != nil {
			token.Expiry = *conn.TokenExpiresAt
		}
	}

	if !token.Valid() && (token.RefreshToken == "" || h.oauth.ClientID == "") {
		return nil, ErrNoCredential
	}

	fresh, err := h.oauth.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialExpired, err)
	}

	if conn != nil && fresh.AccessToken != conn.AccessToken {
		var expiry *time.Time
		if !fresh.Expiry.IsZero() {
			expiry = &fresh.Expiry
		}
		if err := h.repo.UpdateTokens(ctx, conn.ID, fresh.AccessToken, fresh.RefreshToken, expiry); err != nil {
			logger.Warn("CredentialHolder:HTTPClient:UpdateTokens:Error", "error", err, "user_id", ownerID)
		} else {
			logger.Info("CredentialHolder:HTTPClient:Refreshed", "user_id", ownerID)
		}
	}

	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(fresh)), nil
}
