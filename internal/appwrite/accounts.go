package appwrite

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kaushikshivam970/storeit/internal/domain"
)

// AccountService is the admin-side account API: OTP issuance and session
// minting for arbitrary addresses.
type AccountService struct {
	c *Client
}

// CreateEmailToken asks the provider to generate a one-time code, email it to
// the address, and returns the provider-side account ID the code is bound to.
// The returned ID is a provider token subject; it does not imply an identity
// record exists for it.
func (s *AccountService) CreateEmailToken(ctx context.Context, userID, email string) (string, error) {
	var token struct {
		UserID string `json:"userId"`
	}
	body := map[string]string{"userId": userID, "email": email}
	if err := s.c.call(ctx, http.MethodPost, "/account/tokens/email", nil, body, &token); err != nil {
		return "", fmt.Errorf("create email token: %w", err)
	}
	return token.UserID, nil
}

// CreateSession redeems an (accountID, code) pair for a session. Wrong,
// already-used and expired codes are all rejected by the provider with client
// errors; they surface uniformly as domain.ErrVerificationFailed so callers
// cannot distinguish them. Transport failures propagate as-is.
func (s *AccountService) CreateSession(ctx context.Context, accountID, code string) (domain.Session, error) {
	var raw struct {
		ID     string `json:"$id"`
		UserID string `json:"userId"`
		Secret string `json:"secret"`
		Expire string `json:"expire"`
	}
	body := map[string]string{"userId": accountID, "secret": code}
	if err := s.c.call(ctx, http.MethodPost, "/account/sessions/token", nil, body, &raw); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			return domain.Session{}, domain.ErrVerificationFailed
		}
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}

	session := domain.Session{ID: raw.ID, AccountID: raw.UserID, Secret: raw.Secret}
	if raw.Expire != "" {
		if t, err := time.Parse(time.RFC3339, raw.Expire); err == nil {
			session.ExpiresAt = t
		}
	}
	return session, nil
}

// SelfService is the session-side account API: the acting user only.
type SelfService struct {
	c *Client
}

// Get resolves the account behind the handle's session token.
func (s *SelfService) Get(ctx context.Context) (domain.Account, error) {
	var account domain.Account
	if err := s.c.call(ctx, http.MethodGet, "/account", nil, nil, &account); err != nil {
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

// DeleteCurrentSession revokes the handle's own session server-side. Revoking
// a session that is already gone is not an error.
func (s *SelfService) DeleteCurrentSession(ctx context.Context) error {
	err := s.c.call(ctx, http.MethodDelete, "/account/sessions/current", nil, nil, nil)
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusUnauthorized) {
		return nil
	}
	return fmt.Errorf("delete session: %w", err)
}
