package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/aura/client/auth/store"
	"github.com/viant/aura/internal/conv"
)

const (
	renewalKey            = "renew"
	sessionExpiredMessage = "Session expired"
)

type refreshData struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   interface{} `json:"expires_at"`
}

// Renew exchanges the refresh token for a new access token. It returns false
// without any network call when no refresh token is held. Any renewal failure
// erases the whole session. Callers overlapping in time share one renewal call.
func (c *Client) Renew(ctx context.Context) bool {
	return c.renewShared(ctx, nil)
}

// RenewFrom renews a session whose observedAccessToken the caller found stale
// or rejected. When the session has meanwhile moved on to another access token
// that is not known to be stale, it returns true without a network call.
func (c *Client) RenewFrom(ctx context.Context, observedAccessToken string) bool {
	return c.renewShared(ctx, &observedAccessToken)
}

func (c *Client) renewShared(ctx context.Context, observed *string) bool {
	if c.Credentials().RefreshToken == "" {
		return false
	}
	// joined callers share the flight, so it is detached from any single caller
	flightCtx := context.WithoutCancel(ctx)
	value, _, shared := c.renewals.Do(renewalKey, func() (interface{}, error) {
		if observed != nil && c.replaced(*observed) {
			return true, nil
		}
		return c.renew(flightCtx), nil
	})
	if shared {
		c.logger.Debug().Msg("joined in-flight renewal")
	}
	renewed, _ := value.(bool)
	return renewed
}

// replaced reports whether the session holds a usable access token other than observed.
func (c *Client) replaced(observed string) bool {
	current := c.Credentials()
	return current.AccessToken != "" && current.AccessToken != observed && !current.Stale(c.now())
}

func (c *Client) renew(ctx context.Context) bool {
	refreshToken := c.Credentials().RefreshToken
	if refreshToken == "" {
		return false
	}
	accessToken, expiresAt, err := c.refresh(ctx, refreshToken)
	if err != nil {
		c.logger.Info().Err(err).Str("kind", string(KindOf(err))).Msg("renewal failed, clearing session")
		c.mutate(ctx, func(current store.Session) (store.Session, bool) {
			// a concurrent login already replaced the session we tried to renew
			if current.RefreshToken != refreshToken {
				return current, false
			}
			return store.Session{}, true
		})
		return false
	}
	return c.mutate(ctx, func(current store.Session) (store.Session, bool) {
		if current.RefreshToken != refreshToken {
			return current, false
		}
		current.AccessToken = accessToken
		current.ExpiresAt = expiresAt
		return current, true
	})
}

// refresh calls the renewal endpoint.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, *float64, error) {
	resp, err := c.postJSON(ctx, "/auth/refresh", map[string]string{"refresh_token": refreshToken}, "")
	if err != nil {
		return "", nil, newError(TransportFailure, 0, err.Error(), err)
	}
	if resp.decodeErr != nil {
		return "", nil, newError(TransportFailure, resp.httpStatus, resp.decodeErr.Error(), resp.decodeErr)
	}
	if !resp.ok() {
		return "", nil, newError(SessionExpired, resp.httpStatus, resp.message(statusMessage(resp.httpStatus)), nil)
	}
	if resp.envelope.StatusCode != http.StatusOK || !resp.envelope.hasData() {
		return "", nil, newError(SessionExpired, resp.envelope.StatusCode, resp.message(sessionExpiredMessage), nil)
	}
	data := &refreshData{}
	if err = json.Unmarshal(resp.envelope.Data, data); err != nil || data.AccessToken == "" {
		return "", nil, newError(SessionExpired, resp.httpStatus, "malformed refresh response", err)
	}
	if expiresAt, ok := conv.AsFloat(data.ExpiresAt); ok {
		return data.AccessToken, &expiresAt, nil
	}
	return data.AccessToken, tokenExpiry(data.AccessToken), nil
}

// tokenExpiry reads the exp claim of a JWT access token without verifying its signature.
func tokenExpiry(accessToken string) *float64 {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	expiresAt := float64(exp.Unix())
	return &expiresAt
}
