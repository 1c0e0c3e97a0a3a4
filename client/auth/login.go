package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/viant/aura/client/auth/store"
	"github.com/viant/aura/internal/conv"
)

const defaultLoginMessage = "Login failed"

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Identity  store.Identity
	ExpiresAt *float64
}

type loginData struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	UserID       interface{} `json:"user_id"`
	Role         string      `json:"role"`
	ExpiresAt    interface{} `json:"expires_at"`
}

// Login exchanges username and password for a new session. On failure the
// current session is left as it was.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	resp, err := c.postJSON(ctx, "/auth/login", map[string]string{"username": username, "password": password}, "")
	if err != nil {
		return nil, newError(LoginFailed, 0, err.Error(), err)
	}
	if resp.decodeErr != nil {
		return nil, newError(LoginFailed, resp.httpStatus, resp.decodeErr.Error(), resp.decodeErr)
	}
	if !resp.ok() {
		return nil, newError(LoginFailed, resp.httpStatus, resp.message(defaultLoginMessage), nil)
	}
	if resp.envelope.StatusCode != http.StatusOK || !resp.envelope.hasData() {
		return nil, newError(LoginFailed, resp.envelope.StatusCode, resp.message(defaultLoginMessage), nil)
	}
	data := &loginData{}
	if err = json.Unmarshal(resp.envelope.Data, data); err != nil {
		return nil, newError(LoginFailed, resp.httpStatus, defaultLoginMessage, err)
	}
	if data.AccessToken == "" {
		return nil, newError(LoginFailed, resp.httpStatus, resp.message(defaultLoginMessage), nil)
	}

	session := store.Session{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		Identity:     &store.Identity{UserID: conv.AsString(data.UserID), Role: data.Role},
	}
	if expiresAt, ok := conv.AsFloat(data.ExpiresAt); ok {
		session.ExpiresAt = &expiresAt
	}
	c.mutate(ctx, func(store.Session) (store.Session, bool) {
		return session, true
	})
	c.logger.Debug().Str("user_id", session.Identity.UserID).Str("role", session.Identity.Role).Msg("logged in")
	ret := &LoginResult{Identity: *session.Identity}
	if session.ExpiresAt != nil {
		expiresAt := *session.ExpiresAt
		ret.ExpiresAt = &expiresAt
	}
	return ret, nil
}

// Logout notifies the server on a best-effort basis and always clears the session.
func (c *Client) Logout(ctx context.Context) {
	defer c.clear(ctx)
	accessToken := c.Credentials().AccessToken
	if accessToken == "" {
		return
	}
	resp, err := c.postJSON(ctx, "/auth/logout", nil, accessToken)
	if err != nil {
		c.logger.Warn().Err(err).Msg("logout notification failed")
		return
	}
	if !resp.ok() {
		c.logger.Warn().Int("status", resp.httpStatus).Msg("logout notification rejected")
	}
}
