package store

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	"github.com/viant/aura/internal/conv"
	"golang.org/x/oauth2"
)

// Identity is the last known user payload returned by the portal.
type Identity struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// UnmarshalJSON accepts user_id encoded either as a string or as a number.
func (i *Identity) UnmarshalJSON(data []byte) error {
	var raw struct {
		UserID interface{} `json:"user_id"`
		Role   interface{} `json:"role"`
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	i.UserID = conv.AsString(raw.UserID)
	i.Role = conv.AsString(raw.Role)
	return nil
}

// Session represents the credentials of the current portal user.
// Empty strings and nil pointers denote absent values.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *float64
	Identity     *Identity
}

// IsAuthenticated returns true when an access token is held, regardless of its expiry.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.AccessToken != ""
}

// Stale returns true when the expiry is known and has been reached at now.
func (s *Session) Stale(now time.Time) bool {
	if s == nil || s.ExpiresAt == nil {
		return false
	}
	return float64(now.UnixNano())/float64(time.Second) >= *s.ExpiresAt
}

// Expiry returns the expiry as time, zero when absent.
func (s *Session) Expiry() time.Time {
	if s == nil || s.ExpiresAt == nil {
		return time.Time{}
	}
	sec, frac := math.Modf(*s.ExpiresAt)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

// Token converts the session to an oauth2 bearer token.
func (s *Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       s.Expiry(),
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() Session {
	if s == nil {
		return Session{}
	}
	ret := Session{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken}
	if s.ExpiresAt != nil {
		expiresAt := *s.ExpiresAt
		ret.ExpiresAt = &expiresAt
	}
	if s.Identity != nil {
		identity := *s.Identity
		ret.Identity = &identity
	}
	return ret
}

// Update describes a partial write: only non-nil fields are persisted.
type Update struct {
	AccessToken  *string
	RefreshToken *string
	ExpiresAt    *float64
	Identity     *Identity
}

// Apply copies the provided fields onto session.
func (u *Update) Apply(session *Session) {
	if u.AccessToken != nil {
		session.AccessToken = *u.AccessToken
	}
	if u.RefreshToken != nil {
		session.RefreshToken = *u.RefreshToken
	}
	if u.ExpiresAt != nil {
		expiresAt := *u.ExpiresAt
		session.ExpiresAt = &expiresAt
	}
	if u.Identity != nil {
		identity := *u.Identity
		session.Identity = &identity
	}
}
