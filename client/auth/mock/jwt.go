package mock

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshType = "refresh"

type claims struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Type     string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs an access token for user expiring after ttl.
func (m *Service) IssueAccessToken(user *User, ttl time.Duration) (string, time.Time, error) {
	expiry := time.Now().Add(ttl)
	token, err := m.sign(user, "", expiry)
	return token, expiry, err
}

// IssueRefreshToken signs a refresh token for user.
func (m *Service) IssueRefreshToken(user *User) (string, error) {
	return m.sign(user, refreshType, time.Now().Add(30*24*time.Hour))
}

// Revoke makes a refresh token unusable.
func (m *Service) Revoke(refreshToken string) {
	m.revoked.Put(refreshToken, true)
}

// User returns a registered account.
func (m *Service) User(username string) (*User, bool) {
	return m.users.Get(username)
}

func (m *Service) sign(user *User, tokenType string, expiry time.Time) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Role:     user.Role,
		Username: user.Username,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	})
	return token.SignedString(m.Secret)
}

func (m *Service) parse(tokenString string) (*claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	ret, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return ret, nil
}
