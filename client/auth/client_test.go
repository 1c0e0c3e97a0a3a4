package auth

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/aura/client/auth/mock"
	"github.com/viant/aura/client/auth/store"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// seed stores a session and returns its store.
func seed(t *testing.T, session *store.Session) *store.Store {
	t.Helper()
	s := store.New(store.NewMemory())
	require.NoError(t, s.Replace(context.Background(), session))
	return s
}

func newClient(t *testing.T, service *mock.Service, s *store.Store) *Client {
	t.Helper()
	if s == nil {
		s = store.New(store.NewMemory())
	}
	client, err := New(context.Background(), service.BaseURL(), WithStore(s))
	require.NoError(t, err)
	return client
}

// staleSession holds a valid refresh token for alice and an expired, unusable access token.
func staleSession(t *testing.T, service *mock.Service) *store.Session {
	t.Helper()
	user, _ := service.User("alice")
	refreshToken, err := service.IssueRefreshToken(user)
	require.NoError(t, err)
	return &store.Session{
		AccessToken:  "expired-access-token",
		RefreshToken: refreshToken,
		ExpiresAt:    floatPtr(1),
		Identity:     &store.Identity{UserID: user.ID, Role: user.Role},
	}
}

func TestClient_Login(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	ctx := context.Background()
	s := store.New(store.NewMemory())
	client := newClient(t, service, s)

	result, err := client.Login(ctx, "alice", "x")
	require.NoError(t, err)
	assert.Equal(t, store.Identity{UserID: "u1", Role: "staff"}, result.Identity)
	require.NotNil(t, result.ExpiresAt)
	assert.True(t, client.IsAuthenticated())
	assert.Equal(t, "staff", client.UserRole())
	assert.Equal(t, "u1", client.UserID())

	// a later process start observes the persisted session
	restarted := newClient(t, service, s)
	assert.True(t, restarted.IsAuthenticated())
	assert.Equal(t, "staff", restarted.UserRole())
	assert.Equal(t, client.Credentials(), restarted.Credentials())
}

func TestClient_LoginNumericUserID(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	service.LoginHandler = func(w http.ResponseWriter, r *http.Request) {
		mock.WriteEnvelope(w, http.StatusOK, &mock.Envelope{StatusCode: 200, Message: "Login successful", Data: map[string]interface{}{
			"access_token": "A1", "refresh_token": "R1", "user_id": 7, "role": "User", "expires_at": 1733000000.5,
		}})
	}
	client := newClient(t, service, nil)
	result, err := client.Login(context.Background(), "bob", "y")
	require.NoError(t, err)
	assert.Equal(t, "7", result.Identity.UserID)
	assert.Equal(t, 1733000000.5, *result.ExpiresAt)
}

func TestClient_LoginFailed(t *testing.T) {
	var testCases = []struct {
		description string
		handler     http.HandlerFunc
		expectMsg   string
	}{
		{
			description: "bad credentials inside 200 envelope",
			expectMsg:   "Incorrect username or password",
		},
		{
			description: "non-2xx with message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				mock.WriteEnvelope(w, http.StatusBadRequest, &mock.Envelope{StatusCode: 400, Message: "Account locked"})
			},
			expectMsg: "Account locked",
		},
		{
			description: "missing data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				mock.WriteEnvelope(w, http.StatusOK, &mock.Envelope{StatusCode: 200})
			},
			expectMsg: "Login failed",
		},
		{
			description: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			expectMsg: "Login failed",
		},
		{
			description: "missing access token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				mock.WriteEnvelope(w, http.StatusOK, &mock.Envelope{StatusCode: 200, Data: map[string]string{"role": "staff"}})
			},
			expectMsg: "Login failed",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			service := mock.NewHTTPTestService()
			defer service.Close()
			ctx := context.Background()
			previous := &store.Session{AccessToken: "A0", RefreshToken: "R0", ExpiresAt: floatPtr(4102444800), Identity: &store.Identity{UserID: "u2", Role: "User"}}
			client := newClient(t, service, seed(t, previous))
			service.LoginHandler = testCase.handler

			_, err := client.Login(ctx, "alice", "wrong")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrLoginFailed)
			assert.Equal(t, testCase.expectMsg, err.Error())
			assert.Equal(t, *previous, client.Credentials())
		})
	}
}

func TestClient_LoginMalformedBody(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	service.LoginHandler = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	client := newClient(t, service, nil)
	_, err := client.Login(context.Background(), "alice", "x")
	assert.Equal(t, LoginFailed, KindOf(err))
	assert.False(t, client.IsAuthenticated())
}

func TestClient_Logout(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	ctx := context.Background()
	s := store.New(store.NewMemory())
	client := newClient(t, service, s)
	_, err := client.Login(ctx, "alice", "x")
	require.NoError(t, err)

	client.Logout(ctx)
	assert.False(t, client.IsAuthenticated())
	assert.Equal(t, store.Session{}, client.Credentials())
	assert.Equal(t, 1, service.Calls("/auth/logout"))
	persisted, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, &store.Session{}, persisted)
}

func TestClient_LogoutServerFailure(t *testing.T) {
	var testCases = []struct {
		description string
		prepare     func(service *mock.Service)
	}{
		{description: "server down", prepare: func(service *mock.Service) { service.Close() }},
		{description: "server error", prepare: func(service *mock.Service) {
			service.LogoutHandler = func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			}
		}},
		{description: "token rejected", prepare: func(service *mock.Service) {}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			service := mock.NewHTTPTestService()
			defer service.Close()
			client := newClient(t, service, seed(t, &store.Session{AccessToken: "not-a-jwt", RefreshToken: "R1"}))
			testCase.prepare(service)
			client.Logout(context.Background())
			assert.False(t, client.IsAuthenticated())
			assert.Equal(t, store.Session{}, client.Credentials())
		})
	}
}

func TestClient_LogoutAnonymous(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	client := newClient(t, service, nil)
	client.Logout(context.Background())
	assert.False(t, client.IsAuthenticated())
	assert.Equal(t, 0, service.TotalCalls())
}

func TestClient_RenewWithoutRefreshToken(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	session := &store.Session{AccessToken: "A1", ExpiresAt: floatPtr(1), Identity: &store.Identity{UserID: "u1", Role: "staff"}}
	client := newClient(t, service, seed(t, session))

	assert.False(t, client.Renew(context.Background()))
	assert.Equal(t, *session, client.Credentials())
	assert.Equal(t, 0, service.TotalCalls())
}

func TestClient_Renew(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	ctx := context.Background()
	session := staleSession(t, service)
	s := seed(t, session)
	client := newClient(t, service, s)

	require.True(t, client.Renew(ctx))
	renewed := client.Credentials()
	assert.NotEqual(t, session.AccessToken, renewed.AccessToken)
	assert.Equal(t, session.RefreshToken, renewed.RefreshToken)
	assert.Equal(t, session.Identity, renewed.Identity)
	require.NotNil(t, renewed.ExpiresAt)
	assert.False(t, renewed.Stale(time.Now()))

	persisted, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, renewed, *persisted)
}

func TestClient_RenewExpiryFromToken(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	service.OmitRefreshExpiry = true
	service.AccessTTL = time.Hour
	client := newClient(t, service, seed(t, staleSession(t, service)))

	require.True(t, client.Renew(context.Background()))
	renewed := client.Credentials()
	require.NotNil(t, renewed.ExpiresAt)
	assert.InDelta(t, float64(time.Now().Add(time.Hour).Unix()), *renewed.ExpiresAt, 5)
}

func TestClient_RenewFailureClearsSession(t *testing.T) {
	var testCases = []struct {
		description string
		prepare     func(service *mock.Service, session *store.Session)
	}{
		{description: "revoked", prepare: func(service *mock.Service, session *store.Session) {
			service.Revoke(session.RefreshToken)
		}},
		{description: "server error", prepare: func(service *mock.Service, session *store.Session) {
			service.RefreshHandler = func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			}
		}},
		{description: "server down", prepare: func(service *mock.Service, session *store.Session) {
			service.Close()
		}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			service := mock.NewHTTPTestService()
			defer service.Close()
			ctx := context.Background()
			session := staleSession(t, service)
			s := seed(t, session)
			client := newClient(t, service, s)
			testCase.prepare(service, session)

			assert.False(t, client.Renew(ctx))
			assert.False(t, client.IsAuthenticated())
			assert.Equal(t, store.Session{}, client.Credentials())
			persisted, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, &store.Session{}, persisted)
		})
	}
}

func TestClient_ConcurrentRenew(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	service.RefreshDelay = 100 * time.Millisecond
	client := newClient(t, service, seed(t, staleSession(t, service)))

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = client.Renew(context.Background())
		}(i)
	}
	wg.Wait()
	for _, renewed := range results {
		assert.True(t, renewed)
	}
	assert.Equal(t, 1, service.Calls("/auth/refresh"))
}

func TestClient_RenewFrom(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	ctx := context.Background()
	client := newClient(t, service, seed(t, staleSession(t, service)))
	observed := client.Credentials().AccessToken

	require.True(t, client.RenewFrom(ctx, observed))
	renewed := client.Credentials()
	assert.NotEqual(t, observed, renewed.AccessToken)
	assert.Equal(t, 1, service.Calls("/auth/refresh"))

	assert.True(t, client.RenewFrom(ctx, observed))
	assert.Equal(t, renewed, client.Credentials())
	assert.Equal(t, 1, service.Calls("/auth/refresh"))

	require.True(t, client.RenewFrom(ctx, renewed.AccessToken))
	assert.Equal(t, 2, service.Calls("/auth/refresh"))
}

func TestClient_Token(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	client := newClient(t, service, seed(t, staleSession(t, service)))

	token, err := client.Token()
	require.NoError(t, err)
	assert.Equal(t, client.Credentials().AccessToken, token.AccessToken)
	assert.True(t, token.Valid())
	assert.Equal(t, 1, service.Calls("/auth/refresh"))

	client.Logout(context.Background())
	_, err = client.Token()
	assert.Error(t, err)
}

func TestClient_CorruptStoredIdentity(t *testing.T) {
	service := mock.NewHTTPTestService()
	defer service.Close()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(context.Background(), map[string]string{
		store.AccessTokenKey: "A1",
		store.IdentityKey:    "{oops",
	}))
	client := newClient(t, service, store.New(kv))
	assert.True(t, client.IsAuthenticated())
	assert.Equal(t, "", client.UserRole())
	assert.Equal(t, "", client.UserID())
}

func TestNew_EmptyBaseURL(t *testing.T) {
	_, err := New(context.Background(), "")
	assert.Error(t, err)
}
