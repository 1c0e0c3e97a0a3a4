package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/aura/client/auth/store"
	"github.com/viant/aura/client/auth/transport"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Client is the portal session client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	store      *store.Store
	httpClient *http.Client
	// apiClient authenticates through the renewing transport.
	apiClient  *http.Client
	requestIDs bool
	logger     zerolog.Logger
	now        func() time.Time

	writes   sync.Mutex
	mux      sync.RWMutex
	session  store.Session
	renewals singleflight.Group
}

// New creates a client for the API rooted at baseURL (e.g. https://aura.example.com/api/v1)
// and hydrates its session from the configured store.
func New(ctx context.Context, baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL was empty")
	}
	ret := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{}
	}
	if ret.store == nil {
		ret.store = store.New(store.NewMemory(), store.WithLogger(ret.logger))
	}
	rt, err := transport.New(ret,
		transport.WithTransport(ret.httpClient.Transport),
		transport.WithClock(ret.now),
		transport.WithRequestIDs(ret.requestIDs),
		transport.WithLogger(ret.logger))
	if err != nil {
		return nil, err
	}
	ret.apiClient = &http.Client{Transport: rt, Timeout: ret.httpClient.Timeout, Jar: ret.httpClient.Jar}

	session, err := ret.store.Load(ctx)
	if err != nil {
		ret.logger.Warn().Err(err).Str("kind", string(StorageCorrupt)).Msg("failed to load stored session, starting anonymous")
		session = &store.Session{}
	}
	ret.session = session.Clone()
	return ret, nil
}

// Credentials returns a copy of the current session.
func (c *Client) Credentials() store.Session {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.session.Clone()
}

// IsAuthenticated returns true when an access token is held. Expiry is not checked.
func (c *Client) IsAuthenticated() bool {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.session.AccessToken != ""
}

// UserRole returns the role of the logged in user, empty when unknown.
func (c *Client) UserRole() string {
	c.mux.RLock()
	defer c.mux.RUnlock()
	if c.session.Identity == nil {
		return ""
	}
	return c.session.Identity.Role
}

// UserID returns the ID of the logged in user, empty when unknown.
func (c *Client) UserID() string {
	c.mux.RLock()
	defer c.mux.RUnlock()
	if c.session.Identity == nil {
		return ""
	}
	return c.session.Identity.UserID
}

// Token implements oauth2.TokenSource, renewing a stale session first.
func (c *Client) Token() (*oauth2.Token, error) {
	session := c.Credentials()
	if session.Stale(c.now()) && session.RefreshToken != "" {
		if !c.RenewFrom(context.Background(), session.AccessToken) {
			return nil, newError(SessionExpired, 0, sessionExpiredMessage, transport.ErrSessionExpired)
		}
		session = c.Credentials()
	}
	if !session.IsAuthenticated() {
		return nil, newError(AuthorizationRejected, 0, "not authenticated", nil)
	}
	return session.Token(), nil
}

// HTTPClient returns an HTTP client authenticated with this session, for
// collaborators that need raw access (e.g. downloads).
func (c *Client) HTTPClient() *http.Client {
	return c.apiClient
}

// mutate applies fn to the current session; when fn reports a change the new
// session replaces the old one and is written through to the store. Mutations
// are serialized so the store observes them in the same order as memory.
func (c *Client) mutate(ctx context.Context, fn func(current store.Session) (store.Session, bool)) bool {
	c.writes.Lock()
	defer c.writes.Unlock()
	next, changed := fn(c.Credentials())
	if !changed {
		return false
	}
	c.mux.Lock()
	c.session = next.Clone()
	c.mux.Unlock()
	var err error
	if next.AccessToken == "" && next.RefreshToken == "" && next.ExpiresAt == nil && next.Identity == nil {
		err = c.store.Clear(ctx)
	} else {
		err = c.store.Replace(ctx, &next)
	}
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to persist session")
	}
	return true
}

// clear erases the session in memory and in the store.
func (c *Client) clear(ctx context.Context) {
	c.mutate(ctx, func(store.Session) (store.Session, bool) {
		return store.Session{}, true
	})
}

func (c *Client) endpointURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

var _ transport.Renewer = (*Client)(nil)
var _ oauth2.TokenSource = (*Client)(nil)
