package auth

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/aura/client/auth/store"
)

// Option configures a Client.
type Option func(c *Client)

// WithStore sets the credential store; defaults to an in-memory store.
func WithStore(store *store.Store) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithHTTPClient sets the HTTP client whose transport and timeout are used for all calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock sets the time source used to decide whether the session is stale.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithRequestIDs adds an X-Request-Id header to every API request.
func WithRequestIDs(enabled bool) Option {
	return func(c *Client) {
		c.requestIDs = enabled
	}
}
