package transport

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type Option func(*RoundTripper)

// WithTransport sets the underlying transport
func WithTransport(transport http.RoundTripper) Option {
	return func(t *RoundTripper) {
		if transport != nil {
			t.transport = transport
		}
	}
}

// WithClock sets the time source used for expiry checks
func WithClock(now func() time.Time) Option {
	return func(t *RoundTripper) {
		t.now = now
	}
}

// WithRequestIDs enables the X-Request-Id header on every request
func WithRequestIDs(enabled bool) Option {
	return func(t *RoundTripper) {
		t.requestIDs = enabled
	}
}

// WithLogger sets logger
func WithLogger(logger zerolog.Logger) Option {
	return func(t *RoundTripper) {
		t.logger = logger
	}
}
