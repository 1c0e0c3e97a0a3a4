package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/viant/aura/client/auth/store"
)

// RequestIDHeader carries a per-request correlation ID.
const RequestIDHeader = "X-Request-Id"

// ErrSessionExpired is returned when a stale session could not be renewed
// before sending; no network request is made in that case.
var ErrSessionExpired = errors.New("session expired")

// Renewer owns the session the RoundTripper authenticates with.
type Renewer interface {
	// Credentials returns a copy of the current session.
	Credentials() store.Session
	// RenewFrom renews a session whose observedAccessToken was found stale or
	// rejected; it succeeds without renewing when the token was already replaced.
	RenewFrom(ctx context.Context, observedAccessToken string) bool
}

type RoundTripper struct {
	renewer    Renewer
	transport  http.RoundTripper
	now        func() time.Time
	requestIDs bool
	logger     zerolog.Logger
}

func New(renewer Renewer, options ...Option) (*RoundTripper, error) {
	if renewer == nil {
		return nil, errors.New("renewer was nil")
	}
	ret := &RoundTripper{
		renewer:   renewer,
		transport: http.DefaultTransport,
		now:       time.Now,
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret, nil
}

func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	// 1) Renew a session known to be stale before spending a round trip.
	credentials := r.renewer.Credentials()
	if credentials.Stale(r.now()) && credentials.RefreshToken != "" {
		if !r.renewer.RenewFrom(ctx, credentials.AccessToken) {
			return nil, ErrSessionExpired
		}
		credentials = r.renewer.Credentials()
	}

	requestID := getRequestID(ctx)
	if requestID == "" && r.requestIDs {
		requestID = uuid.New().String()
	}

	// 2) Send with whatever token we hold, stale or not.
	attempt := clone(req, body)
	r.authorize(attempt, &credentials, requestID)
	resp, err := r.transport.RoundTrip(attempt)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || credentials.AccessToken == "" || credentials.RefreshToken == "" {
		return resp, nil
	}
	// keep the rejection readable in case renewal fails
	rewind(resp)

	// 3) Renew once, unless a concurrent caller already replaced the rejected token.
	if !r.renewer.RenewFrom(ctx, credentials.AccessToken) {
		return resp, nil
	}
	current := r.renewer.Credentials()
	resp.Body.Close()

	// 4) Replay the request exactly once with the refreshed token.
	r.logger.Debug().Str("url", req.URL.String()).Msg("replaying request after renewal")
	retry := clone(req, body)
	r.authorize(retry, &current, requestID)
	return r.transport.RoundTrip(retry)
}

func (r *RoundTripper) authorize(req *http.Request, credentials *store.Session, requestID string) {
	if credentials.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+credentials.AccessToken)
	} else {
		req.Header.Del("Authorization")
	}
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}
}
