package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/viant/aura/client/auth/transport"
)

// RequestOptions describes an API request. The zero value is a GET.
type RequestOptions struct {
	Method string
	Header http.Header
	Query  url.Values
	// Body is sent verbatim; JSON is marshalled when Body is nil.
	Body []byte
	JSON interface{}
}

// Response is a successful API reply.
type Response struct {
	// HTTPStatus is the transport status code.
	HTTPStatus int
	// StatusCode is the status_code reported inside the envelope, or
	// HTTPStatus when the reply had no body.
	StatusCode int
	Message    string
	Data       json.RawMessage
}

// Decode unmarshals Data into target.
func (r *Response) Decode(target interface{}) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, target)
}

// PerformRequest sends an authenticated request to endpoint (relative to the API base).
// The session is renewed first when it is known to be stale; a 401 reply is
// retried once after renewal. Failures are returned as *Error.
func (c *Client) PerformRequest(ctx context.Context, endpoint string, options *RequestOptions) (*Response, error) {
	req, err := c.newRequest(ctx, endpoint, options)
	if err != nil {
		return nil, newError(TransportFailure, 0, err.Error(), err)
	}
	resp, err := c.apiClient.Do(req)
	if err != nil {
		if errors.Is(err, transport.ErrSessionExpired) {
			return nil, newError(SessionExpired, 0, sessionExpiredMessage, err)
		}
		return nil, newError(TransportFailure, 0, err.Error(), err)
	}
	reply, err := readReply(resp)
	if err != nil {
		return nil, newError(TransportFailure, resp.StatusCode, err.Error(), err)
	}
	if !reply.ok() {
		kind := HTTPStatus
		if reply.httpStatus == http.StatusUnauthorized {
			kind = AuthorizationRejected
		}
		return nil, newError(kind, reply.httpStatus, reply.message(statusMessage(reply.httpStatus)), nil)
	}
	if reply.empty {
		return &Response{HTTPStatus: reply.httpStatus, StatusCode: reply.httpStatus}, nil
	}
	if reply.decodeErr != nil {
		return nil, newError(TransportFailure, reply.httpStatus, reply.decodeErr.Error(), reply.decodeErr)
	}
	return &Response{
		HTTPStatus: reply.httpStatus,
		StatusCode: reply.envelope.StatusCode,
		Message:    reply.envelope.Message,
		Data:       reply.envelope.Data,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, endpoint string, options *RequestOptions) (*http.Request, error) {
	if options == nil {
		options = &RequestOptions{}
	}
	method := options.Method
	if method == "" {
		method = http.MethodGet
	}
	URL := c.endpointURL(endpoint)
	if len(options.Query) > 0 {
		parsed, err := url.Parse(URL)
		if err != nil {
			return nil, err
		}
		query := parsed.Query()
		for k, values := range options.Query {
			for _, v := range values {
				query.Add(k, v)
			}
		}
		parsed.RawQuery = query.Encode()
		URL = parsed.String()
	}
	body := options.Body
	if body == nil && options.JSON != nil {
		data, err := json.Marshal(options.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = data
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, URL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, values := range options.Header {
		req.Header.Del(k)
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// Verification is returned by Verify.
type Verification struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Verify asks the server to validate the current access token.
func (c *Client) Verify(ctx context.Context) (*Verification, error) {
	resp, err := c.PerformRequest(ctx, "/auth/verify", nil)
	if err != nil {
		return nil, err
	}
	ret := &Verification{}
	if err = resp.Decode(ret); err != nil {
		return nil, newError(TransportFailure, resp.HTTPStatus, err.Error(), err)
	}
	return ret, nil
}

// Profile returns the token claims the server associates with the session.
func (c *Client) Profile(ctx context.Context) (map[string]interface{}, error) {
	resp, err := c.PerformRequest(ctx, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	var data struct {
		User map[string]interface{} `json:"user"`
	}
	if err = resp.Decode(&data); err != nil {
		return nil, newError(TransportFailure, resp.HTTPStatus, err.Error(), err)
	}
	return data.User, nil
}
