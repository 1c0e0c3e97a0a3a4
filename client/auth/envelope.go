package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// envelope is the response body shape shared by all portal endpoints.
type envelope struct {
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

func (e *envelope) hasData() bool {
	data := bytes.TrimSpace(e.Data)
	return len(data) > 0 && !bytes.Equal(data, []byte("null"))
}

// reply is a read response: HTTP status plus the decoded envelope.
type reply struct {
	httpStatus int
	envelope   envelope
	// empty is set when the body carried no content, e.g. 204 No Content.
	empty     bool
	decodeErr error
}

func (r *reply) ok() bool {
	return r.httpStatus >= 200 && r.httpStatus < 300
}

// message returns the server message or fallback.
func (r *reply) message(fallback string) string {
	if r.envelope.Message != "" {
		return r.envelope.Message
	}
	return fallback
}

func readReply(resp *http.Response) (*reply, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	ret := &reply{httpStatus: resp.StatusCode}
	if len(bytes.TrimSpace(data)) == 0 {
		ret.empty = true
		return ret, nil
	}
	if err = json.Unmarshal(data, &ret.envelope); err != nil {
		ret.decodeErr = fmt.Errorf("failed to decode response: %w", err)
	}
	return ret, nil
}

// postJSON sends body to endpoint without going through the renewing transport.
func (c *Client) postJSON(ctx context.Context, endpoint string, body interface{}, accessToken string) (*reply, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL(endpoint), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(accessToken))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	return readReply(resp)
}
