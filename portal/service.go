package portal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/viant/aura/client/auth"
)

// Requester performs authenticated API requests.
type Requester interface {
	PerformRequest(ctx context.Context, endpoint string, options *auth.RequestOptions) (*auth.Response, error)
}

// Record is a generic JSON object.
type Record = map[string]interface{}

// Service groups portal calls.
type Service struct {
	requester Requester
}

// New creates a portal service.
func New(requester Requester) *Service {
	return &Service{requester: requester}
}

// call performs the request and decodes the envelope data into target. A 2xx
// reply whose envelope status_code is not 2xx is reported as an error.
func (s *Service) call(ctx context.Context, endpoint string, options *auth.RequestOptions, target interface{}, failure string) error {
	resp, err := s.requester.PerformRequest(ctx, endpoint, options)
	if err != nil {
		return err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := resp.Message
		if message == "" {
			message = failure
		}
		return &auth.Error{Kind: auth.HTTPStatus, StatusCode: resp.StatusCode, Message: message}
	}
	if target == nil {
		return nil
	}
	if err = resp.Decode(target); err != nil {
		return &auth.Error{Kind: auth.TransportFailure, StatusCode: resp.HTTPStatus, Message: fmt.Sprintf("%s: %v", failure, err), Err: err}
	}
	return nil
}
