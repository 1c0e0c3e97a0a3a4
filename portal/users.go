package portal

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"

	"github.com/viant/aura/client/auth"
)

// Dashboard returns the student overview.
func (s *Service) Dashboard(ctx context.Context) (Record, error) {
	var ret Record
	err := s.call(ctx, "/users/dashboard", nil, &ret, "Failed to retrieve dashboard data")
	return ret, err
}

// History returns the student's submission history.
func (s *Service) History(ctx context.Context) (Record, error) {
	var ret Record
	err := s.call(ctx, "/users/history", nil, &ret, "Failed to retrieve history")
	return ret, err
}

// Achievements returns the student's validated achievements.
func (s *Service) Achievements(ctx context.Context) (Record, error) {
	var ret Record
	err := s.call(ctx, "/users/prestasi", nil, &ret, "Failed to retrieve achievements")
	return ret, err
}

// Upload sends a proof document for server-side parsing and returns the parse result.
func (s *Service) Upload(ctx context.Context, filename string, content []byte) (Record, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err = part.Write(content); err != nil {
		return nil, err
	}
	if err = writer.Close(); err != nil {
		return nil, err
	}
	options := &auth.RequestOptions{
		Method: http.MethodPost,
		Header: http.Header{"Content-Type": []string{writer.FormDataContentType()}},
		Body:   body.Bytes(),
	}
	var ret Record
	err = s.call(ctx, "/users/certificates/upload", options, &ret, "Upload failed")
	return ret, err
}

// Submit stores a reviewed certificate submission.
func (s *Service) Submit(ctx context.Context, submission Record) (Record, error) {
	var ret Record
	options := &auth.RequestOptions{Method: http.MethodPost, JSON: submission}
	err := s.call(ctx, "/users/certificates/submit", options, &ret, "Submission Failed")
	return ret, err
}
