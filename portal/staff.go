package portal

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/viant/aura/client/auth"
)

// StaffDashboard returns the staff overview.
func (s *Service) StaffDashboard(ctx context.Context) (Record, error) {
	var ret Record
	err := s.call(ctx, "/staff/dashboard", nil, &ret, "Failed to retrieve dashboard data")
	return ret, err
}

// Certificates lists submitted certificates awaiting or past review.
func (s *Service) Certificates(ctx context.Context) (Record, error) {
	var ret Record
	err := s.call(ctx, "/staff/certificate", nil, &ret, "Failed to retrieve certificate data")
	return ret, err
}

// Certificate returns the detail of one certificate.
func (s *Service) Certificate(ctx context.Context, id string) (Record, error) {
	var ret Record
	err := s.call(ctx, "/staff/validate/"+url.PathEscape(id), nil, &ret, "Failed to retrieve certificate detail")
	return ret, err
}

// Validate marks a certificate as validated by the logged in staff member.
func (s *Service) Validate(ctx context.Context, id string) (Record, error) {
	var ret Record
	err := s.call(ctx, "/staff/validate/"+url.PathEscape(id), &auth.RequestOptions{Method: http.MethodPut}, &ret, "Failed to validate prestasi")
	return ret, err
}

// Leaderboard returns the top limit students by score.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]Record, error) {
	var ret []Record
	options := &auth.RequestOptions{Query: url.Values{"limit": []string{strconv.Itoa(limit)}}}
	err := s.call(ctx, "/staff/leaderboard", options, &ret, "Failed to load data")
	return ret, err
}

// Search finds certificates similar to query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	var ret []Record
	options := &auth.RequestOptions{Query: url.Values{
		"query": []string{query},
		"limit": []string{strconv.Itoa(limit)},
	}}
	err := s.call(ctx, "/staff/search", options, &ret, "Failed to load data")
	return ret, err
}
