package portal

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/aura/client/auth"
	"github.com/viant/aura/client/auth/mock"
)

func newService(t *testing.T, backend *mock.Service, username, password string) *Service {
	t.Helper()
	ctx := context.Background()
	client, err := auth.New(ctx, backend.BaseURL())
	require.NoError(t, err)
	_, err = client.Login(ctx, username, password)
	require.NoError(t, err)
	return New(client)
}

func TestService_Records(t *testing.T) {
	backend := mock.NewHTTPTestService()
	defer backend.Close()
	service := newService(t, backend, "alice", "x")
	ctx := context.Background()

	var testCases = []struct {
		description  string
		call         func() (Record, error)
		expectPath   string
		expectMethod string
	}{
		{description: "staff dashboard", call: func() (Record, error) { return service.StaffDashboard(ctx) }, expectPath: "/staff/dashboard", expectMethod: http.MethodGet},
		{description: "certificates", call: func() (Record, error) { return service.Certificates(ctx) }, expectPath: "/staff/certificate", expectMethod: http.MethodGet},
		{description: "certificate", call: func() (Record, error) { return service.Certificate(ctx, "c1") }, expectPath: "/staff/validate/c1", expectMethod: http.MethodGet},
		{description: "validate", call: func() (Record, error) { return service.Validate(ctx, "c1") }, expectPath: "/staff/validate/c1", expectMethod: http.MethodPut},
		{description: "dashboard", call: func() (Record, error) { return service.Dashboard(ctx) }, expectPath: "/users/dashboard", expectMethod: http.MethodGet},
		{description: "history", call: func() (Record, error) { return service.History(ctx) }, expectPath: "/users/history", expectMethod: http.MethodGet},
		{description: "achievements", call: func() (Record, error) { return service.Achievements(ctx) }, expectPath: "/users/prestasi", expectMethod: http.MethodGet},
		{description: "submit", call: func() (Record, error) { return service.Submit(ctx, Record{"title": "Olympiad"}) }, expectPath: "/users/certificates/submit", expectMethod: http.MethodPost},
	}
	for _, testCase := range testCases {
		record, err := testCase.call()
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expectPath, record["path"], testCase.description)
		assert.Equal(t, testCase.expectMethod, record["method"], testCase.description)
	}
}

func TestService_Leaderboard(t *testing.T) {
	backend := mock.NewHTTPTestService()
	defer backend.Close()
	service := newService(t, backend, "alice", "x")
	var query string
	backend.ResourceHandler = func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		mock.WriteEnvelope(w, http.StatusOK, &mock.Envelope{StatusCode: 200, Data: []map[string]interface{}{
			{"student_id": "s1", "rank": 1, "total_spu": 12.5},
		}})
	}

	entries, err := service.Leaderboard(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s1", entries[0]["student_id"])
	assert.Equal(t, "limit=100", query)

	_, err = service.Search(context.Background(), "lomba & seni", 50)
	require.NoError(t, err)
	assert.Equal(t, "limit=50&query=lomba+%26+seni", query)
}

func TestService_EnvelopeFailure(t *testing.T) {
	backend := mock.NewHTTPTestService()
	defer backend.Close()
	service := newService(t, backend, "alice", "x")
	backend.ResourceHandler = func(w http.ResponseWriter, r *http.Request) {
		mock.WriteEnvelope(w, http.StatusOK, &mock.Envelope{StatusCode: 500, Message: "Failed to retrieve leaderboard data"})
	}

	_, err := service.Leaderboard(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, auth.HTTPStatus, auth.KindOf(err))
	assert.Equal(t, "Failed to retrieve leaderboard data", err.Error())
}

func TestService_Upload(t *testing.T) {
	backend := mock.NewHTTPTestService()
	defer backend.Close()
	service := newService(t, backend, "bob", "y")
	backend.ResourceHandler = func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			mock.WriteEnvelope(w, http.StatusBadRequest, &mock.Envelope{StatusCode: 400, Message: err.Error()})
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		mock.WriteEnvelope(w, http.StatusOK, &mock.Envelope{StatusCode: 200, Data: map[string]interface{}{
			"filename": header.Filename,
			"size":     len(content),
		}})
	}

	record, err := service.Upload(context.Background(), "proof.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "proof.pdf", record["filename"])
	assert.EqualValues(t, 8, record["size"])
}
