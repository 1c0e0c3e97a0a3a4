package aura

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	_ "github.com/viant/afs/mem"
	"github.com/viant/aura/client/auth/mock"
)

func TestClientOptions_BaseURL(t *testing.T) {
	var testCases = []struct {
		description string
		options     *ClientOptions
		expect      string
	}{
		{description: "default api base", options: &ClientOptions{URL: "https://aura.test"}, expect: "https://aura.test/api/v1"},
		{description: "trailing slash", options: &ClientOptions{URL: "https://aura.test/", APIBase: "/api/v2/"}, expect: "https://aura.test/api/v2"},
		{description: "no api base", options: &ClientOptions{URL: "https://aura.test", APIBase: "/"}, expect: "https://aura.test"},
	}
	for _, testCase := range testCases {
		testCase.options.Init()
		assert.Equal(t, testCase.expect, testCase.options.BaseURL(), testCase.description)
	}
}

func TestLoadOptions(t *testing.T) {
	ctx := context.Background()
	URL := "mem://localhost/aura/config.yaml"
	config := `url: https://aura.test
timeoutMs: 1500
requestId: true
store:
  url: mem://localhost/aura/credentials.json
`
	require.NoError(t, afs.New().Upload(ctx, URL, 0o644, strings.NewReader(config)))

	options, err := LoadOptions(ctx, URL)
	require.NoError(t, err)
	assert.Equal(t, "https://aura.test", options.URL)
	assert.Equal(t, DefaultAPIBase, options.APIBase)
	assert.Equal(t, 1500, options.TimeoutMs)
	assert.True(t, options.RequestID)
	assert.Equal(t, "mem://localhost/aura/credentials.json", options.Store.URL)
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()
	backend := mock.NewHTTPTestService()
	defer backend.Close()
	options := &ClientOptions{URL: backend.URL, Store: ClientStore{URL: "mem://localhost/aura/newclient/credentials.json"}, TimeoutMs: 2000}

	client, err := NewClient(ctx, options, zerolog.Nop())
	require.NoError(t, err)
	_, err = client.Login(ctx, "alice", "x")
	require.NoError(t, err)

	// a second client over the same store resumes the session
	resumed, err := NewClient(ctx, options, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, resumed.IsAuthenticated())
	assert.Equal(t, "staff", resumed.UserRole())
	_, err = resumed.PerformRequest(ctx, "/staff/dashboard", nil)
	require.NoError(t, err)
}

func TestNewClient_MissingURL(t *testing.T) {
	_, err := NewClient(context.Background(), &ClientOptions{}, zerolog.Nop())
	assert.Error(t, err)
}
