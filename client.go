package aura

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"github.com/viant/aura/client/auth"
	"github.com/viant/aura/client/auth/store"
	"gopkg.in/yaml.v3"
)

// DefaultAPIBase is the API prefix appended to the server URL.
const DefaultAPIBase = "/api/v1"

// ClientOptions defines options for configuring a portal client.
type ClientOptions struct {
	URL       string      `yaml:"url" json:"url" long:"url" env:"AURA_URL" description:"portal server url"`
	APIBase   string      `yaml:"apiBase,omitempty" json:"apiBase,omitempty" long:"api-base" description:"api path prefix" default:"/api/v1"`
	TimeoutMs int         `yaml:"timeoutMs,omitempty" json:"timeoutMs,omitempty" long:"timeout" description:"request timeout in ms"`
	RequestID bool        `yaml:"requestId,omitempty" json:"requestId,omitempty" long:"request-id" description:"send X-Request-Id headers"`
	Store     ClientStore `yaml:"store,omitempty" json:"store,omitempty"`

	// HTTPClient, if set, is used as the base client; its transport is wrapped
	// with session authentication.
	HTTPClient *http.Client `yaml:"-" json:"-" no-flag:"true"`
}

// ClientStore defines where credentials are persisted.
type ClientStore struct {
	// URL is an afs URL of the credential file; empty keeps credentials in memory.
	URL string `yaml:"url,omitempty" json:"url,omitempty" short:"s" long:"store" env:"AURA_STORE" description:"credential store url"`
}

func (c *ClientOptions) Init() {
	if c.APIBase == "" {
		c.APIBase = DefaultAPIBase
	}
	c.Store.URL = expandHome(c.Store.URL)
}

// Validate checks required options.
func (c *ClientOptions) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	return nil
}

// BaseURL returns the server URL joined with the API base.
func (c *ClientOptions) BaseURL() string {
	apiBase := strings.Trim(c.APIBase, "/")
	if apiBase == "" {
		return strings.TrimRight(c.URL, "/")
	}
	return url.Join(strings.TrimRight(c.URL, "/"), apiBase)
}

// LoadOptions reads YAML (or JSON) options from an afs URL.
func LoadOptions(ctx context.Context, URL string) (*ClientOptions, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, expandHome(URL))
	if err != nil {
		return nil, fmt.Errorf("failed to load options %v: %w", URL, err)
	}
	ret := &ClientOptions{}
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode options %v: %w", URL, err)
	}
	ret.Init()
	return ret, nil
}

// NewClient creates a session client configured via ClientOptions.
func NewClient(ctx context.Context, options *ClientOptions, logger zerolog.Logger) (*auth.Client, error) {
	options.Init()
	if err := options.Validate(); err != nil {
		return nil, err
	}
	var kv store.KeyValue
	if options.Store.URL != "" {
		kv = store.NewFile(options.Store.URL)
	} else {
		kv = store.NewMemory()
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if options.TimeoutMs > 0 {
		clone := *httpClient
		clone.Timeout = time.Duration(options.TimeoutMs) * time.Millisecond
		httpClient = &clone
	}
	return auth.New(ctx, options.BaseURL(),
		auth.WithStore(store.New(kv, store.WithLogger(logger))),
		auth.WithHTTPClient(httpClient),
		auth.WithLogger(logger),
		auth.WithRequestIDs(options.RequestID))
}

func expandHome(location string) string {
	if !strings.HasPrefix(location, "~/") {
		return location
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return location
	}
	return filepath.Join(home, location[2:])
}
