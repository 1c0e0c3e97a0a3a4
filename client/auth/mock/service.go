package mock

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/viant/aura/internal/collection"
)

// APIBase is the path prefix the mock serves.
const APIBase = "/api/v1"

// User is an account known to the mock backend.
type User struct {
	ID       string
	Username string
	Password string
	Role     string
}

// Service is a mock portal backend.
type Service struct {
	Secret    []byte
	AccessTTL time.Duration
	// OmitRefreshExpiry drops expires_at from refresh responses, leaving the
	// client to read the expiry from the token itself.
	OmitRefreshExpiry bool
	// RefreshDelay holds refresh responses, widening the window for concurrent callers.
	RefreshDelay time.Duration

	LoginHandler    http.HandlerFunc
	RefreshHandler  http.HandlerFunc
	LogoutHandler   http.HandlerFunc
	ResourceHandler http.HandlerFunc

	users   *collection.SyncMap[string, *User]
	calls   *collection.SyncMap[string, int]
	revoked *collection.SyncMap[string, bool]
	server  *httptest.Server
	closed  sync.Once
	URL     string
}

// AddUser registers an account.
func (m *Service) AddUser(user *User) {
	m.users.Put(user.Username, user)
}

// Calls returns how many requests reached path (relative to APIBase, e.g. "/auth/refresh").
func (m *Service) Calls(path string) int {
	count, _ := m.calls.Get(path)
	return count
}

// TotalCalls returns the number of requests served.
func (m *Service) TotalCalls() int {
	total := 0
	m.calls.Range(func(_ string, count int) bool {
		total += count
		return true
	})
	return total
}

// Reset zeroes call counters.
func (m *Service) Reset() {
	m.calls.Update(func(values map[string]int) {
		for k := range values {
			delete(values, k)
		}
	})
}

// BaseURL returns the API base URL clients should target.
func (m *Service) BaseURL() string {
	return m.URL + APIBase
}

func (m *Service) count(path string) {
	m.calls.Update(func(values map[string]int) {
		values[path]++
	})
}

// Close shuts down the underlying test server.
func (m *Service) Close() {
	m.closed.Do(func() {
		if m.server != nil {
			m.server.Close()
		}
	})
}

// NewService creates a mock backend with a student (bob) and a staff (alice) account.
func NewService() *Service {
	ret := &Service{
		Secret:    []byte("AURA12345"),
		AccessTTL: 14 * 24 * time.Hour,
		users:     collection.NewSyncMap[string, *User](),
		calls:     collection.NewSyncMap[string, int](),
		revoked:   collection.NewSyncMap[string, bool](),
	}
	ret.AddUser(&User{ID: "u1", Username: "alice", Password: "x", Role: "staff"})
	ret.AddUser(&User{ID: "u2", Username: "bob", Password: "y", Role: "User"})
	return ret
}

// NewHTTPTestService starts a mock backend on a local httptest server.
func NewHTTPTestService() *Service {
	ret := NewService()
	ret.server = httptest.NewServer(&Handler{Service: ret})
	ret.URL = ret.server.URL
	return ret
}
