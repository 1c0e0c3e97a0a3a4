package mock

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Handler routes HTTP requests to the appropriate mock backend endpoints.
type Handler struct {
	Service *Service
}

// ServeHTTP dispatches incoming HTTP requests based on URL path.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, APIBase) {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, APIBase)
	h.Service.count(path)
	switch path {
	case "/auth/login":
		if h.Service.LoginHandler != nil {
			h.Service.LoginHandler(w, r)
		} else {
			h.Service.defaultLoginHandler(w, r)
		}
	case "/auth/refresh":
		if h.Service.RefreshHandler != nil {
			h.Service.RefreshHandler(w, r)
		} else {
			h.Service.defaultRefreshHandler(w, r)
		}
	case "/auth/logout":
		if h.Service.LogoutHandler != nil {
			h.Service.LogoutHandler(w, r)
		} else {
			h.Service.defaultLogoutHandler(w, r)
		}
	case "/auth/verify":
		h.Service.defaultVerifyHandler(w, r)
	case "/auth/me":
		h.Service.defaultProfileHandler(w, r)
	default:
		if h.Service.ResourceHandler != nil {
			h.Service.ResourceHandler(w, r)
		} else {
			h.Service.defaultResourceHandler(w, r, path)
		}
	}
}

// Envelope is the portal response body.
type Envelope struct {
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Error      string      `json:"error,omitempty"`
}

// WriteEnvelope writes envelope as JSON with the given HTTP status.
func WriteEnvelope(w http.ResponseWriter, httpStatus int, envelope *Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(envelope)
}

// WriteDetail writes an error body the way the backend framework does for rejected credentials.
func WriteDetail(w http.ResponseWriter, httpStatus int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	if httpStatus == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func (m *Service) defaultLoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	user, ok := m.users.Get(request.Username)
	if !ok || user.Password != request.Password {
		WriteEnvelope(w, http.StatusOK, &Envelope{StatusCode: http.StatusUnauthorized, Message: "Incorrect username or password", Error: "Incorrect username or password"})
		return
	}
	accessToken, expiry, err := m.IssueAccessToken(user, m.AccessTTL)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	refreshToken, err := m.IssueRefreshToken(user)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	WriteEnvelope(w, http.StatusOK, &Envelope{StatusCode: http.StatusOK, Message: "Login successful", Data: map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "bearer",
		"user_id":       user.ID,
		"role":          user.Role,
		"expires_at":    unixSeconds(expiry),
	}})
}

func (m *Service) defaultRefreshHandler(w http.ResponseWriter, r *http.Request) {
	if m.RefreshDelay > 0 {
		time.Sleep(m.RefreshDelay)
	}
	var request struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if revoked, _ := m.revoked.Get(request.RefreshToken); revoked {
		WriteEnvelope(w, http.StatusOK, &Envelope{StatusCode: http.StatusUnauthorized, Message: "Invalid refresh token", Error: "Invalid refresh token"})
		return
	}
	parsed, err := m.parse(request.RefreshToken)
	if err != nil || parsed.Type != refreshType {
		WriteEnvelope(w, http.StatusOK, &Envelope{StatusCode: http.StatusUnauthorized, Message: "Invalid refresh token", Error: "Invalid refresh token"})
		return
	}
	user := &User{ID: parsed.Subject, Username: parsed.Username, Role: parsed.Role}
	accessToken, expiry, err := m.IssueAccessToken(user, m.AccessTTL)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"access_token": accessToken,
		"token_type":   "bearer",
	}
	if !m.OmitRefreshExpiry {
		data["expires_at"] = unixSeconds(expiry)
	}
	WriteEnvelope(w, http.StatusOK, &Envelope{StatusCode: http.StatusOK, Message: "Token refreshed successfully", Data: data})
}

func (m *Service) defaultLogoutHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := m.authenticate(w, r); !ok {
		return
	}
	WriteEnvelope(w, http.StatusOK, &Envelope{StatusCode: http.StatusOK, Message: "Logout successful"})
}

func (m *Service) defaultVerifyHandler(w http.ResponseWriter, r *http.Request) {
	parsed, ok := m.authenticate(w, r)
	if !ok {
		return
	}
	WriteEnvelope(w, http.StatusOK, &Envelope{StatusCode: http.StatusOK, Message: "Token is valid", Data: map[string]interface{}{
		"user_id": parsed.Subject,
		"email":   parsed.Username + "@aura.test",
		"role":    parsed.Role,
	}})
}

func (m *Service) defaultProfileHandler(w http.ResponseWriter, r *http.Request) {
	parsed, ok := m.authenticate(w, r)
	if !ok {
		return
	}
	WriteEnvelope(w, http.StatusOK, &Envelope{StatusCode: http.StatusOK, Message: "Profile retrieved successfully", Data: map[string]interface{}{
		"user": map[string]interface{}{
			"sub":      parsed.Subject,
			"role":     parsed.Role,
			"username": parsed.Username,
		},
	}})
}

// defaultResourceHandler simulates any protected portal resource
func (m *Service) defaultResourceHandler(w http.ResponseWriter, r *http.Request, path string) {
	parsed, ok := m.authenticate(w, r)
	if !ok {
		return
	}
	var body interface{}
	if r.ContentLength != 0 {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	WriteEnvelope(w, http.StatusOK, &Envelope{StatusCode: http.StatusOK, Message: "OK", Data: map[string]interface{}{
		"path":    path,
		"method":  r.Method,
		"query":   r.URL.RawQuery,
		"user_id": parsed.Subject,
		"body":    body,
	}})
}

func (m *Service) authenticate(w http.ResponseWriter, r *http.Request) (*claims, bool) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		WriteDetail(w, http.StatusForbidden, "Not authenticated")
		return nil, false
	}
	parsed, err := m.parse(parts[1])
	if err != nil {
		WriteDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}
	if parsed.Type == refreshType {
		WriteDetail(w, http.StatusUnauthorized, "Refresh token not allowed for authentication")
		return nil, false
	}
	return parsed, true
}
